// File: rebuffer/rebuffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Layer-major resource element buffers. A buffer holds NofSlices slices of NofRE
// complex symbols each; a slice is one layer before precoding or one antenna
// port after it. Buffers are the interchange format between modulation, the
// precoder and the grid mapper.

package rebuffer

// Reader is a read-only RE buffer. Slices returned by Slice must not be modified.
type Reader interface {
	NofSlices() int
	NofRE() int
	Slice(i int) []complex64
}

// Writer is a mutable RE buffer.
type Writer interface {
	Reader
	MutableSlice(i int) []complex64
}

// Dynamic is a contiguous RE buffer that can be resized without reallocating
// once it has grown to the largest size in use.
type Dynamic struct {
	data      []complex64
	nofSlices int
	nofRE     int
}

// NewDynamic returns a buffer of nofSlices x nofRE zeroed symbols.
func NewDynamic(nofSlices, nofRE int) *Dynamic {
	d := &Dynamic{}
	d.Resize(nofSlices, nofRE)
	return d
}

// Resize changes the dimensions. Contents are unspecified afterwards.
func (d *Dynamic) Resize(nofSlices, nofRE int) {
	if nofSlices < 0 || nofRE < 0 {
		panic("rebuffer: negative dimensions")
	}
	n := nofSlices * nofRE
	if cap(d.data) < n {
		d.data = make([]complex64, n)
	}
	d.data = d.data[:n]
	d.nofSlices = nofSlices
	d.nofRE = nofRE
}

func (d *Dynamic) NofSlices() int { return d.nofSlices }
func (d *Dynamic) NofRE() int     { return d.nofRE }

func (d *Dynamic) Slice(i int) []complex64 {
	return d.MutableSlice(i)
}

func (d *Dynamic) MutableSlice(i int) []complex64 {
	if i < 0 || i >= d.nofSlices {
		panic("rebuffer: slice index out of range")
	}
	return d.data[i*d.nofRE : (i+1)*d.nofRE : (i+1)*d.nofRE]
}

// Slices adapts a set of equally sized slices to Writer.
type Slices [][]complex64

// FromSlices wraps the given slices. All slices must have the same length.
func FromSlices(slices ...[]complex64) Slices {
	if len(slices) == 0 {
		return nil
	}
	for _, s := range slices[1:] {
		if len(s) != len(slices[0]) {
			panic("rebuffer: slices of different length")
		}
	}
	return Slices(slices)
}

func (s Slices) NofSlices() int { return len(s) }

func (s Slices) NofRE() int {
	if len(s) == 0 {
		return 0
	}
	return len(s[0])
}

func (s Slices) Slice(i int) []complex64        { return s[i] }
func (s Slices) MutableSlice(i int) []complex64 { return s[i] }

// View is a window of count REs starting at offset over every slice of a Reader.
type View struct {
	src    Reader
	offset int
	count  int
}

// NewView returns the window [offset, offset+count) of src.
func NewView(src Reader, offset, count int) View {
	if offset < 0 || count < 0 || offset+count > src.NofRE() {
		panic("rebuffer: view out of range")
	}
	return View{src: src, offset: offset, count: count}
}

func (v View) NofSlices() int { return v.src.NofSlices() }
func (v View) NofRE() int     { return v.count }

func (v View) Slice(i int) []complex64 {
	return v.src.Slice(i)[v.offset : v.offset+v.count]
}
