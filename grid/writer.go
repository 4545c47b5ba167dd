// File: grid/writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package grid

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/internal/invariant"
)

// Writer is the mutable view of a ResourceGrid. Every call clears the empty bit
// of the port it addresses.
type Writer struct {
	g *ResourceGrid
}

var _ api.ResourceGridWriter = (*Writer)(nil)

func (w *Writer) NofPorts() int   { return w.g.st.nofPorts }
func (w *Writer) NofSubc() int    { return w.g.st.nofSubc }
func (w *Writer) NofSymbols() int { return w.g.st.nofSymbols }

func (w *Writer) Put(port, symbol, kInit int, mask []bool, symbols []complex64) []complex64 {
	w.g.checkPlane(port, symbol)
	w.g.checkSubcarriers(kInit, len(mask))
	first, last, count := boolMaskShape(mask)
	if count > len(symbols) {
		invariant.Failf("grid: mask selects %d REs, only %d symbols given", count, len(symbols))
	}
	w.g.markWritten(port)
	if count == 0 {
		return symbols
	}

	plane := w.g.st.plane(port, symbol)[kInit:]
	if last-first+1 == count {
		bf16.FromComplex64Slice(plane[first:first+count], symbols[:count])
		return symbols[count:]
	}
	i := 0
	for k := first; k <= last; k++ {
		if mask[k] {
			plane[k] = bf16.FromComplex64(symbols[i])
			i++
		}
	}
	return symbols[count:]
}

func (w *Writer) PutBitset(port, symbol, kInit int, mask *bitset.BoundedBitset, symbols []complex64) []complex64 {
	w.g.checkPlane(port, symbol)
	w.g.checkSubcarriers(kInit, mask.Size())
	first, last, count := bitsetMaskShape(mask)
	if count > len(symbols) {
		invariant.Failf("grid: mask selects %d REs, only %d symbols given", count, len(symbols))
	}
	w.g.markWritten(port)
	if count == 0 {
		return symbols
	}

	plane := w.g.st.plane(port, symbol)[kInit:]
	if last-first+1 == count {
		bf16.FromComplex64Slice(plane[first:first+count], symbols[:count])
		return symbols[count:]
	}
	i := 0
	for k := first; k >= 0; k = mask.FindLowestFrom(k + 1) {
		plane[k] = bf16.FromComplex64(symbols[i])
		i++
	}
	return symbols[count:]
}

func (w *Writer) PutBitsetBF16(port, symbol, kInit int, mask *bitset.BoundedBitset, symbols []bf16.CBF16) []bf16.CBF16 {
	w.g.checkPlane(port, symbol)
	w.g.checkSubcarriers(kInit, mask.Size())
	first, last, count := bitsetMaskShape(mask)
	if count > len(symbols) {
		invariant.Failf("grid: mask selects %d REs, only %d symbols given", count, len(symbols))
	}
	w.g.markWritten(port)
	if count == 0 {
		return symbols
	}

	plane := w.g.st.plane(port, symbol)[kInit:]
	if last-first+1 == count {
		copy(plane[first:first+count], symbols[:count])
		return symbols[count:]
	}
	i := 0
	for k := first; k >= 0; k = mask.FindLowestFrom(k + 1) {
		plane[k] = symbols[i]
		i++
	}
	return symbols[count:]
}

func (w *Writer) PutContiguous(port, symbol, kInit int, symbols []complex64) {
	w.g.checkPlane(port, symbol)
	w.g.checkSubcarriers(kInit, len(symbols))
	w.g.markWritten(port)
	bf16.FromComplex64Slice(w.g.st.plane(port, symbol)[kInit:kInit+len(symbols)], symbols)
}

func (w *Writer) PutContiguousBF16(port, symbol, kInit int, symbols []bf16.CBF16) {
	w.g.checkPlane(port, symbol)
	w.g.checkSubcarriers(kInit, len(symbols))
	w.g.markWritten(port)
	copy(w.g.st.plane(port, symbol)[kInit:kInit+len(symbols)], symbols)
}

func (w *Writer) PutStrided(port, symbol, kInit, stride int, symbols []complex64) {
	w.g.checkPlane(port, symbol)
	if stride < 1 {
		invariant.Failf("grid: stride %d must be positive", stride)
	}
	if len(symbols) > 0 {
		w.g.checkSubcarriers(kInit, (len(symbols)-1)*stride+1)
	}
	w.g.markWritten(port)

	plane := w.g.st.plane(port, symbol)
	k := kInit
	for _, s := range symbols {
		plane[k] = bf16.FromComplex64(s)
		k += stride
	}
}

func (w *Writer) View(port, symbol int) []bf16.CBF16 {
	w.g.checkPlane(port, symbol)
	w.g.markWritten(port)
	return w.g.st.plane(port, symbol)
}
