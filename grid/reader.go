// File: grid/reader.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package grid

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/internal/invariant"
)

// Reader is the read-only view of a ResourceGrid.
type Reader struct {
	g *ResourceGrid
}

var _ api.ResourceGridReader = (*Reader)(nil)

func (r *Reader) NofPorts() int   { return r.g.st.nofPorts }
func (r *Reader) NofSubc() int    { return r.g.st.nofSubc }
func (r *Reader) NofSymbols() int { return r.g.st.nofSymbols }

func (r *Reader) IsPortEmpty(port int) bool {
	if port < 0 || port >= r.g.st.nofPorts {
		invariant.Failf("grid: port %d out of range [0, %d)", port, r.g.st.nofPorts)
	}
	return r.g.isPortEmpty(port)
}

func (r *Reader) IsEmpty() bool {
	return r.g.empty.Load() == r.g.allPorts
}

func (r *Reader) Get(dst []complex64, port, symbol, kInit int, mask []bool) []complex64 {
	r.g.checkPlane(port, symbol)
	r.g.checkSubcarriers(kInit, len(mask))
	first, last, count := boolMaskShape(mask)
	if count > len(dst) {
		invariant.Failf("grid: mask selects %d REs, destination holds %d", count, len(dst))
	}
	if count == 0 {
		return dst
	}

	plane := r.g.st.plane(port, symbol)[kInit:]
	if last-first+1 == count {
		bf16.ToComplex64Slice(dst[:count], plane[first:first+count])
		return dst[count:]
	}
	i := 0
	for k := first; k <= last; k++ {
		if mask[k] {
			dst[i] = plane[k].Complex64()
			i++
		}
	}
	return dst[count:]
}

func (r *Reader) GetBitset(dst []complex64, port, symbol, kInit int, mask *bitset.BoundedBitset) []complex64 {
	r.g.checkPlane(port, symbol)
	r.g.checkSubcarriers(kInit, mask.Size())
	first, last, count := bitsetMaskShape(mask)
	if count > len(dst) {
		invariant.Failf("grid: mask selects %d REs, destination holds %d", count, len(dst))
	}
	if count == 0 {
		return dst
	}

	plane := r.g.st.plane(port, symbol)[kInit:]
	if last-first+1 == count {
		bf16.ToComplex64Slice(dst[:count], plane[first:first+count])
		return dst[count:]
	}
	i := 0
	for k := first; k >= 0; k = mask.FindLowestFrom(k + 1) {
		dst[i] = plane[k].Complex64()
		i++
	}
	return dst[count:]
}

func (r *Reader) GetContiguous(dst []complex64, port, symbol, kInit int) {
	r.g.checkPlane(port, symbol)
	r.g.checkSubcarriers(kInit, len(dst))
	bf16.ToComplex64Slice(dst, r.g.st.plane(port, symbol)[kInit:kInit+len(dst)])
}

func (r *Reader) View(port, symbol int) []bf16.CBF16 {
	r.g.checkPlane(port, symbol)
	return r.g.st.plane(port, symbol)
}
