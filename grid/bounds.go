// File: grid/bounds.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package grid

import (
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/internal/invariant"
)

func (g *ResourceGrid) checkPlane(port, symbol int) {
	if port < 0 || port >= g.st.nofPorts {
		invariant.Failf("grid: port %d out of range [0, %d)", port, g.st.nofPorts)
	}
	if symbol < 0 || symbol >= g.st.nofSymbols {
		invariant.Failf("grid: symbol %d out of range [0, %d)", symbol, g.st.nofSymbols)
	}
}

func (g *ResourceGrid) checkSubcarriers(kInit, count int) {
	if kInit < 0 || count < 0 || kInit+count > g.st.nofSubc {
		invariant.Failf("grid: subcarriers [%d, %d) exceed %d", kInit, kInit+count, g.st.nofSubc)
	}
}

// boolMaskShape returns the first and last true index and the number of true
// entries of mask; first is -1 when mask has no true entry.
func boolMaskShape(mask []bool) (first, last, count int) {
	first, last = -1, -1
	for i, v := range mask {
		if !v {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
		count++
	}
	return first, last, count
}

// bitsetMaskShape is boolMaskShape for bitsets.
func bitsetMaskShape(mask *bitset.BoundedBitset) (first, last, count int) {
	count = mask.Count()
	if count == 0 {
		return -1, -1, 0
	}
	return mask.FindLowest(), mask.FindHighest(), count
}
