// File: pattern/re_pattern.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pattern

import (
	"fmt"

	"github.com/momentics/hioload-ran/bitset"
)

// REMask selects subcarriers within one resource block.
type REMask [nre]bool

// Predefined subcarrier masks of the DM-RS type 1 combs.
var (
	DMRSType1CDM0  = REMask{true, false, true, false, true, false, true, false, true, false, true, false}
	DMRSType1CDM1  = REMask{false, true, false, true, false, true, false, true, false, true, false, true}
	AllSubcarriers = REMask{true, true, true, true, true, true, true, true, true, true, true, true}
)

// Count returns the number of selected subcarriers.
func (m REMask) Count() int {
	n := 0
	for _, v := range m {
		if v {
			n++
		}
	}
	return n
}

// RePattern is a set of REs: every selected subcarrier of every selected RB in every selected symbol.
// RB indices are CRB indices, so RB 0 starts at subcarrier 0 of the grid.
type RePattern struct {
	RBs     *bitset.BoundedBitset
	REs     REMask
	Symbols *bitset.BoundedBitset
}

// NewRePattern builds a pattern over RBs [rbBegin, rbEnd) and symbols [symBegin, symEnd).
func NewRePattern(rbBegin, rbEnd int, res REMask, symBegin, symEnd int) RePattern {
	p := RePattern{
		RBs:     bitset.New(maxRB),
		REs:     res,
		Symbols: bitset.New(maxNSymbPerSlot),
	}
	p.RBs.Fill(rbBegin, rbEnd)
	p.Symbols.Fill(symBegin, symEnd)
	return p
}

// Clone returns a deep copy of p.
func (p RePattern) Clone() RePattern {
	return RePattern{RBs: p.RBs.Clone(), REs: p.REs, Symbols: p.Symbols.Clone()}
}

// Equal reports whether both patterns select the same REs with the same description.
func (p RePattern) Equal(other RePattern) bool {
	return p.REs == other.REs && p.RBs.Equal(other.RBs) && p.Symbols.Equal(other.Symbols)
}

// NofRE returns the number of REs the pattern selects in one symbol that it covers.
func (p RePattern) NofRE() int {
	return p.RBs.Count() * p.REs.Count()
}

// IncludeMask sets in mask every subcarrier the pattern selects in symbol.
// RBs that do not fit entirely in mask are ignored.
func (p RePattern) IncludeMask(mask *bitset.BoundedBitset, symbol int) {
	p.apply(mask, symbol, mask.Set)
}

// ExcludeMask clears in mask every subcarrier the pattern selects in symbol.
func (p RePattern) ExcludeMask(mask *bitset.BoundedBitset, symbol int) {
	p.apply(mask, symbol, mask.Clear)
}

func (p RePattern) apply(mask *bitset.BoundedBitset, symbol int, op func(int)) {
	if symbol >= p.Symbols.Size() || !p.Symbols.Test(symbol) {
		return
	}
	nofRB := mask.Size() / nre
	p.RBs.ForEach(func(rb int) {
		if rb >= nofRB {
			return
		}
		for k, used := range p.REs {
			if used {
				op(rb*nre + k)
			}
		}
	})
}

func (p RePattern) String() string {
	return fmt.Sprintf("rb=%s re=%v symb=%s", p.RBs, p.REs, p.Symbols)
}
