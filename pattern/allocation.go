// File: pattern/allocation.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pattern

import "github.com/momentics/hioload-ran/bitset"

// RBAllocation is a frequency-domain allocation in RBs relative to the BWP start.
// Only non-interleaved VRB-to-PRB mapping is modelled: VRB n is PRB n.
type RBAllocation struct {
	// rbs is set for bitmap (type 0) allocations, nil for contiguous (type 1) ones.
	rbs    *bitset.BoundedBitset
	start  int
	length int
}

// NewContiguousAllocation returns a type 1 allocation of length RBs from start.
func NewContiguousAllocation(start, length int) RBAllocation {
	if start < 0 || length < 0 {
		panic("pattern: negative RB allocation")
	}
	return RBAllocation{start: start, length: length}
}

// NewBitmapAllocation returns a type 0 allocation with RB i allocated when rbs has bit i set.
func NewBitmapAllocation(rbs *bitset.BoundedBitset) RBAllocation {
	return RBAllocation{rbs: rbs.Clone()}
}

// NofRB returns the number of allocated RBs.
func (a RBAllocation) NofRB() int {
	if a.rbs != nil {
		return a.rbs.Count()
	}
	return a.length
}

// CRBIndexes appends the allocated CRB indices, ascending, to dst and returns it.
func (a RBAllocation) CRBIndexes(bwpStartRB int, dst []int) []int {
	if a.rbs == nil {
		for rb := a.start; rb < a.start+a.length; rb++ {
			dst = append(dst, bwpStartRB+rb)
		}
		return dst
	}
	a.rbs.ForEach(func(rb int) { dst = append(dst, bwpStartRB+rb) })
	return dst
}

// CRBMask returns the allocation as a CRB bitset of maxRB bits.
func (a RBAllocation) CRBMask(bwpStartRB int) *bitset.BoundedBitset {
	mask := bitset.New(maxRB)
	for _, crb := range a.CRBIndexes(bwpStartRB, nil) {
		mask.Set(crb)
	}
	return mask
}

// AllocationConfiguration is the time-frequency allocation of a shared channel transmission.
type AllocationConfiguration struct {
	StartSymbol int
	NofSymbols  int
	BWPStartRB  int
	Freq        RBAllocation
}

// NofRE returns the REs per layer the allocation offers once the REs selected
// by any pattern of reserved are taken out. reserved may be nil.
func (c AllocationConfiguration) NofRE(reserved *RePatternList) int {
	total := c.Freq.NofRB() * nre * c.NofSymbols
	if reserved.Len() == 0 {
		return total
	}
	return total - reserved.InclusionCount(c.StartSymbol, c.NofSymbols, c.Freq.CRBMask(c.BWPStartRB))
}
