// File: pattern/re_pattern_list.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pattern

import "github.com/momentics/hioload-ran/bitset"

// RePatternList is a union of patterns, typically the REs reserved for other
// signals (CSI-RS, SSB, rate matching resources) that a shared channel must skip.
type RePatternList struct {
	patterns []RePattern
}

// NewRePatternList merges the given patterns into a new list.
func NewRePatternList(patterns ...RePattern) *RePatternList {
	l := &RePatternList{}
	for _, p := range patterns {
		l.Merge(p)
	}
	return l
}

// Len returns the number of stored patterns after merging.
func (l *RePatternList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.patterns)
}

// Patterns returns the stored patterns.
func (l *RePatternList) Patterns() []RePattern {
	if l == nil {
		return nil
	}
	return l.patterns
}

// Clear removes all patterns.
func (l *RePatternList) Clear() {
	l.patterns = l.patterns[:0]
}

// Merge adds p, folding it into an existing pattern when two of the three
// dimensions coincide so the union stays exact.
func (l *RePatternList) Merge(p RePattern) {
	for i := range l.patterns {
		q := &l.patterns[i]
		sameRB := q.RBs.Equal(p.RBs)
		sameSymb := q.Symbols.Equal(p.Symbols)
		sameRE := q.REs == p.REs

		switch {
		case sameRB && sameSymb:
			for k := range q.REs {
				q.REs[k] = q.REs[k] || p.REs[k]
			}
			return
		case sameRE && sameSymb:
			q.RBs.Or(p.RBs)
			return
		case sameRB && sameRE:
			q.Symbols.Or(p.Symbols)
			return
		}
	}
	l.patterns = append(l.patterns, p.Clone())
}

// IncludeMask sets in mask every subcarrier any pattern selects in symbol.
func (l *RePatternList) IncludeMask(mask *bitset.BoundedBitset, symbol int) {
	for _, p := range l.Patterns() {
		p.IncludeMask(mask, symbol)
	}
}

// ExcludeMask clears in mask every subcarrier any pattern selects in symbol.
func (l *RePatternList) ExcludeMask(mask *bitset.BoundedBitset, symbol int) {
	for _, p := range l.Patterns() {
		p.ExcludeMask(mask, symbol)
	}
}

// InclusionCount returns the number of REs within rbs over symbols
// [startSymbol, startSymbol+nofSymbols) that belong to at least one pattern.
func (l *RePatternList) InclusionCount(startSymbol, nofSymbols int, rbs *bitset.BoundedBitset) int {
	nofSubc := rbs.Size() * nre
	allocated := bitset.New(nofSubc)
	rbs.ForEach(func(rb int) { allocated.Fill(rb*nre, (rb+1)*nre) })

	mask := bitset.New(nofSubc)
	count := 0
	for symbol := startSymbol; symbol < startSymbol+nofSymbols; symbol++ {
		mask.Reset()
		l.IncludeMask(mask, symbol)
		mask.And(allocated)
		count += mask.Count()
	}
	return count
}
