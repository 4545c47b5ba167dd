package pattern

import (
	"testing"

	"github.com/momentics/hioload-ran/bitset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRePattern_IncludeExclude(t *testing.T) {
	p := NewRePattern(1, 3, DMRSType1CDM1, 2, 4)
	assert.Equal(t, 12, p.NofRE())

	mask := bitset.New(4 * nre)
	p.IncludeMask(mask, 0)
	assert.True(t, mask.None(), "symbol outside the pattern")

	p.IncludeMask(mask, 2)
	assert.Equal(t, []int{13, 15, 17, 19, 21, 23, 25, 27, 29, 31, 33, 35}, mask.Indices(nil))

	full := bitset.New(4 * nre)
	full.Fill(0, full.Size())
	p.ExcludeMask(full, 3)
	assert.Equal(t, 48-12, full.Count())
	assert.False(t, full.Test(13))
	assert.True(t, full.Test(12))
}

func TestRePattern_IgnoresRBsBeyondMask(t *testing.T) {
	p := NewRePattern(0, 10, AllSubcarriers, 0, 14)
	mask := bitset.New(2 * nre)
	p.IncludeMask(mask, 5)
	assert.Equal(t, 24, mask.Count())
}

func TestRePatternList_Merge(t *testing.T) {
	l := NewRePatternList()
	l.Merge(NewRePattern(0, 4, DMRSType1CDM0, 2, 3))
	l.Merge(NewRePattern(0, 4, DMRSType1CDM1, 2, 3))
	require.Equal(t, 1, l.Len(), "same RBs and symbols fold the RE masks")
	assert.Equal(t, AllSubcarriers, l.Patterns()[0].REs)

	l.Merge(NewRePattern(4, 8, AllSubcarriers, 2, 3))
	require.Equal(t, 1, l.Len(), "same REs and symbols fold the RB masks")
	assert.Equal(t, 8, l.Patterns()[0].RBs.Count())

	l.Merge(NewRePattern(0, 8, AllSubcarriers, 5, 6))
	require.Equal(t, 1, l.Len(), "same RBs and REs fold the symbol masks")
	assert.Equal(t, 2, l.Patterns()[0].Symbols.Count())

	l.Merge(NewRePattern(10, 11, DMRSType1CDM0, 7, 8))
	assert.Equal(t, 2, l.Len())
}

func TestRePatternList_MergeDoesNotAliasInput(t *testing.T) {
	p := NewRePattern(0, 1, AllSubcarriers, 0, 1)
	l := NewRePatternList(p)
	l.Merge(NewRePattern(1, 2, AllSubcarriers, 0, 1))
	assert.Equal(t, 1, p.RBs.Count())
}

func TestRePatternList_InclusionCount(t *testing.T) {
	l := NewRePatternList(
		NewRePattern(0, 10, DMRSType1CDM0, 2, 3),
		NewRePattern(5, 15, AllSubcarriers, 9, 10),
	)
	rbs := bitset.New(maxRB)
	rbs.Fill(0, 8)

	// Symbol 2: 8 RBs x 6 REs. Symbol 9: RBs 5..7 x 12 REs.
	assert.Equal(t, 48+36, l.InclusionCount(0, 14, rbs))
	assert.Equal(t, 48, l.InclusionCount(0, 3, rbs))
	assert.Equal(t, 0, NewRePatternList().InclusionCount(0, 14, rbs))
}

func TestRBAllocation(t *testing.T) {
	c := NewContiguousAllocation(2, 3)
	assert.Equal(t, 3, c.NofRB())
	assert.Equal(t, []int{12, 13, 14}, c.CRBIndexes(10, nil))

	b := NewBitmapAllocation(bitset.FromIndices(20, 0, 1, 5))
	assert.Equal(t, 3, b.NofRB())
	assert.Equal(t, []int{1, 2, 6}, b.CRBIndexes(1, nil))
	assert.Equal(t, []int{1, 2, 6}, b.CRBMask(1).Indices(nil))
}

func TestAllocationConfiguration_NofRE(t *testing.T) {
	reserved := NewRePatternList(
		NewRePattern(0, 10, DMRSType1CDM0, 2, 3),
		NewRePattern(5, 15, AllSubcarriers, 9, 10),
	)
	full := AllocationConfiguration{StartSymbol: 0, NofSymbols: 14, Freq: NewContiguousAllocation(0, 8)}
	assert.Equal(t, 8*nre*14, full.NofRE(nil))
	assert.Equal(t, 8*nre*14-(48+36), full.NofRE(reserved))

	// CRBs 1, 2 and 6 over symbols 0..2: only symbol 2 carries reserved REs.
	bitmap := AllocationConfiguration{
		StartSymbol: 0,
		NofSymbols:  3,
		BWPStartRB:  1,
		Freq:        NewBitmapAllocation(bitset.FromIndices(20, 0, 1, 5)),
	}
	assert.Equal(t, 3*nre*3-3*6, bitmap.NofRE(reserved))
}
