package mapper

import (
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/grid"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/precoding"
	"github.com/momentics/hioload-ran/rebuffer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testPorts = 4
	testPRB   = 25
	testSubc  = testPRB * api.NRE
)

func newGrid(t *testing.T) *grid.ResourceGrid {
	t.Helper()
	g, err := grid.New(testPorts, api.MaxNSymbPerSlot, testSubc)
	require.NoError(t, err)
	return g
}

func randomSymbols(rgen *rand.Rand, n int) []complex64 {
	out := make([]complex64, n)
	for i := range out {
		out[i] = complex(rgen.Float32()*2-1, rgen.Float32()*2-1)
	}
	return out
}

func randomLayers(rgen *rand.Rand, nofLayers, nofRE int) rebuffer.Slices {
	layers := make([][]complex64, nofLayers)
	for i := range layers {
		layers[i] = randomSymbols(rgen, nofRE)
	}
	return rebuffer.FromSlices(layers...)
}

func randomPrecoding(t *testing.T, rgen *rand.Rand, nofLayers, nofPorts, nofPRG, prgSize int) *precoding.Configuration {
	t.Helper()
	pc, err := precoding.NewConfiguration(nofLayers, nofPorts, nofPRG, prgSize)
	require.NoError(t, err)
	for prg := 0; prg < nofPRG; prg++ {
		for layer := 0; layer < nofLayers; layer++ {
			for port := 0; port < nofPorts; port++ {
				pc.SetCoefficient(complex(rgen.Float64()-0.5, rgen.Float64()-0.5), layer, port, prg)
			}
		}
	}
	return pc
}

// planes returns every RE of g as complex64, indexed [port][symbol][k].
func planes(g *grid.ResourceGrid) [][][]complex64 {
	r := g.Reader()
	out := make([][][]complex64, g.NofPorts())
	for port := range out {
		out[port] = make([][]complex64, g.NofSymbols())
		for symbol := range out[port] {
			plane := make([]complex64, g.NofSubc())
			r.GetContiguous(plane, port, symbol, 0)
			out[port][symbol] = plane
		}
	}
	return out
}

type recordingObserver struct {
	paths []string
	res   []int
}

func (o *recordingObserver) OnMapped(path string, nofRE int) {
	o.paths = append(o.paths, path)
	o.res = append(o.res, nofRE)
}

func TestMap_DMRSType1CombPlacement(t *testing.T) {
	for cdm, res := range []pattern.REMask{pattern.DMRSType1CDM0, pattern.DMRSType1CDM1} {
		obs := &recordingObserver{}
		m := New(WithObserver(obs))
		g := newGrid(t)
		pc, err := precoding.NewWidebandIdentity(2)
		require.NoError(t, err)

		input := rebuffer.FromSlices(
			[]complex64{1, 2, 3, 4, 5, 6},
			[]complex64{-1, -2, -3, -4, -5, -6},
		)
		m.Map(g.Writer(), input, pattern.NewRePattern(0, 1, res, 2, 3), pc)

		view0 := g.Reader().View(0, 2)
		view1 := g.Reader().View(1, 2)
		for k := 0; k < api.NRE; k++ {
			if k%2 == cdm {
				assert.Equal(t, input.Slice(0)[k/2], view0[k].Complex64(), "cdm=%d k=%d", cdm, k)
				assert.Equal(t, input.Slice(1)[k/2], view1[k].Complex64(), "cdm=%d k=%d", cdm, k)
			} else {
				assert.True(t, view0[k].IsZero())
				assert.True(t, view1[k].IsZero())
			}
		}
		for k := api.NRE; k < testSubc; k++ {
			require.True(t, view0[k].IsZero())
		}
		assert.True(t, g.Reader().IsPortEmpty(2))
		assert.Equal(t, []string{PathDMRSType1}, obs.paths)
		assert.Equal(t, []int{6}, obs.res)
	}
}

func TestMap_DMRSType1MatchesGeneralPath(t *testing.T) {
	rgen := rand.New(rand.NewSource(11))
	for _, res := range []pattern.REMask{pattern.DMRSType1CDM0, pattern.DMRSType1CDM1} {
		for _, nofPRG := range []int{1, 7} {
			pc := randomPrecoding(t, rgen, 2, 3, nofPRG, 4)
			p := pattern.NewRePattern(3, 21, res, 2, 4)
			input := randomLayers(rgen, 2, 18*6*2)

			fast := newGrid(t)
			New().Map(fast.Writer(), input, p, pc)

			general := newGrid(t)
			New().mapGeneral(general.Writer(), input, p, pc)

			require.Empty(t, cmp.Diff(planes(general), planes(fast)), "nofPRG=%d", nofPRG)
		}
	}
}

func TestMap_BypassMatchesRawPut(t *testing.T) {
	rgen := rand.New(rand.NewSource(12))
	rbs := bitset.FromIndices(api.MaxRB, 0, 1, 5, 9, 10, 20)
	res := pattern.REMask{true, true, false, true, false, false, true, true, true, false, false, true}
	p := pattern.RePattern{RBs: rbs, REs: res, Symbols: bitset.FromIndices(api.MaxNSymbPerSlot, 0, 6, 13)}
	perSymbol := rbs.Count() * res.Count()
	input := randomLayers(rgen, 1, perSymbol*3)

	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)
	require.True(t, identity.IsIdentityBypass())
	obs := &recordingObserver{}
	bypass := newGrid(t)
	New(WithObserver(obs)).Map(bypass.Writer(), input, p, identity)
	assert.Equal(t, []string{PathBypass}, obs.paths)

	raw := newGrid(t)
	mask := bitset.New(testSubc)
	p.IncludeMask(mask, 0)
	rest := input.Slice(0)
	for _, symbol := range []int{0, 6, 13} {
		rest = raw.Writer().PutBitset(0, symbol, 0, mask, rest)
	}
	require.Empty(t, rest)
	require.Empty(t, cmp.Diff(planes(raw), planes(bypass)))

	// Unit weights split over two PRGs take the general path with the same result.
	twoPRG, err := precoding.NewConfiguration(1, 1, 2, 16)
	require.NoError(t, err)
	twoPRG.SetCoefficient(1, 0, 0, 0)
	twoPRG.SetCoefficient(1, 0, 0, 1)
	require.False(t, twoPRG.IsIdentityBypass())
	general := newGrid(t)
	New().Map(general.Writer(), input, p, twoPRG)
	require.Empty(t, cmp.Diff(planes(raw), planes(general)))
}

func TestMap_GeneralPathPrecodesPerPRG(t *testing.T) {
	rgen := rand.New(rand.NewSource(13))
	pc := randomPrecoding(t, rgen, 2, 2, 4, 8)
	p := pattern.NewRePattern(6, 10, pattern.AllSubcarriers, 1, 2)
	input := randomLayers(rgen, 2, 4*api.NRE)

	g := newGrid(t)
	New().Map(g.Writer(), input, p, pc)

	view := make([]complex64, testSubc)
	for port := 0; port < 2; port++ {
		g.Reader().GetContiguous(view, port, 1, 0)
		for i := 0; i < 4*api.NRE; i++ {
			k := 6*api.NRE + i
			w := pc.PRGCoefficients(k / (8 * api.NRE))
			want := input.Slice(0)[i]*w.At(0, port) + input.Slice(1)[i]*w.At(1, port)
			require.Equal(t, bf16.Round(want), view[k], "port=%d k=%d", port, k)
		}
	}
}

func TestMap_RECountMismatchPanics(t *testing.T) {
	rgen := rand.New(rand.NewSource(14))
	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)
	one, err := precoding.NewWidebandOneLayerAllPorts(2)
	require.NoError(t, err)
	p := pattern.NewRePattern(0, 2, pattern.AllSubcarriers, 0, 2)
	comb := pattern.NewRePattern(0, 2, pattern.DMRSType1CDM0, 0, 1)

	cases := map[string]func(){
		"bypass too few":   func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 47), p, identity) },
		"bypass too many":  func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 49), p, identity) },
		"general too many": func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 49), p, one) },
		"dmrs too many":    func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 13), comb, one) },
		"dmrs too few":     func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 11), comb, one) },
		"layers mismatch":  func() { New().Map(newGrid(t).Writer(), randomLayers(rgen, 2, 48), p, one) },
		"ports beyond grid": func() {
			New().Map(newGrid(t).Writer(), randomLayers(rgen, 1, 48), p, randomPrecoding(t, rgen, 1, 5, 1, 4))
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			require.Panics(t, fn)
		})
	}
}

// referenceMapSymbols maps one RE at a time in (symbol, subcarrier) order.
func referenceMapSymbols(g *grid.ResourceGrid, symbols []complex64, alloc pattern.AllocationConfiguration,
	reserved *pattern.RePatternList, pc *precoding.Configuration, reSkip int) int {
	nofLayers := pc.NofLayers()
	crbMask := alloc.Freq.CRBMask(alloc.BWPStartRB)
	mask := bitset.New(g.NofSubc())
	count := 0
	used := 0
	for symbol := alloc.StartSymbol; symbol < alloc.StartSymbol+alloc.NofSymbols; symbol++ {
		mask.Reset()
		crbMask.ForEach(func(crb int) { mask.Fill(crb*api.NRE, (crb+1)*api.NRE) })
		reserved.ExcludeMask(mask, symbol)
		mask.ForEach(func(k int) {
			count++
			if count <= reSkip || used+nofLayers > len(symbols) {
				return
			}
			w := pc.PRGCoefficients(prgIndex(pc, k/api.NRE))
			for port := 0; port < pc.NofPorts(); port++ {
				var acc complex64
				for layer := 0; layer < nofLayers; layer++ {
					acc += symbols[used+layer] * w.At(layer, port)
				}
				g.Writer().PutContiguous(port, symbol, k, []complex64{acc})
			}
			used += nofLayers
		})
	}
	return used
}

func TestMapSymbols_SkipResumesAtSecondSymbol(t *testing.T) {
	rgen := rand.New(rand.NewSource(15))
	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)
	alloc := pattern.AllocationConfiguration{
		StartSymbol: 3,
		NofSymbols:  2,
		BWPStartRB:  2,
		Freq:        pattern.NewContiguousAllocation(0, 4),
	}
	symbols := randomSymbols(rgen, 48)
	buf := NewSliceSymbolBuffer(symbols, 0)

	g := newGrid(t)
	New().MapSymbols(g.Writer(), buf, alloc, nil, identity, 48)

	assert.True(t, buf.Empty())
	view := make([]complex64, testSubc)
	g.Reader().GetContiguous(view, 0, 3, 0)
	assert.Empty(t, cmp.Diff(make([]complex64, testSubc), view))

	g.Reader().GetContiguous(view, 0, 4, 0)
	assert.Equal(t, bf16.Round(symbols[0]), view[2*api.NRE])
	want := make([]complex64, testSubc)
	for i, s := range symbols {
		want[2*api.NRE+i] = bf16.Round(s)
	}
	assert.Empty(t, cmp.Diff(want, view))
}

func TestMapSymbols_SkipInsideInterval(t *testing.T) {
	rgen := rand.New(rand.NewSource(16))
	identity, err := precoding.NewWidebandIdentity(1)
	require.NoError(t, err)
	alloc := pattern.AllocationConfiguration{StartSymbol: 0, NofSymbols: 2, Freq: pattern.NewContiguousAllocation(0, 4)}
	symbols := randomSymbols(rgen, 46)

	g := newGrid(t)
	New().MapSymbols(g.Writer(), NewSliceSymbolBuffer(symbols, 0), alloc, nil, identity, 50)

	view := g.Reader().View(0, 1)
	assert.True(t, view[0].IsZero())
	assert.True(t, view[1].IsZero())
	assert.Equal(t, bf16.Round(symbols[0]), view[2].Complex64())
	assert.Equal(t, bf16.Round(symbols[45]), view[47].Complex64())
}

func TestMapSymbols_MatchesReference(t *testing.T) {
	rgen := rand.New(rand.NewSource(17))
	csi := pattern.NewRePattern(0, testPRB, pattern.REMask{2: true, 3: true, 8: true}, 5, 6)
	ptrs := pattern.RePattern{
		RBs:     bitset.FromIndices(api.MaxRB, 4, 8, 12),
		REs:     pattern.REMask{5: true},
		Symbols: bitset.FromIndices(api.MaxNSymbPerSlot, 2, 3, 4, 5, 6, 7, 8, 9),
	}
	reserved := pattern.NewRePatternList(csi, ptrs)
	rbs := bitset.New(testPRB)
	for _, rb := range []int{0, 1, 2, 5, 6, 7, 8, 9, 13, 14, 20} {
		rbs.Set(rb)
	}

	cases := []struct {
		name      string
		layers    int
		ports     int
		nofPRG    int
		prgSize   int
		blockSize int
		reSkip    int
		freq      pattern.RBAllocation
	}{
		{name: "contiguous single layer", layers: 1, ports: 1, nofPRG: 1, prgSize: precoding.WidebandPRGSize, freq: pattern.NewContiguousAllocation(1, 16)},
		{name: "bitmap two layers", layers: 2, ports: 2, nofPRG: 1, prgSize: precoding.WidebandPRGSize, blockSize: 50, freq: pattern.NewBitmapAllocation(rbs)},
		{name: "PRG bounded", layers: 2, ports: 4, nofPRG: 7, prgSize: 4, blockSize: 64, reSkip: 100, freq: pattern.NewBitmapAllocation(rbs)},
		{name: "small blocks", layers: 3, ports: 4, nofPRG: 13, prgSize: 2, blockSize: 7, reSkip: 13, freq: pattern.NewContiguousAllocation(2, 20)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			pc := randomPrecoding(t, rgen, tc.layers, tc.ports, tc.nofPRG, tc.prgSize)
			alloc := pattern.AllocationConfiguration{StartSymbol: 1, NofSymbols: 12, BWPStartRB: 1, Freq: tc.freq}
			symbols := randomSymbols(rgen, 4000*tc.layers)

			ref := newGrid(t)
			used := referenceMapSymbols(ref, symbols, alloc, reserved, pc, tc.reSkip)

			g := newGrid(t)
			buf := NewSliceSymbolBuffer(symbols, tc.blockSize)
			obs := &recordingObserver{}
			New(WithObserver(obs)).MapSymbols(g.Writer(), buf, alloc, reserved, pc, tc.reSkip)

			require.Empty(t, cmp.Diff(planes(ref), planes(g)))
			assert.Equal(t, len(symbols)-used, buf.Remaining())
			assert.Equal(t, []int{used / tc.layers}, obs.res)
		})
	}
}

func TestMapSymbols_StopsWhenBufferRunsOut(t *testing.T) {
	rgen := rand.New(rand.NewSource(18))
	pc := randomPrecoding(t, rgen, 2, 2, 1, precoding.WidebandPRGSize)
	alloc := pattern.AllocationConfiguration{StartSymbol: 0, NofSymbols: 14, Freq: pattern.NewContiguousAllocation(0, testPRB)}
	symbols := randomSymbols(rgen, 2*(testSubc+17))

	ref := newGrid(t)
	referenceMapSymbols(ref, symbols, alloc, nil, pc, 0)

	g := newGrid(t)
	buf := NewSliceSymbolBuffer(symbols, 96)
	New().MapSymbols(g.Writer(), buf, alloc, nil, pc, 0)

	assert.True(t, buf.Empty())
	require.Empty(t, cmp.Diff(planes(ref), planes(g)))
	assert.True(t, g.Reader().View(0, 1)[17].IsZero())
	assert.False(t, g.Reader().View(0, 1)[16].IsZero())
}

func TestMapSymbols_ContractViolations(t *testing.T) {
	rgen := rand.New(rand.NewSource(19))
	alloc := pattern.AllocationConfiguration{StartSymbol: 0, NofSymbols: 2, Freq: pattern.NewContiguousAllocation(0, 4)}
	buf := func() api.SymbolBuffer { return NewSliceSymbolBuffer(randomSymbols(rgen, 200), 0) }
	one := randomPrecoding(t, rgen, 1, 1, 1, precoding.WidebandPRGSize)

	cases := map[string]func(){
		"too many antennas": func() {
			New().MapSymbols(newGrid(t).Writer(), buf(), alloc, nil, randomPrecoding(t, rgen, 1, 5, 1, 4), 0)
		},
		"negative skip": func() { New().MapSymbols(newGrid(t).Writer(), buf(), alloc, nil, one, -1) },
		"symbols beyond grid": func() {
			bad := alloc
			bad.StartSymbol = 13
			New().MapSymbols(newGrid(t).Writer(), buf(), bad, nil, one, 0)
		},
		"CRBs beyond grid": func() {
			bad := alloc
			bad.BWPStartRB = testPRB - 2
			New().MapSymbols(newGrid(t).Writer(), buf(), bad, nil, one, 0)
		},
		"block below layers": func() {
			New().MapSymbols(newGrid(t).Writer(), NewSliceSymbolBuffer(randomSymbols(rgen, 3), 0), alloc, nil,
				randomPrecoding(t, rgen, 2, 2, 1, 4), 0)
		},
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			require.Panics(t, fn)
		})
	}
}

func TestMapREBlock_ViewPathMatchesScatterPath(t *testing.T) {
	rgen := rand.New(rand.NewSource(20))
	pc := randomPrecoding(t, rgen, 2, 3, 1, precoding.WidebandPRGSize)
	symbols := randomSymbols(rgen, 2*20)

	contiguous := bitset.New(30)
	contiguous.Fill(4, 24)
	viewGrid := newGrid(t)
	New().mapREBlock(viewGrid.Writer(), contiguous, pc.PRGCoefficients(0), symbols, 7, 36)

	// A hole at the end of a wider mask forces the scatter path over the same REs.
	scattered := bitset.New(31)
	scattered.Fill(4, 24)
	scattered.Set(30)
	scatterGrid := newGrid(t)
	New().mapREBlock(scatterGrid.Writer(), scattered, pc.PRGCoefficients(0), append(symbols, 0, 0), 7, 36)
	for port := 0; port < 3; port++ {
		scatterGrid.Writer().PutContiguous(port, 7, 66, []complex64{0})
	}

	require.Empty(t, cmp.Diff(planes(viewGrid), planes(scatterGrid)))
	assert.True(t, viewGrid.Reader().IsPortEmpty(3))
}

func TestCoalesce(t *testing.T) {
	got := coalesce([]int{0, 1, 2, 5, 7, 8}, nil)
	assert.Equal(t, []crbInterval{{0, 3}, {5, 6}, {7, 9}}, got)
	assert.Empty(t, coalesce(nil, nil))
}

func TestSliceSymbolBuffer(t *testing.T) {
	buf := NewSliceSymbolBuffer([]complex64{1, 2, 3, 4, 5}, 2)
	assert.Equal(t, 2, buf.MaxBlockSize())
	assert.Equal(t, []complex64{1, 2}, buf.PopSymbols(2))
	require.Panics(t, func() { buf.PopSymbols(3) })
	buf.PopSymbols(2)
	assert.Equal(t, 1, buf.MaxBlockSize())
	assert.False(t, buf.Empty())
	buf.PopSymbols(1)
	assert.True(t, buf.Empty())
	assert.Equal(t, 0, buf.MaxBlockSize())
}
