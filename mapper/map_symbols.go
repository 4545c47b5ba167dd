// File: mapper/map_symbols.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mapper

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/internal/invariant"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/precoding"
)

// crbInterval is a run of adjacent CRBs [begin, end).
type crbInterval struct {
	begin, end int
}

// coalesce appends to dst the maximal runs of adjacent CRBs in the ascending crbs.
func coalesce(crbs []int, dst []crbInterval) []crbInterval {
	for _, crb := range crbs {
		if n := len(dst); n > 0 && dst[n-1].end == crb {
			dst[n-1].end++
			continue
		}
		dst = append(dst, crbInterval{begin: crb, end: crb + 1})
	}
	return dst
}

func (m *Mapper) MapSymbols(w api.ResourceGridWriter, buf api.SymbolBuffer, alloc pattern.AllocationConfiguration,
	reserved *pattern.RePatternList, pc *precoding.Configuration, reSkip int) {
	nofLayers := pc.NofLayers()
	nofAntennas := pc.NofPorts()
	if nofAntennas < 1 || nofAntennas > w.NofPorts() {
		invariant.Failf("mapper: %d antennas outside [1, %d]", nofAntennas, w.NofPorts())
	}
	if nofLayers < 1 || nofLayers > nofAntennas {
		invariant.Failf("mapper: %d layers outside [1, %d]", nofLayers, nofAntennas)
	}
	if reSkip < 0 {
		invariant.Failf("mapper: negative RE skip %d", reSkip)
	}
	symbolEnd := alloc.StartSymbol + alloc.NofSymbols
	if alloc.StartSymbol < 0 || alloc.NofSymbols < 0 || symbolEnd > w.NofSymbols() {
		invariant.Failf("mapper: symbols [%d, %d) outside grid of %d symbols", alloc.StartSymbol, symbolEnd, w.NofSymbols())
	}

	nofSubc := w.NofSubc()
	m.crbs = alloc.Freq.CRBIndexes(alloc.BWPStartRB, m.crbs[:0])
	m.intervals = coalesce(m.crbs, m.intervals[:0])
	if n := len(m.intervals); n > 0 && m.intervals[n-1].end*api.NRE > nofSubc {
		invariant.Failf("mapper: CRB %d beyond grid of %d subcarriers", m.intervals[n-1].end-1, nofSubc)
	}

	m.baseMask.Resize(nofSubc)
	for _, iv := range m.intervals {
		m.baseMask.Fill(iv.begin*api.NRE, iv.end*api.NRE)
	}

	mapped := 0
	defer func() {
		m.observer.OnMapped(PathSymbolBuffer, mapped)
	}()

	reCount := 0
	for symbol := alloc.StartSymbol; symbol < symbolEnd; symbol++ {
		mask := m.reMask
		mask.CopyFrom(m.baseMask)
		reserved.ExcludeMask(mask, symbol)

		nofRE := mask.Count()
		if nofRE == 0 {
			continue
		}
		if reCount+nofRE <= reSkip {
			reCount += nofRE
			continue
		}

		for _, iv := range m.intervals {
			kBegin, kEnd := iv.begin*api.NRE, iv.end*api.NRE
			ivRE := mask.CountRange(kBegin, kEnd)
			if ivRE == 0 {
				continue
			}
			if reCount+ivRE <= reSkip {
				reCount += ivRE
				continue
			}

			k := kBegin
			if reCount < reSkip {
				k = nthSetFrom(mask, kBegin, reSkip-reCount)
				reCount = reSkip
			}

			for k < kEnd {
				if buf.Empty() {
					return
				}
				maxRE := buf.MaxBlockSize() / nofLayers
				if maxRE == 0 {
					invariant.Failf("mapper: symbol buffer block of %d symbols is smaller than %d layers", buf.MaxBlockSize(), nofLayers)
				}

				prg := prgIndex(pc, k/api.NRE)
				blockEnd := kEnd
				if pc.NofPRG() > 1 {
					blockEnd = min(kEnd, (prg+1)*pc.PRGSize()*api.NRE)
				}
				n := mask.CountRange(k, blockEnd)
				if n > maxRE {
					blockEnd = nthSetFrom(mask, k, maxRE)
					n = maxRE
				}
				if n == 0 {
					k = blockEnd
					continue
				}

				symbols := buf.PopSymbols(n * nofLayers)
				if len(symbols) != n*nofLayers {
					invariant.Failf("mapper: symbol buffer returned %d of %d symbols", len(symbols), n*nofLayers)
				}
				mask.SliceInto(m.blockMask, k, blockEnd)
				m.mapREBlock(w, m.blockMask, pc.PRGCoefficients(prg), symbols, symbol, k)
				mapped += n
				k = blockEnd
			}
		}
	}
}

// nthSetFrom returns the index of the n-th set bit (from zero) at or after start,
// or the mask size when there is none.
func nthSetFrom(mask *bitset.BoundedBitset, start, n int) int {
	k := mask.NthSet(mask.CountRange(0, start) + n)
	if k < 0 {
		return mask.Size()
	}
	return k
}

// mapREBlock layer-maps, precodes and writes one block of REs of one symbol.
// blockMask bit i selects subcarrier kOffset+i.
func (m *Mapper) mapREBlock(w api.ResourceGridWriter, blockMask *bitset.BoundedBitset, weights precoding.WeightMatrix,
	symbols []complex64, symbol, kOffset int) {
	nofPorts := weights.NofPorts()
	nofRE := blockMask.Count()

	if blockMask.IsContiguous() {
		first := kOffset + blockMask.FindLowest()
		views := m.views[:0]
		for port := 0; port < nofPorts; port++ {
			views = append(views, w.View(port, symbol)[first:first+nofRE])
		}
		m.views = views
		m.precoder.ApplyLayerMapAndPrecodingBF16(views, symbols, weights)
		return
	}

	m.precoded.Resize(nofPorts, nofRE)
	m.precoder.ApplyLayerMapAndPrecoding(m.precoded, symbols, weights)
	for port := 0; port < nofPorts; port++ {
		w.PutBitset(port, symbol, kOffset, blockMask, m.precoded.Slice(port))
	}
}
