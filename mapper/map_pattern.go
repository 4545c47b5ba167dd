// File: mapper/map_pattern.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mapper

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/internal/invariant"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/precoding"
	"github.com/momentics/hioload-ran/rebuffer"
)

// dmrsStride is the subcarrier spacing of a DM-RS type 1 comb.
const dmrsStride = 2

func (m *Mapper) Map(w api.ResourceGridWriter, input rebuffer.Reader, p pattern.RePattern, pc *precoding.Configuration) {
	if input.NofSlices() != pc.NofLayers() {
		invariant.Failf("mapper: input has %d layers, precoding has %d", input.NofSlices(), pc.NofLayers())
	}
	if pc.NofPorts() > w.NofPorts() {
		invariant.Failf("mapper: precoding has %d ports, grid has %d", pc.NofPorts(), w.NofPorts())
	}

	switch {
	case p.REs == pattern.DMRSType1CDM0 && p.RBs.IsContiguous():
		m.mapDMRSType1(w, input, p, pc, 0)
	case p.REs == pattern.DMRSType1CDM1 && p.RBs.IsContiguous():
		m.mapDMRSType1(w, input, p, pc, 1)
	default:
		m.mapGeneral(w, input, p, pc)
	}
}

// mapDMRSType1 writes a comb pattern over contiguous RBs with one strided put per
// port and PRG. cdm is the comb offset within the RB.
func (m *Mapper) mapDMRSType1(w api.ResourceGridWriter, input rebuffer.Reader, p pattern.RePattern, pc *precoding.Configuration, cdm int) {
	rbBegin := p.RBs.FindLowest()
	rbEnd := p.RBs.FindHighest() + 1
	if rbEnd*api.NRE > w.NofSubc() {
		invariant.Failf("mapper: DM-RS RBs [%d, %d) exceed %d subcarriers", rbBegin, rbEnd, w.NofSubc())
	}
	const rePerRB = api.NRE / dmrsStride
	bypass := pc.IsIdentityBypass()
	nofPorts := pc.NofPorts()
	nofInput := input.NofRE()

	offset := 0
	for symbol := p.Symbols.FindLowest(); symbol >= 0; symbol = p.Symbols.FindLowestFrom(symbol + 1) {
		for rb := rbBegin; rb < rbEnd; {
			prg := prgIndex(pc, rb)
			prgEnd := rbEnd
			if pc.NofPRG() > 1 {
				prgEnd = min(rbEnd, (prg+1)*pc.PRGSize())
			}
			n := (prgEnd - rb) * rePerRB
			if offset+n > nofInput {
				invariant.Failf("mapper: pattern selects more than the %d input REs", nofInput)
			}
			kInit := rb*api.NRE + cdm

			if bypass {
				w.PutStrided(0, symbol, kInit, dmrsStride, input.Slice(0)[offset:offset+n])
			} else {
				m.precoded.Resize(nofPorts, n)
				m.precoder.ApplyPrecoding(m.precoded, rebuffer.NewView(input, offset, n), pc.PRGCoefficients(prg))
				for port := 0; port < nofPorts; port++ {
					w.PutStrided(port, symbol, kInit, dmrsStride, m.precoded.Slice(port))
				}
			}
			offset += n
			rb = prgEnd
		}
	}
	if offset != nofInput {
		invariant.Failf("mapper: mapped %d REs, input holds %d", offset, nofInput)
	}
	m.observer.OnMapped(PathDMRSType1, offset)
}

// mapGeneral maps an arbitrary pattern. The per-symbol RE mask is the same for
// every symbol of the pattern and is computed once.
func (m *Mapper) mapGeneral(w api.ResourceGridWriter, input rebuffer.Reader, p pattern.RePattern, pc *precoding.Configuration) {
	nofInput := input.NofRE()
	first := p.Symbols.FindLowest()
	if first < 0 {
		if nofInput != 0 {
			invariant.Failf("mapper: pattern selects no symbol, input holds %d REs", nofInput)
		}
		return
	}

	nofSubc := w.NofSubc()
	m.reMask.Resize(nofSubc)
	p.IncludeMask(m.reMask, first)
	nofRESymbol := m.reMask.Count()

	bypass := pc.IsIdentityBypass()
	nofPorts := pc.NofPorts()
	prgSubc := pc.PRGSize() * api.NRE

	offset := 0
	for symbol := first; symbol >= 0; symbol = p.Symbols.FindLowestFrom(symbol + 1) {
		if bypass {
			if offset+nofRESymbol > nofInput {
				invariant.Failf("mapper: pattern selects more than the %d input REs", nofInput)
			}
			w.PutBitset(0, symbol, 0, m.reMask, input.Slice(0)[offset:offset+nofRESymbol])
			offset += nofRESymbol
			continue
		}

		for prg := 0; prg < pc.NofPRG(); prg++ {
			begin, end := 0, nofSubc
			prgMask := m.reMask
			if pc.NofPRG() > 1 {
				begin = prg * prgSubc
				if begin >= nofSubc {
					break
				}
				end = min(nofSubc, begin+prgSubc)
				m.reMask.SliceInto(m.blockMask, begin, end)
				prgMask = m.blockMask
			}
			n := prgMask.Count()
			if n == 0 {
				continue
			}
			if offset+n > nofInput {
				invariant.Failf("mapper: pattern selects more than the %d input REs", nofInput)
			}

			m.precoded.Resize(nofPorts, n)
			m.precoder.ApplyPrecoding(m.precoded, rebuffer.NewView(input, offset, n), pc.PRGCoefficients(prg))
			for port := 0; port < nofPorts; port++ {
				w.PutBitset(port, symbol, begin, prgMask, m.precoded.Slice(port))
			}
			offset += n
		}
	}
	if offset != nofInput {
		invariant.Failf("mapper: mapped %d REs, input holds %d", offset, nofInput)
	}
	if bypass {
		m.observer.OnMapped(PathBypass, offset)
	} else {
		m.observer.OnMapped(PathGeneral, offset)
	}
}
