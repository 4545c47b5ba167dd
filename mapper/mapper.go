// File: mapper/mapper.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mapper

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/bitset"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/precoding"
	"github.com/momentics/hioload-ran/rebuffer"
)

// ResourceGridMapper maps symbols into a resource grid writer.
type ResourceGridMapper interface {
	// Map writes input over the REs selected by p, layer-mapped and precoded with pc.
	// input must hold exactly the number of REs the pattern selects in the grid.
	Map(w api.ResourceGridWriter, input rebuffer.Reader, p pattern.RePattern, pc *precoding.Configuration)
	// MapSymbols writes symbols popped from buf over the allocation, excluding the
	// REs of reserved and the first reSkip REs. It returns early when buf runs empty.
	MapSymbols(w api.ResourceGridWriter, buf api.SymbolBuffer, alloc pattern.AllocationConfiguration,
		reserved *pattern.RePatternList, pc *precoding.Configuration, reSkip int)
}

// Mapping paths reported to an Observer.
const (
	PathDMRSType1    = "dmrs_type1"
	PathBypass       = "bypass"
	PathGeneral      = "general"
	PathSymbolBuffer = "symbol_buffer"
)

// Observer receives one notification per mapping call with the path taken and
// the number of RE positions written per port.
type Observer interface {
	OnMapped(path string, nofRE int)
}

type nopObserver struct{}

func (nopObserver) OnMapped(string, int) {}

// Option configures a Mapper.
type Option func(*Mapper)

// WithPrecoder replaces the generic precoder.
func WithPrecoder(p precoding.Precoder) Option {
	return func(m *Mapper) { m.precoder = p }
}

// WithObserver reports every mapping call to obs.
func WithObserver(obs Observer) Option {
	return func(m *Mapper) {
		if obs != nil {
			m.observer = obs
		}
	}
}

// Mapper is the ResourceGridMapper implementation.
type Mapper struct {
	precoder precoding.Precoder
	observer Observer

	// Scratch reused across calls.
	precoded  *rebuffer.Dynamic
	reMask    *bitset.BoundedBitset
	baseMask  *bitset.BoundedBitset
	blockMask *bitset.BoundedBitset
	views     [][]bf16.CBF16
	crbs      []int
	intervals []crbInterval
}

var _ ResourceGridMapper = (*Mapper)(nil)

// New returns a Mapper using the generic precoder.
func New(opts ...Option) *Mapper {
	m := &Mapper{
		precoder:  precoding.NewGenericPrecoder(),
		observer:  nopObserver{},
		precoded:  rebuffer.NewDynamic(0, 0),
		reMask:    bitset.New(0),
		baseMask:  bitset.New(0),
		blockMask: bitset.New(0),
		views:     make([][]bf16.CBF16, 0, precoding.MaxPorts),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// prgIndex returns the PRG holding CRB rb.
func prgIndex(pc *precoding.Configuration, rb int) int {
	if pc.NofPRG() == 1 {
		return 0
	}
	return rb / pc.PRGSize()
}
