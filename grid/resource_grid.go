// File: grid/resource_grid.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package grid

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
)

// ZeroingObserver is notified after each SetAllZero with the number of ports actually cleared.
type ZeroingObserver interface {
	OnSetAllZero(zeroedPorts int)
}

// Option configures a ResourceGrid.
type Option func(*options)

type options struct {
	lockMemory bool
	observer   ZeroingObserver
}

// WithLockedMemory locks the sample storage in RAM so slot processing never page-faults.
func WithLockedMemory() Option {
	return func(o *options) { o.lockMemory = true }
}

// WithZeroingObserver reports zeroing activity, e.g. to metrics.
func WithZeroingObserver(obs ZeroingObserver) Option {
	return func(o *options) { o.observer = obs }
}

// ResourceGrid owns the samples of one slot and hands out reader and writer views.
type ResourceGrid struct {
	st       storage
	empty    atomic.Uint64
	allPorts uint64
	locked   bool
	observer ZeroingObserver
	reader   Reader
	writer   Writer
}

var _ api.ResourceGrid = (*ResourceGrid)(nil)

// New allocates a zeroed grid with all ports empty.
func New(nofPorts, nofSymbols, nofSubc int, opts ...Option) (*ResourceGrid, error) {
	switch {
	case nofPorts < 1 || nofPorts > api.MaxPorts:
		return nil, fmt.Errorf("grid: %d ports outside [1, %d]: %w", nofPorts, api.MaxPorts, api.ErrInvalidArgument)
	case nofSymbols < 1 || nofSymbols > api.MaxNSymbPerSlot:
		return nil, fmt.Errorf("grid: %d symbols outside [1, %d]: %w", nofSymbols, api.MaxNSymbPerSlot, api.ErrInvalidArgument)
	case nofSubc < api.NRE || nofSubc > api.MaxRB*api.NRE || nofSubc%api.NRE != 0:
		return nil, fmt.Errorf("grid: %d subcarriers is not a multiple of %d up to %d: %w",
			nofSubc, api.NRE, api.MaxRB*api.NRE, api.ErrInvalidArgument)
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	g := &ResourceGrid{
		st:       newStorage(nofSubc, nofSymbols, nofPorts),
		observer: o.observer,
	}
	if nofPorts == api.MaxPorts {
		g.allPorts = ^uint64(0)
	} else {
		g.allPorts = (uint64(1) << uint(nofPorts)) - 1
	}
	g.empty.Store(g.allPorts)
	g.reader = Reader{g: g}
	g.writer = Writer{g: g}

	if o.lockMemory {
		if err := lockMemory(g.st.data); err != nil {
			return nil, fmt.Errorf("grid: lock %d samples: %w", len(g.st.data), err)
		}
		g.locked = true
	}
	return g, nil
}

func (g *ResourceGrid) NofPorts() int   { return g.st.nofPorts }
func (g *ResourceGrid) NofSubc() int    { return g.st.nofSubc }
func (g *ResourceGrid) NofSymbols() int { return g.st.nofSymbols }

// SetAllZero zeroes every port written since the previous call and marks all ports empty.
func (g *ResourceGrid) SetAllZero() {
	empty := g.empty.Load()
	zeroed := 0
	for port := 0; port < g.st.nofPorts; port++ {
		if empty&(1<<uint(port)) != 0 {
			continue
		}
		clear(g.st.portPlanes(port))
		zeroed++
	}
	g.empty.Store(g.allPorts)
	if g.observer != nil {
		g.observer.OnSetAllZero(zeroed)
	}
}

// Reader returns the read-only view. It is valid for the grid's lifetime.
func (g *ResourceGrid) Reader() api.ResourceGridReader { return &g.reader }

// Writer returns the mutable view. It is valid for the grid's lifetime.
func (g *ResourceGrid) Writer() api.ResourceGridWriter { return &g.writer }

// Close releases the memory lock taken by WithLockedMemory. The grid stays usable.
func (g *ResourceGrid) Close() error {
	if !g.locked {
		return nil
	}
	g.locked = false
	return unlockMemory(g.st.data)
}

func (g *ResourceGrid) markWritten(port int) {
	g.empty.And(^(uint64(1) << uint(port)))
}

func (g *ResourceGrid) isPortEmpty(port int) bool {
	return g.empty.Load()&(1<<uint(port)) != 0
}
