// File: pool/shared_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Reference-counted grid pool. A grid is zeroed when its last reference is
// released, on the executor when one is configured, and becomes allocatable
// again once zeroing has finished.

package pool

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/control"
	"github.com/momentics/hioload-ran/internal/invariant"
)

// refZeroing marks an entry whose grid is being zeroed.
const refZeroing = -1

// SharedPoolObserver receives pool events.
type SharedPoolObserver interface {
	OnAllocate(ok bool)
	OnRelease()
	OnZeroingFallback()
}

type nopPoolObserver struct{}

func (nopPoolObserver) OnAllocate(bool)    {}
func (nopPoolObserver) OnRelease()         {}
func (nopPoolObserver) OnZeroingFallback() {}

// SharedPoolOption configures a SharedGridPool.
type SharedPoolOption func(*SharedGridPool)

// WithZeroingExecutor zeroes released grids on exec instead of the releasing goroutine.
func WithZeroingExecutor(exec api.Executor) SharedPoolOption {
	return func(p *SharedGridPool) { p.executor = exec }
}

// WithPoolObserver reports allocations and releases to obs.
func WithPoolObserver(obs SharedPoolObserver) SharedPoolOption {
	return func(p *SharedGridPool) {
		if obs != nil {
			p.observer = obs
		}
	}
}

type sharedEntry struct {
	grid api.ResourceGrid
	// refs is the number of live SharedGrid references, 0 when free or refZeroing.
	refs atomic.Int32
	_    [56]byte
}

// SharedGridPool hands out reference-counted grids indexed by (sector, slot),
// laid out sector-major like RingGridPool.
type SharedGridPool struct {
	nofSectors int
	nofSlots   int
	entries    []sharedEntry
	executor   api.Executor
	observer   SharedPoolObserver
	failures   atomic.Uint64
}

// NewSharedGridPool takes ownership of grids, nofSlots per sector: the grid for
// sector s and ring index i is grids[s*nofSlots+i]. Each grid is zeroed once up front.
func NewSharedGridPool(nofSectors, nofSlots int, grids []api.ResourceGrid, opts ...SharedPoolOption) (*SharedGridPool, error) {
	if nofSectors < 1 || nofSlots < 1 {
		return nil, fmt.Errorf("pool: %d sectors x %d slots: %w", nofSectors, nofSlots, api.ErrInvalidArgument)
	}
	if len(grids) != nofSectors*nofSlots {
		return nil, fmt.Errorf("pool: %d grids for %d sectors x %d slots: %w",
			len(grids), nofSectors, nofSlots, api.ErrInvalidArgument)
	}
	p := &SharedGridPool{
		nofSectors: nofSectors,
		nofSlots:   nofSlots,
		entries:    make([]sharedEntry, len(grids)),
		observer:   nopPoolObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	for i, g := range grids {
		if g == nil {
			return nil, fmt.Errorf("pool: grid %d is nil: %w", i, api.ErrInvalidArgument)
		}
		g.SetAllZero()
		p.entries[i].grid = g
	}
	return p, nil
}

// Allocate returns the grid of ctx.Sector at ring index SystemSlot mod nofSlots
// with one reference. It fails, logging and counting the failure, when the
// previous user of that entry still holds it or zeroing has not finished.
// An out-of-range sector is a contract violation.
func (p *SharedGridPool) Allocate(ctx api.ResourceGridContext) (SharedGrid, bool) {
	if ctx.Sector < 0 || ctx.Sector >= p.nofSectors {
		invariant.Failf("pool: sector %d outside [0, %d)", ctx.Sector, p.nofSectors)
	}
	id := ctx.Sector*p.nofSlots + ringIndex(ctx.Slot, p.nofSlots)
	if !p.entries[id].refs.CompareAndSwap(0, 1) {
		n := p.failures.Add(1)
		p.observer.OnAllocate(false)
		control.Logf("[pool] %s: grid %d still in use (failure %d)", ctx, id, n)
		return SharedGrid{}, false
	}
	p.observer.OnAllocate(true)
	return SharedGrid{pool: p, id: id}, true
}

// Acquire is Allocate returning the grid with its release function.
func (p *SharedGridPool) Acquire(ctx api.ResourceGridContext) (api.ResourceGrid, func(), bool) {
	g, ok := p.Allocate(ctx)
	if !ok {
		return nil, nil, false
	}
	return g.Grid(), g.Release, true
}

// NofSectors returns the number of sectors.
func (p *SharedGridPool) NofSectors() int { return p.nofSectors }

// NofSlots returns the ring length of each sector.
func (p *SharedGridPool) NofSlots() int { return p.nofSlots }

// Size returns the number of grids.
func (p *SharedGridPool) Size() int { return len(p.entries) }

// Failures returns the number of refused allocations.
func (p *SharedGridPool) Failures() uint64 { return p.failures.Load() }

// InUse returns the number of entries referenced or being zeroed.
func (p *SharedGridPool) InUse() int {
	n := 0
	for i := range p.entries {
		if p.entries[i].refs.Load() != 0 {
			n++
		}
	}
	return n
}

func (p *SharedGridPool) retain(id int) {
	for {
		refs := p.entries[id].refs.Load()
		if refs < 1 {
			invariant.Failf("pool: copy of released grid %d", id)
		}
		if p.entries[id].refs.CompareAndSwap(refs, refs+1) {
			return
		}
	}
}

func (p *SharedGridPool) release(id int) {
	e := &p.entries[id]
	for {
		refs := e.refs.Load()
		if refs < 1 {
			invariant.Failf("pool: release of released grid %d", id)
		}
		if refs > 1 {
			if e.refs.CompareAndSwap(refs, refs-1) {
				return
			}
			continue
		}
		if e.refs.CompareAndSwap(1, refZeroing) {
			break
		}
	}

	p.observer.OnRelease()
	zero := func() {
		e.grid.SetAllZero()
		e.refs.Store(0)
	}
	if p.executor == nil {
		zero()
		return
	}
	if err := p.executor.Submit(zero); err != nil {
		p.observer.OnZeroingFallback()
		control.Logf("[pool] grid %d: asynchronous zeroing failed, zeroing inline: %v", id, err)
		zero()
	}
}

// SharedGrid is one reference to a pool grid. The zero value holds no grid.
type SharedGrid struct {
	pool *SharedGridPool
	id   int
}

// IsValid reports whether g holds a grid.
func (g SharedGrid) IsValid() bool { return g.pool != nil }

// Grid returns the referenced grid.
func (g SharedGrid) Grid() api.ResourceGrid {
	if g.pool == nil {
		invariant.Failf("pool: access through an empty shared grid")
	}
	return g.pool.entries[g.id].grid
}

// Copy adds a reference to the same grid.
func (g SharedGrid) Copy() SharedGrid {
	if g.pool == nil {
		return g
	}
	g.pool.retain(g.id)
	return g
}

// Release drops this reference. The last release zeroes the grid.
func (g SharedGrid) Release() {
	if g.pool == nil {
		return
	}
	g.pool.release(g.id)
}
