// File: pool/ring_pool.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"fmt"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/internal/invariant"
)

// RingGridPool holds nofSlots grids per sector, reused round-robin by slot.
type RingGridPool struct {
	nofSectors int
	nofSlots   int
	grids      []api.ResourceGrid
}

var _ api.ResourceGridPool = (*RingGridPool)(nil)

// NewRingGridPool takes ownership of grids, laid out sector-major: the grid for
// sector s and ring index i is grids[s*nofSlots+i].
func NewRingGridPool(nofSectors, nofSlots int, grids []api.ResourceGrid) (*RingGridPool, error) {
	if nofSectors < 1 || nofSlots < 1 {
		return nil, fmt.Errorf("pool: %d sectors x %d slots: %w", nofSectors, nofSlots, api.ErrInvalidArgument)
	}
	if len(grids) != nofSectors*nofSlots {
		return nil, fmt.Errorf("pool: %d grids for %d sectors x %d slots: %w",
			len(grids), nofSectors, nofSlots, api.ErrInvalidArgument)
	}
	for i, g := range grids {
		if g == nil {
			return nil, fmt.Errorf("pool: grid %d is nil: %w", i, api.ErrInvalidArgument)
		}
	}
	return &RingGridPool{nofSectors: nofSectors, nofSlots: nofSlots, grids: grids}, nil
}

// Get returns the grid of ctx.Sector at ring index SystemSlot mod nofSlots.
// An out-of-range sector is a contract violation.
func (p *RingGridPool) Get(ctx api.ResourceGridContext) api.ResourceGrid {
	if ctx.Sector < 0 || ctx.Sector >= p.nofSectors {
		invariant.Failf("pool: sector %d outside [0, %d)", ctx.Sector, p.nofSectors)
	}
	return p.grids[ctx.Sector*p.nofSlots+ringIndex(ctx.Slot, p.nofSlots)]
}

// Acquire returns Get(ctx) with a no-op release. It never fails.
func (p *RingGridPool) Acquire(ctx api.ResourceGridContext) (api.ResourceGrid, func(), bool) {
	return p.Get(ctx), func() {}, true
}

// NofSectors returns the number of sectors.
func (p *RingGridPool) NofSectors() int { return p.nofSectors }

// NofSlots returns the ring length of each sector.
func (p *RingGridPool) NofSlots() int { return p.nofSlots }

// Grids returns every grid, sector-major.
func (p *RingGridPool) Grids() []api.ResourceGrid { return p.grids }

func ringIndex(slot api.SlotPoint, n int) int {
	idx := slot.SystemSlot() % n
	if idx < 0 {
		idx += n
	}
	return idx
}
