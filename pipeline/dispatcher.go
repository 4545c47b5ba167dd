// File: pipeline/dispatcher.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/control"
)

// SectorDispatcher processes slots on an executor. Slots of different sectors
// run in parallel on different grids; the caller keeps the slots of one sector
// far enough apart that a ring entry is not reused while still in flight.
type SectorDispatcher struct {
	proc       *SlotProcessor
	exec       api.Executor
	nofSectors int

	wg        sync.WaitGroup
	processed atomic.Uint64
	failed    atomic.Uint64
}

// NewSectorDispatcher returns a dispatcher for sectors [0, nofSectors).
func NewSectorDispatcher(proc *SlotProcessor, exec api.Executor, nofSectors int) (*SectorDispatcher, error) {
	if proc == nil || exec == nil {
		return nil, fmt.Errorf("pipeline: nil processor or executor: %w", api.ErrInvalidArgument)
	}
	if nofSectors < 1 {
		return nil, fmt.Errorf("pipeline: %d sectors: %w", nofSectors, api.ErrInvalidArgument)
	}
	return &SectorDispatcher{proc: proc, exec: exec, nofSectors: nofSectors}, nil
}

// Dispatch queues one slot. The jobs must not be shared with another Dispatch.
func (d *SectorDispatcher) Dispatch(ctx api.ResourceGridContext, jobs ...Job) error {
	if ctx.Sector < 0 || ctx.Sector >= d.nofSectors {
		return fmt.Errorf("pipeline: sector %d outside [0, %d): %w", ctx.Sector, d.nofSectors, api.ErrInvalidArgument)
	}
	d.wg.Add(1)
	err := d.exec.Submit(func() {
		defer d.wg.Done()
		if err := d.proc.Process(ctx, jobs...); err != nil {
			d.failed.Add(1)
			control.Logf("[pipeline] %v", err)
			return
		}
		d.processed.Add(1)
	})
	if err != nil {
		d.wg.Done()
		return fmt.Errorf("pipeline: %s: %w", ctx, err)
	}
	return nil
}

// Wait blocks until every dispatched slot has finished.
func (d *SectorDispatcher) Wait() { d.wg.Wait() }

// Processed returns the number of slots sent to the gateway.
func (d *SectorDispatcher) Processed() uint64 { return d.processed.Load() }

// Failed returns the number of slots dropped for lack of a grid.
func (d *SectorDispatcher) Failed() uint64 { return d.failed.Load() }
