// File: pipeline/slot_processor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"fmt"
	"time"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/mapper"
	"github.com/momentics/hioload-ran/pool"
)

// GridSource yields the grid of a slot together with the function that gives it back.
// Both pool.RingGridPool and pool.SharedGridPool implement it.
type GridSource interface {
	Acquire(ctx api.ResourceGridContext) (grid api.ResourceGrid, release func(), ok bool)
}

// SlotObserver receives the duration of every processed slot.
type SlotObserver interface {
	OnSlotProcessed(d time.Duration)
}

type nopSlotObserver struct{}

func (nopSlotObserver) OnSlotProcessed(time.Duration) {}

// Option configures a SlotProcessor.
type Option func(*SlotProcessor)

// WithMapperOptions configures every mapper the processor creates.
func WithMapperOptions(opts ...mapper.Option) Option {
	return func(p *SlotProcessor) { p.mapperOpts = append(p.mapperOpts, opts...) }
}

// WithSlotObserver reports slot durations to obs.
func WithSlotObserver(obs SlotObserver) Option {
	return func(p *SlotProcessor) {
		if obs != nil {
			p.observer = obs
		}
	}
}

// SlotProcessor fills and transmits one slot grid per Process call. It is safe
// for concurrent use on different slots: each call borrows its own mapper.
type SlotProcessor struct {
	grids      GridSource
	gateway    api.TransmitGateway
	mapperOpts []mapper.Option
	mappers    *pool.SyncPool[*mapper.Mapper]
	observer   SlotObserver
}

// NewSlotProcessor returns a processor reading grids from grids and sending them to gateway.
func NewSlotProcessor(grids GridSource, gateway api.TransmitGateway, opts ...Option) *SlotProcessor {
	p := &SlotProcessor{
		grids:    grids,
		gateway:  gateway,
		observer: nopSlotObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.mappers = pool.NewSyncPool(func() *mapper.Mapper { return mapper.New(p.mapperOpts...) })
	return p
}

// Process zeroes the slot grid, runs jobs in order and sends the grid reader.
// It fails with api.ErrResourceExhausted when the grid source has no grid for
// the slot. The grid goes back to its source after Send returns.
func (p *SlotProcessor) Process(ctx api.ResourceGridContext, jobs ...Job) error {
	g, release, ok := p.grids.Acquire(ctx)
	if !ok {
		return fmt.Errorf("pipeline: %s: no grid: %w", ctx, api.ErrResourceExhausted)
	}
	defer release()

	start := time.Now()
	g.SetAllZero()
	m := p.mappers.Get()
	defer p.mappers.Put(m)

	w := g.Writer()
	for _, job := range jobs {
		job.Run(m, w)
	}
	p.gateway.Send(ctx, g.Reader())
	p.observer.OnSlotProcessed(time.Since(start))
	return nil
}
