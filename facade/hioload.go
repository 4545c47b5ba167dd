// File: facade/hioload.go
// Unified facade layer for hioload-ran.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// This file defines the RAN struct, which builds every component of a resource
// grid deployment from one control.Config: the grids and their pool, the worker
// executor, the slot pipeline, the fronthaul uplink writer, metrics and debug
// probes. The facade exposes methods to start and stop the deployment, dispatch
// slots, reload configuration and reach the individual services.

package facade

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/control"
	"github.com/momentics/hioload-ran/grid"
	"github.com/momentics/hioload-ran/internal/concurrency"
	"github.com/momentics/hioload-ran/mapper"
	"github.com/momentics/hioload-ran/ofh"
	"github.com/momentics/hioload-ran/pipeline"
	"github.com/momentics/hioload-ran/pool"
)

// DefaultConfig returns the default deployment configuration.
func DefaultConfig() *control.Config {
	return control.DefaultConfig()
}

// RAN is the main facade type.
type RAN struct {
	store    *control.ConfigStore
	metrics  *control.Metrics // nil when metrics are disabled
	debug    *control.DebugProbes
	executor *concurrency.Executor

	grids      []*grid.ResourceGrid
	ringPool   *pool.RingGridPool   // set unless Pool.Shared
	sharedPool *pool.SharedGridPool // set when Pool.Shared

	processor  *pipeline.SlotProcessor
	dispatcher *pipeline.SectorDispatcher
	uplinkRepo *ofh.Repository
	uplink     *ofh.UplinkWriter

	mu         sync.Mutex
	started    bool
	closed     bool
	stopPushes context.CancelFunc
}

var _ api.GracefulShutdown = (*RAN)(nil)

// New builds a deployment sending every processed slot to gateway.
// A nil cfg selects DefaultConfig.
func New(cfg *control.Config, gateway api.TransmitGateway) (*RAN, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if gateway == nil {
		return nil, fmt.Errorf("facade: nil transmit gateway: %w", api.ErrInvalidArgument)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &RAN{
		store: control.NewConfigStore(cfg),
		debug: control.NewDebugProbes(),
	}
	if cfg.Metrics.Enabled {
		r.metrics = control.NewMetrics(cfg.Metrics.Namespace)
	}

	var execOpts []concurrency.ExecutorOption
	if len(cfg.Executor.CPUs) > 0 {
		execOpts = append(execOpts, concurrency.WithCPUAffinity(cfg.Executor.CPUs))
	}
	r.executor = concurrency.NewExecutor(cfg.Executor.NumWorkers, execOpts...)

	if err := r.buildGrids(cfg); err != nil {
		r.release()
		return nil, err
	}
	source, err := r.buildPool(cfg)
	if err != nil {
		r.release()
		return nil, err
	}

	var procOpts []pipeline.Option
	if r.metrics != nil {
		procOpts = append(procOpts,
			pipeline.WithMapperOptions(mapper.WithObserver(r.metrics)),
			pipeline.WithSlotObserver(r.metrics))
	}
	r.processor = pipeline.NewSlotProcessor(source, gateway, procOpts...)
	if r.dispatcher, err = pipeline.NewSectorDispatcher(r.processor, r.executor, cfg.Pool.NofSectors); err != nil {
		r.release()
		return nil, err
	}

	r.uplinkRepo = ofh.NewRepository()
	var ofhOpts []ofh.Option
	if r.metrics != nil {
		ofhOpts = append(ofhOpts, ofh.WithSectionObserver(r.metrics))
	}
	if r.uplink, err = ofh.NewUplinkWriter(cfg.OFH, r.uplinkRepo, ofhOpts...); err != nil {
		r.release()
		return nil, err
	}
	r.store.OnReload(r.onReload)

	if cfg.Debug.Enabled {
		r.registerProbes()
	}
	return r, nil
}

func (r *RAN) buildGrids(cfg *control.Config) error {
	var opts []grid.Option
	if cfg.Grid.LockMemory {
		opts = append(opts, grid.WithLockedMemory())
	}
	if r.metrics != nil {
		opts = append(opts, grid.WithZeroingObserver(r.metrics))
	}
	n := cfg.Pool.NofSectors * cfg.Pool.NofSlots
	r.grids = make([]*grid.ResourceGrid, 0, n)
	for i := 0; i < n; i++ {
		g, err := grid.New(cfg.Grid.NofPorts, cfg.Grid.NofSymbols, cfg.Grid.NofSubc(), opts...)
		if err != nil {
			return fmt.Errorf("facade: grid %d: %w", i, err)
		}
		r.grids = append(r.grids, g)
	}
	return nil
}

func (r *RAN) buildPool(cfg *control.Config) (pipeline.GridSource, error) {
	grids := make([]api.ResourceGrid, len(r.grids))
	for i, g := range r.grids {
		grids[i] = g
	}
	if !cfg.Pool.Shared {
		p, err := pool.NewRingGridPool(cfg.Pool.NofSectors, cfg.Pool.NofSlots, grids)
		if err != nil {
			return nil, err
		}
		r.ringPool = p
		return p, nil
	}
	opts := []pool.SharedPoolOption{pool.WithZeroingExecutor(r.executor)}
	if r.metrics != nil {
		opts = append(opts, pool.WithPoolObserver(r.metrics))
	}
	p, err := pool.NewSharedGridPool(cfg.Pool.NofSectors, cfg.Pool.NofSlots, grids, opts...)
	if err != nil {
		return nil, err
	}
	r.sharedPool = p
	return p, nil
}

func (r *RAN) registerProbes() {
	control.RegisterPlatformProbes(r.debug)
	r.debug.RegisterProbe("executor.stats", func() any { return r.executor.Stats() })
	r.debug.RegisterProbe("pipeline.processed", func() any { return r.dispatcher.Processed() })
	r.debug.RegisterProbe("pipeline.failed", func() any { return r.dispatcher.Failed() })
	r.debug.RegisterProbe("ofh.written", func() any { return r.uplink.Written() })
	r.debug.RegisterProbe("ofh.dropped", func() any { return r.uplink.Dropped() })
	r.debug.RegisterProbe("ofh.slots", func() any { return r.uplinkRepo.Len() })
	if r.sharedPool != nil {
		r.debug.RegisterProbe("pool.in_use", func() any { return r.sharedPool.InUse() })
		r.debug.RegisterProbe("pool.failures", func() any { return r.sharedPool.Failures() })
	}
}

// onReload applies the settings that can change at runtime. Grid and pool
// dimensions are fixed at construction.
func (r *RAN) onReload(cfg *control.Config) {
	r.uplink.Reconfigure(cfg.OFH)
	if len(r.grids) > 0 {
		g := r.grids[0]
		if cfg.Grid.NofPorts != g.NofPorts() || cfg.Grid.NofSymbols != g.NofSymbols() || cfg.Grid.NofSubc() != g.NofSubc() {
			control.Logf("[facade] grid dimensions changed on reload; restart to apply")
		}
	}
}

// Start launches the Pushgateway worker when one is configured.
// Subsequent calls to Start() have no effect.
func (r *RAN) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return fmt.Errorf("facade: start after shutdown: %w", api.ErrExecutorClosed)
	}
	if r.started {
		return nil
	}
	cfg := r.store.Load()
	if r.metrics != nil && cfg.Metrics.Pushgateway.URL != "" {
		ctx, cancel := context.WithCancel(context.Background())
		r.stopPushes = cancel
		r.metrics.StartPushgatewayWorker(ctx, cfg.Metrics.Pushgateway)
	}
	r.started = true
	return nil
}

// Stop waits for dispatched slots, stops the executor and the Pushgateway worker
// and unlocks grid memory. The facade cannot be restarted afterwards.
func (r *RAN) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.dispatcher.Wait()
	if r.stopPushes != nil {
		r.stopPushes()
		r.stopPushes = nil
	}
	r.closed = true
	r.started = false
	return r.release()
}

// release closes what New managed to build.
func (r *RAN) release() error {
	if r.executor != nil {
		r.executor.Close()
	}
	var errs []error
	for _, g := range r.grids {
		if err := g.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("facade: %w", errors.Join(errs...))
	}
	return nil
}

// Shutdown implements api.GracefulShutdown by delegating to Stop().
func (r *RAN) Shutdown() error {
	return r.Stop()
}

// Dispatch queues one slot of one sector on the executor.
func (r *RAN) Dispatch(ctx api.ResourceGridContext, jobs ...pipeline.Job) error {
	return r.dispatcher.Dispatch(ctx, jobs...)
}

// Wait blocks until every dispatched slot has been sent.
func (r *RAN) Wait() { r.dispatcher.Wait() }

// Process runs one slot on the calling goroutine.
func (r *RAN) Process(ctx api.ResourceGridContext, jobs ...pipeline.Job) error {
	return r.processor.Process(ctx, jobs...)
}

// Submit dispatches a task to the executor pool for asynchronous execution.
func (r *RAN) Submit(task func()) error {
	return r.executor.Submit(task)
}

// Reload validates cfg and applies its runtime settings.
func (r *RAN) Reload(cfg *control.Config) error {
	return r.store.Update(cfg)
}

// Config returns the active configuration. It must not be modified.
func (r *RAN) Config() *control.Config { return r.store.Load() }

// ConfigStore returns the store notifying reload listeners.
func (r *RAN) ConfigStore() *control.ConfigStore { return r.store }

// Metrics returns the metrics registry, nil when disabled.
func (r *RAN) Metrics() *control.Metrics { return r.metrics }

// Debug returns the probe registry. It is empty when debug is disabled.
func (r *RAN) Debug() api.Debug { return r.debug }

// Executor returns the worker executor.
func (r *RAN) Executor() api.Executor { return r.executor }

// GridPool returns the (sector, slot) pool, nil when the shared pool is configured.
func (r *RAN) GridPool() api.ResourceGridPool {
	if r.ringPool == nil {
		return nil
	}
	return r.ringPool
}

// SharedPool returns the reference-counted pool, nil unless Pool.Shared.
func (r *RAN) SharedPool() *pool.SharedGridPool { return r.sharedPool }

// Uplink returns the fronthaul uplink writer.
func (r *RAN) Uplink() *ofh.UplinkWriter { return r.uplink }

// UplinkRepository returns the slot repository of the uplink writer.
func (r *RAN) UplinkRepository() *ofh.Repository { return r.uplinkRepo }
