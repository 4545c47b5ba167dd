// File: internal/concurrency/executor.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Executor dispatches tasks across worker goroutines, using lock-free local queues,
// work stealing between workers and a global queue fallback.

package concurrency

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/control"
)

const localQueueCapacity = 1024

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithCPUAffinity pins worker i to cpus[i % len(cpus)].
func WithCPUAffinity(cpus []int) ExecutorOption {
	return func(e *Executor) { e.cpus = append([]int(nil), cpus...) }
}

// WithPanicHandler is called with the recovered value of a panicking task.
// The worker keeps running either way.
func WithPanicHandler(fn func(any)) ExecutorOption {
	return func(e *Executor) { e.onPanic = fn }
}

// Executor manages a pool of worker goroutines.
type Executor struct {
	globalQueue chan func()              // fallback queue for tasks when local queues are full
	localQueues []*LockFreeQueue[func()] // per-worker queues
	wake        chan struct{}            // one token per queued local task, at most numWorkers
	closeCh     chan struct{}
	submitMu    sync.RWMutex
	closed      atomic.Bool
	next        atomic.Uint64
	wg          sync.WaitGroup

	cpus    []int
	onPanic func(any)

	totalTasks     atomic.Int64
	completedTasks atomic.Int64
	panics         atomic.Int64
}

var _ api.Executor = (*Executor)(nil)

// NewExecutor starts numWorkers workers. If numWorkers <= 0, defaults to runtime.NumCPU().
func NewExecutor(numWorkers int, opts ...ExecutorOption) *Executor {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	e := &Executor{
		globalQueue: make(chan func(), numWorkers*4),
		localQueues: make([]*LockFreeQueue[func()], numWorkers),
		wake:        make(chan struct{}, numWorkers),
		closeCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	for i := range e.localQueues {
		e.localQueues[i] = NewLockFreeQueue[func()](localQueueCapacity)
	}
	e.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go e.run(i)
	}
	return e
}

// Submit enqueues a task, returning ErrExecutorClosed once Close has been called.
// A task accepted by Submit always runs, also when Close follows immediately.
func (e *Executor) Submit(task func()) error {
	for {
		queued, err := e.trySubmit(task)
		if err != nil || queued {
			return err
		}
		runtime.Gosched()
	}
}

// trySubmit queues task without blocking. submitMu is held for reading so that
// Close cannot signal the workers between the closed check and the enqueue.
func (e *Executor) trySubmit(task func()) (bool, error) {
	e.submitMu.RLock()
	defer e.submitMu.RUnlock()
	if e.closed.Load() {
		return false, ErrExecutorClosed
	}
	e.totalTasks.Add(1)
	idx := int(e.next.Add(1) % uint64(len(e.localQueues)))
	if e.localQueues[idx].Enqueue(task) {
		select {
		case e.wake <- struct{}{}:
		default:
		}
		return true, nil
	}
	select {
	case e.globalQueue <- task:
		return true, nil
	default:
		e.totalTasks.Add(-1)
		return false, nil
	}
}

// NumWorkers returns the number of workers.
func (e *Executor) NumWorkers() int {
	return len(e.localQueues)
}

// Close stops accepting tasks, runs the tasks already queued and waits for the workers to exit.
func (e *Executor) Close() {
	e.submitMu.Lock()
	if e.closed.CompareAndSwap(false, true) {
		close(e.closeCh)
	}
	e.submitMu.Unlock()
	e.wg.Wait()
}

// Stats returns basic executor metrics.
func (e *Executor) Stats() map[string]int64 {
	total := e.totalTasks.Load()
	completed := e.completedTasks.Load()
	return map[string]int64{
		"total_tasks":     total,
		"completed_tasks": completed,
		"pending_tasks":   total - completed,
		"panics":          e.panics.Load(),
		"num_workers":     int64(e.NumWorkers()),
	}
}

// run is the main loop of worker id.
func (e *Executor) run(id int) {
	defer e.wg.Done()
	if len(e.cpus) > 0 {
		cpu := e.cpus[id%len(e.cpus)]
		if err := PinCurrentThread(cpu); err != nil {
			control.Logf("[executor] worker %d: %v", id, err)
		} else {
			defer UnpinCurrentThread()
		}
	}
	for {
		if task, ok := e.take(id); ok {
			e.execute(task)
			continue
		}
		select {
		case task := <-e.globalQueue:
			e.execute(task)
		case <-e.wake:
		case <-e.closeCh:
			e.drain(id)
			return
		}
	}
}

// take dequeues from the worker's own queue, then steals from the others.
func (e *Executor) take(id int) (func(), bool) {
	n := len(e.localQueues)
	for i := 0; i < n; i++ {
		if task, ok := e.localQueues[(id+i)%n].Dequeue(); ok {
			return task, true
		}
	}
	return nil, false
}

func (e *Executor) drain(id int) {
	for {
		if task, ok := e.take(id); ok {
			e.execute(task)
			continue
		}
		select {
		case task := <-e.globalQueue:
			e.execute(task)
		default:
			return
		}
	}
}

// execute runs the task and updates statistics, recovering from panics.
func (e *Executor) execute(task func()) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			if e.onPanic != nil {
				e.onPanic(r)
			} else {
				control.Logf("[executor] task panicked: %v", fmt.Sprint(r))
			}
		}
		e.completedTasks.Add(1)
	}()
	task()
}
