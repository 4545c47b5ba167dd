// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import (
	"sync"

	"github.com/momentics/hioload-ran/api"
)

// Executor queues submitted tasks until RunAll is called.
type Executor struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
}

var _ api.Executor = (*Executor)(nil)

func (e *Executor) Submit(task func()) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return api.ErrExecutorClosed
	}
	e.tasks = append(e.tasks, task)
	return nil
}

func (e *Executor) NumWorkers() int { return 1 }

// Pending returns the number of queued tasks.
func (e *Executor) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.tasks)
}

// RunAll runs the queued tasks on the calling goroutine, including tasks they submit.
func (e *Executor) RunAll() int {
	n := 0
	for {
		e.mu.Lock()
		tasks := e.tasks
		e.tasks = nil
		e.mu.Unlock()
		if len(tasks) == 0 {
			return n
		}
		for _, task := range tasks {
			task()
			n++
		}
	}
}

// Close makes further Submit calls fail. Queued tasks stay queued.
func (e *Executor) Close() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
}
