// Package api
// Author: momentics
//
// Executor contract for slot processing and asynchronous grid zeroing.

package api

// Executor runs tasks on a fixed set of workers.
type Executor interface {
	// Submit queues task. It fails with ErrExecutorClosed after shutdown.
	Submit(task func()) error

	// NumWorkers returns the number of workers.
	NumWorkers() int
}
