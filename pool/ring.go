// File: pool/ring.go
// Author: momentics <momentics@gmail.com>
//
// Lock-free single-producer/single-consumer ring buffer for handing items from a
// receive goroutine to a slot worker. Head and tail live on separate cache lines.

package pool

import (
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
)

// RingBuffer is a lock-free fixed-capacity ring buffer (power-of-two size).
// At most one goroutine may Enqueue and one may Dequeue concurrently.
type RingBuffer[T any] struct {
	data []T
	mask uint64
	head atomic.Uint64
	_    [56]byte // Padding for hot/cold separation
	tail atomic.Uint64
	_    [56]byte
}

var _ api.Ring[any] = (*RingBuffer[any])(nil)

// NewRingBuffer allocates a ring buffer with size (must be power of two).
func NewRingBuffer[T any](size uint64) *RingBuffer[T] {
	if size == 0 || (size&(size-1)) != 0 {
		panic("ring buffer size must be power of two")
	}
	return &RingBuffer[T]{
		data: make([]T, size),
		mask: size - 1,
	}
}

// Enqueue adds an item; returns false if full.
func (r *RingBuffer[T]) Enqueue(val T) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() == uint64(len(r.data)) {
		return false
	}
	r.data[tail&r.mask] = val
	r.tail.Store(tail + 1)
	return true
}

// Dequeue removes and returns (item, ok); ok==false if empty.
func (r *RingBuffer[T]) Dequeue() (res T, ok bool) {
	head := r.head.Load()
	if head == r.tail.Load() {
		return res, false
	}
	idx := head & r.mask
	res = r.data[idx]
	var zero T
	r.data[idx] = zero
	r.head.Store(head + 1)
	return res, true
}

// Len returns number of items in the buffer.
func (r *RingBuffer[T]) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns logical buffer capacity.
func (r *RingBuffer[T]) Cap() int {
	return len(r.data)
}
