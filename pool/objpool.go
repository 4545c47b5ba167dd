// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package pool

import "sync"

// ObjectPool recycles scratch objects between slots.
type ObjectPool[T any] interface {
	Get() T
	Put(T)
}

// SyncPool is a typed sync.Pool. The slot processor keeps its mappers here so
// that each concurrently processed slot borrows one mapper and its scratch buffers.
type SyncPool[T any] struct {
	pool sync.Pool
}

var _ ObjectPool[*int] = (*SyncPool[*int])(nil)

// NewSyncPool returns a pool building missing objects with newFn.
func NewSyncPool[T any](newFn func() T) *SyncPool[T] {
	sp := &SyncPool[T]{}
	sp.pool.New = func() any { return newFn() }
	return sp
}

func (sp *SyncPool[T]) Get() T { return sp.pool.Get().(T) }

func (sp *SyncPool[T]) Put(obj T) { sp.pool.Put(obj) }
