// Package pool
// Author: momentics <momentics@gmail.com>
//
// Resource grid pools and the small lock-free containers they are built from.
//
// RingGridPool hands out preallocated grids by (sector, slot) with no
// synchronization; the slot timing of the caller keeps users apart.
// SharedGridPool adds reference counting and zeroes a grid, optionally on an
// executor, when its last user releases it.
// See ring_pool.go, shared_pool.go, ring.go and objpool.go.
package pool
