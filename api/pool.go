// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Resource grid pooling contract.

package api

// ResourceGridPool hands out preallocated grids by (sector, slot).
//
// The pool does not synchronize grid contents: the caller guarantees that the
// stage holding a grid finishes with it before the same pool entry comes round again.
type ResourceGridPool interface {
	Get(ctx ResourceGridContext) ResourceGrid
}
