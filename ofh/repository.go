// File: ofh/repository.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ofh

import (
	"sync"

	"github.com/momentics/hioload-ran/api"
)

// Repository maps the uplink slots currently being received to their grid writers.
// The slot owner adds a writer before the first section arrives and removes it
// once the slot is handed to the uplink chain.
type Repository struct {
	mu      sync.RWMutex
	writers map[api.SlotPoint]api.ResourceGridWriter
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{writers: make(map[api.SlotPoint]api.ResourceGridWriter)}
}

// Add registers w for slot, replacing any previous writer.
func (r *Repository) Add(slot api.SlotPoint, w api.ResourceGridWriter) {
	r.mu.Lock()
	r.writers[slot] = w
	r.mu.Unlock()
}

// Remove forgets slot.
func (r *Repository) Remove(slot api.SlotPoint) {
	r.mu.Lock()
	delete(r.writers, slot)
	r.mu.Unlock()
}

// Get returns the writer for slot.
func (r *Repository) Get(slot api.SlotPoint) (api.ResourceGridWriter, bool) {
	r.mu.RLock()
	w, ok := r.writers[slot]
	r.mu.RUnlock()
	return w, ok
}

// Len returns the number of registered slots.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.writers)
}
