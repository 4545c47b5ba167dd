// Package grid
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Slot resource grid: a dense {subcarrier, OFDM symbol, antenna port} store of
// brain-float complex samples with a reader view, a writer view and an atomic
// per-port empty bitmap. Zeroing skips ports that were never written, so an
// idle port costs nothing per slot.
//
// Grids are not safe for concurrent writers. The empty bitmap alone is atomic,
// which keeps IsEmpty queries coherent with concurrent writes.
package grid
