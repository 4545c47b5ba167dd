// File: mapper/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package mapper places layer-mapped and precoded symbols into a resource grid.
//
// Two entry points are provided. Map writes a layer-major RE buffer over an RE
// pattern; it recognises the DM-RS type 1 comb over a contiguous RB range and
// writes it with strided puts, and it skips precoding entirely for a single
// port with unit weight. MapSymbols streams symbols from an api.SymbolBuffer
// over a PDSCH/PUSCH allocation, leaving reserved REs untouched and optionally
// resuming after the first reSkip REs.
//
// A Mapper keeps scratch buffers between calls and must be used by one
// goroutine at a time.
package mapper
