// File: api/symbol_buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// SymbolBuffer is a stream of modulated symbols consumed by the resource grid
// mapper in blocks. Implementations may produce symbols lazily.
type SymbolBuffer interface {
	// PopSymbols removes and returns the next n symbols. The returned slice is only
	// valid until the next call.
	PopSymbols(n int) []complex64
	// MaxBlockSize returns the largest n PopSymbols accepts right now.
	MaxBlockSize() int
	// Empty reports whether the stream is exhausted.
	Empty() bool
}
