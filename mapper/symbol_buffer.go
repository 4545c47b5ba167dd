// File: mapper/symbol_buffer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mapper

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/internal/invariant"
)

// DefaultBlockSize is the block size of a SliceSymbolBuffer built with a
// non-positive block size.
const DefaultBlockSize = 1024

// SliceSymbolBuffer serves symbols from a slice in blocks of at most a fixed size.
type SliceSymbolBuffer struct {
	symbols   []complex64
	blockSize int
}

var _ api.SymbolBuffer = (*SliceSymbolBuffer)(nil)

// NewSliceSymbolBuffer returns a buffer over symbols. The slice is not copied.
func NewSliceSymbolBuffer(symbols []complex64, blockSize int) *SliceSymbolBuffer {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &SliceSymbolBuffer{symbols: symbols, blockSize: blockSize}
}

func (b *SliceSymbolBuffer) PopSymbols(n int) []complex64 {
	if n < 0 || n > b.MaxBlockSize() {
		invariant.Failf("mapper: pop of %d symbols, block allows %d", n, b.MaxBlockSize())
	}
	out := b.symbols[:n:n]
	b.symbols = b.symbols[n:]
	return out
}

func (b *SliceSymbolBuffer) MaxBlockSize() int { return min(b.blockSize, len(b.symbols)) }
func (b *SliceSymbolBuffer) Empty() bool       { return len(b.symbols) == 0 }

// Remaining returns the number of symbols not yet popped.
func (b *SliceSymbolBuffer) Remaining() int { return len(b.symbols) }
