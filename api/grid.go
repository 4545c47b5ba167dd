// File: api/grid.go
// Author: momentics <momentics@gmail.com>
//
// Resource grid contracts: a slot-sized {subcarrier, OFDM symbol, antenna port}
// sample store and its reader and writer views.

package api

import (
	"github.com/momentics/hioload-ran/bf16"
	"github.com/momentics/hioload-ran/bitset"
)

// NR numerology limits used to size masks and validate dimensions.
const (
	// NRE is the number of subcarriers in a resource block.
	NRE = 12
	// MaxRB is the largest carrier bandwidth in resource blocks.
	MaxRB = 275
	// MaxNSymbPerSlot is the number of OFDM symbols in a normal cyclic prefix slot.
	MaxNSymbPerSlot = 14
	// MaxPorts is the largest number of antenna ports a grid tracks in its empty bitmap.
	MaxPorts = 64
)

// ResourceGridReader is a read-only view over a resource grid.
//
// Every method panics when a port, symbol or subcarrier range falls outside the grid.
type ResourceGridReader interface {
	NofPorts() int
	NofSubc() int
	NofSymbols() int

	// IsPortEmpty reports whether the port has not been written since the last zeroing.
	IsPortEmpty(port int) bool
	// IsEmpty reports whether no port has been written since the last zeroing.
	IsEmpty() bool

	// Get copies the REs at kInit+i for every true mask[i], in ascending order, into dst
	// and returns the unused tail of dst.
	Get(dst []complex64, port, symbol, kInit int, mask []bool) []complex64
	// GetBitset is Get with a bitset mask.
	GetBitset(dst []complex64, port, symbol, kInit int, mask *bitset.BoundedBitset) []complex64
	// GetContiguous fills dst with the len(dst) REs starting at kInit.
	GetContiguous(dst []complex64, port, symbol, kInit int)
	// View returns the whole subcarrier axis of one symbol. It must not be modified.
	View(port, symbol int) []bf16.CBF16
}

// ResourceGridWriter is a mutable view over a resource grid. Any call for a port,
// including one writing zero REs, marks that port as not empty.
//
// Every method panics when a port, symbol or subcarrier range falls outside the grid.
type ResourceGridWriter interface {
	NofPorts() int
	NofSubc() int
	NofSymbols() int

	// Put writes symbols at kInit+i for every true mask[i] in ascending order and
	// returns the unused tail of symbols.
	Put(port, symbol, kInit int, mask []bool, symbols []complex64) []complex64
	// PutBitset is Put with a bitset mask.
	PutBitset(port, symbol, kInit int, mask *bitset.BoundedBitset, symbols []complex64) []complex64
	// PutBitsetBF16 is PutBitset with samples already in storage precision.
	PutBitsetBF16(port, symbol, kInit int, mask *bitset.BoundedBitset, symbols []bf16.CBF16) []bf16.CBF16
	// PutContiguous writes all symbols starting at kInit.
	PutContiguous(port, symbol, kInit int, symbols []complex64)
	// PutContiguousBF16 is PutContiguous with samples already in storage precision.
	PutContiguousBF16(port, symbol, kInit int, symbols []bf16.CBF16)
	// PutStrided writes symbols[i] at kInit+i*stride.
	PutStrided(port, symbol, kInit, stride int, symbols []complex64)
	// View returns the whole subcarrier axis of one symbol for in-place writes.
	View(port, symbol int) []bf16.CBF16
}

// ResourceGrid owns the sample storage for one slot.
type ResourceGrid interface {
	NofPorts() int
	NofSubc() int
	NofSymbols() int

	// SetAllZero zeroes every written port and marks all ports empty.
	SetAllZero()
	Reader() ResourceGridReader
	Writer() ResourceGridWriter
}
