// File: grid/storage.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package grid

import "github.com/momentics/hioload-ran/bf16"

// storage is a dense tensor with subcarriers as the fastest axis, then symbols, then ports.
type storage struct {
	data       []bf16.CBF16
	nofSubc    int
	nofSymbols int
	nofPorts   int
}

func newStorage(nofSubc, nofSymbols, nofPorts int) storage {
	return storage{
		data:       make([]bf16.CBF16, nofSubc*nofSymbols*nofPorts),
		nofSubc:    nofSubc,
		nofSymbols: nofSymbols,
		nofPorts:   nofPorts,
	}
}

// plane returns the subcarrier axis of one (port, symbol) pair.
func (s *storage) plane(port, symbol int) []bf16.CBF16 {
	off := (port*s.nofSymbols + symbol) * s.nofSubc
	return s.data[off : off+s.nofSubc : off+s.nofSubc]
}

// portPlanes returns every symbol of one port.
func (s *storage) portPlanes(port int) []bf16.CBF16 {
	n := s.nofSymbols * s.nofSubc
	return s.data[port*n : (port+1)*n]
}
