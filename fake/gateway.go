// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the grid consumer interfaces.

package fake

import (
	"sync"

	"github.com/momentics/hioload-ran/api"
)

// SentSlot is one grid captured by Gateway. Planes holds a copy of every
// symbol of every port, indexed [port][symbol][subcarrier].
type SentSlot struct {
	Ctx    api.ResourceGridContext
	Empty  []bool
	Planes [][][]complex64
}

// Gateway is a fake api.TransmitGateway that copies every grid it is sent.
type Gateway struct {
	mu      sync.Mutex
	sent    []SentSlot
	noPlane bool
}

var _ api.TransmitGateway = (*Gateway)(nil)

// NewGateway creates a gateway capturing full grid contents.
func NewGateway() *Gateway {
	return &Gateway{}
}

// NewCountingGateway creates a gateway recording only contexts and port emptiness.
func NewCountingGateway() *Gateway {
	return &Gateway{noPlane: true}
}

// Send captures the grid. The reader is not retained.
func (g *Gateway) Send(ctx api.ResourceGridContext, r api.ResourceGridReader) {
	s := SentSlot{Ctx: ctx, Empty: make([]bool, r.NofPorts())}
	for port := range s.Empty {
		s.Empty[port] = r.IsPortEmpty(port)
	}
	if !g.noPlane {
		s.Planes = make([][][]complex64, r.NofPorts())
		for port := range s.Planes {
			s.Planes[port] = make([][]complex64, r.NofSymbols())
			for symbol := range s.Planes[port] {
				plane := make([]complex64, r.NofSubc())
				r.GetContiguous(plane, port, symbol, 0)
				s.Planes[port][symbol] = plane
			}
		}
	}
	g.mu.Lock()
	g.sent = append(g.sent, s)
	g.mu.Unlock()
}

// Sent returns a copy of the captured slots in arrival order.
func (g *Gateway) Sent() []SentSlot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SentSlot(nil), g.sent...)
}

// Count returns the number of captured slots.
func (g *Gateway) Count() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.sent)
}

// Reset drops the captured slots.
func (g *Gateway) Reset() {
	g.mu.Lock()
	g.sent = nil
	g.mu.Unlock()
}

// DiscardGateway drops every grid.
type DiscardGateway struct{}

func (DiscardGateway) Send(api.ResourceGridContext, api.ResourceGridReader) {}
