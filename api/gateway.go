// File: api/gateway.go
// Author: momentics <momentics@gmail.com>
//
// Downstream contract for a completed slot grid.

package api

// TransmitGateway accepts a filled grid for transmission, e.g. by an Open Fronthaul sender.
// The reader is valid until the pool entry is reused.
type TransmitGateway interface {
	Send(ctx ResourceGridContext, grid ResourceGridReader)
}
