// File: pipeline/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package pipeline drives one slot of one sector through the resource grid:
// take the grid for the slot, zero it, run the channel jobs through a mapper
// and hand the grid reader to the transmit gateway. SectorDispatcher runs
// slots of different sectors in parallel on an executor.
package pipeline
