// File: ofh/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package ofh writes received Open Fronthaul uplink U-plane sections into the
// resource grid of their slot. Sections for unknown eAxCs or slots without a
// registered grid are dropped, counted and logged at a configurable rate; they
// never stop the receiver.
package ofh
