// Package pattern describes where a channel transmission sits inside a slot:
// resource element patterns (RB mask x per-RB subcarrier mask x OFDM symbol mask),
// lists of reserved patterns, and frequency/time allocations.
//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
package pattern

const (
	nre             = 12
	maxRB           = 275
	maxNSymbPerSlot = 14
)
