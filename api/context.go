// File: api/context.go
// Author: momentics <momentics@gmail.com>
//
// Slot timing and per-slot processing context.

package api

import "fmt"

// NofSFN is the number of system frame numbers before wrap-around.
const NofSFN = 1024

// SlotPoint identifies a slot by numerology, system frame number and slot index within the frame.
type SlotPoint struct {
	Numerology int
	SFN        int
	Slot       int
}

// SlotsPerFrame returns the number of slots in a 10 ms frame for the numerology.
func (s SlotPoint) SlotsPerFrame() int {
	return 10 << uint(s.Numerology)
}

// SystemSlot returns the slot count since SFN 0, slot 0.
func (s SlotPoint) SystemSlot() int {
	return s.SFN*s.SlotsPerFrame() + s.Slot
}

// Next returns the following slot, wrapping the SFN.
func (s SlotPoint) Next() SlotPoint {
	s.Slot++
	if s.Slot == s.SlotsPerFrame() {
		s.Slot = 0
		s.SFN = (s.SFN + 1) % NofSFN
	}
	return s
}

func (s SlotPoint) String() string {
	return fmt.Sprintf("%d.%d", s.SFN, s.Slot)
}

// ResourceGridContext selects a grid: the slot being processed and the sector processing it.
type ResourceGridContext struct {
	Slot   SlotPoint
	Sector int
}

func (c ResourceGridContext) String() string {
	return fmt.Sprintf("sector=%d slot=%s", c.Sector, c.Slot)
}
