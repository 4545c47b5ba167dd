// File: ofh/uplink_writer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ofh

import (
	"fmt"
	"sync/atomic"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/control"
	"github.com/momentics/hioload-ran/pool"
)

// Section outcomes reported to the SectionObserver.
const (
	OutcomeWritten     = "written"
	OutcomeUnknownEAxC = "unknown_eaxc"
	OutcomeNoGrid      = "no_grid"
	OutcomeMalformed   = "malformed"
	OutcomeQueueFull   = "queue_full"
)

// DefaultQueueSize is the section queue capacity of a writer built without WithQueueSize.
const DefaultQueueSize = 1024

// Section is one decoded uplink U-plane section: the IQ samples of consecutive
// PRBs starting at StartPRB in one symbol of one eAxC.
type Section struct {
	Slot     api.SlotPoint
	EAxC     uint16
	Symbol   int
	StartPRB int
	IQ       []complex64
}

// SectionObserver receives the outcome of every section.
type SectionObserver interface {
	OnSection(outcome string)
}

type nopSectionObserver struct{}

func (nopSectionObserver) OnSection(string) {}

// Option configures an UplinkWriter.
type Option func(*UplinkWriter)

// WithSectionObserver reports section outcomes to obs.
func WithSectionObserver(obs SectionObserver) Option {
	return func(u *UplinkWriter) {
		if obs != nil {
			u.observer = obs
		}
	}
}

// WithQueueSize sets the section queue capacity, a power of two.
func WithQueueSize(n uint64) Option {
	return func(u *UplinkWriter) { u.queueSize = n }
}

// UplinkWriter places uplink sections into slot grids.
// Write may be called from one receive goroutine per slot; Enqueue and Drain
// form a single-producer single-consumer handoff.
type UplinkWriter struct {
	repo      *Repository
	eaxc      atomic.Pointer[map[uint16]int]
	observer  SectionObserver
	queueSize uint64
	queue     api.Ring[Section]

	logInterval atomic.Uint64
	drops       atomic.Uint64
	written     atomic.Uint64
}

// NewUplinkWriter returns a writer resolving eAxCs and drop logging from cfg.
func NewUplinkWriter(cfg control.OFHConfig, repo *Repository, opts ...Option) (*UplinkWriter, error) {
	if repo == nil {
		return nil, fmt.Errorf("ofh: nil repository: %w", api.ErrInvalidArgument)
	}
	u := &UplinkWriter{
		repo:      repo,
		observer:  nopSectionObserver{},
		queueSize: DefaultQueueSize,
	}
	for _, opt := range opts {
		opt(u)
	}
	if u.queueSize == 0 || u.queueSize&(u.queueSize-1) != 0 {
		return nil, fmt.Errorf("ofh: queue size %d is not a power of two: %w", u.queueSize, api.ErrInvalidArgument)
	}
	u.queue = pool.NewRingBuffer[Section](u.queueSize)
	u.Reconfigure(cfg)
	return u, nil
}

// Reconfigure swaps the eAxC map and drop log interval. It is safe to call while
// sections are being written and fits control.ConfigStore.OnReload.
func (u *UplinkWriter) Reconfigure(cfg control.OFHConfig) {
	m := make(map[uint16]int, len(cfg.EAxCToPort))
	for eaxc, port := range cfg.EAxCToPort {
		m[eaxc] = port
	}
	u.eaxc.Store(&m)
	interval := cfg.DropLogInterval
	if interval < 1 {
		interval = 1
	}
	u.logInterval.Store(uint64(interval))
}

// Port returns the grid port of eaxc.
func (u *UplinkWriter) Port(eaxc uint16) (int, bool) {
	port, ok := (*u.eaxc.Load())[eaxc]
	return port, ok
}

// Write places sec into its slot grid and returns true when at least one RE was written.
// A section reaching past the last subcarrier is written up to it and counted malformed.
func (u *UplinkWriter) Write(sec Section) bool {
	port, ok := u.Port(sec.EAxC)
	if !ok {
		u.drop(OutcomeUnknownEAxC, sec)
		return false
	}
	w, ok := u.repo.Get(sec.Slot)
	if !ok {
		u.drop(OutcomeNoGrid, sec)
		return false
	}
	if port < 0 || port >= w.NofPorts() || sec.Symbol < 0 || sec.Symbol >= w.NofSymbols() || sec.StartPRB < 0 {
		u.drop(OutcomeMalformed, sec)
		return false
	}
	kInit := sec.StartPRB * api.NRE
	avail := w.NofSubc() - kInit
	if avail <= 0 || len(sec.IQ) == 0 {
		u.drop(OutcomeMalformed, sec)
		return false
	}
	iq := sec.IQ
	if len(iq) > avail {
		iq = iq[:avail]
		u.drop(OutcomeMalformed, sec)
	}
	w.PutContiguous(port, sec.Symbol, kInit, iq)
	if len(iq) == len(sec.IQ) {
		u.written.Add(1)
		u.observer.OnSection(OutcomeWritten)
	}
	return true
}

// Enqueue hands sec to the consumer calling Drain. A full queue drops the section.
func (u *UplinkWriter) Enqueue(sec Section) bool {
	if !u.queue.Enqueue(sec) {
		u.drop(OutcomeQueueFull, sec)
		return false
	}
	return true
}

// Drain writes every queued section and returns how many were dequeued.
func (u *UplinkWriter) Drain() int {
	n := 0
	for {
		sec, ok := u.queue.Dequeue()
		if !ok {
			return n
		}
		u.Write(sec)
		n++
	}
}

// Pending returns the number of queued sections.
func (u *UplinkWriter) Pending() int { return u.queue.Len() }

// Dropped returns the number of dropped or truncated sections.
func (u *UplinkWriter) Dropped() uint64 { return u.drops.Load() }

// Written returns the number of sections written in full.
func (u *UplinkWriter) Written() uint64 { return u.written.Load() }

func (u *UplinkWriter) drop(outcome string, sec Section) {
	n := u.drops.Add(1)
	u.observer.OnSection(outcome)
	if (n-1)%u.logInterval.Load() == 0 {
		control.Logf("[ofh] %s: slot %s eaxc %d symbol %d prb %d (%d dropped)",
			outcome, sec.Slot, sec.EAxC, sec.Symbol, sec.StartPRB, n)
	}
}
