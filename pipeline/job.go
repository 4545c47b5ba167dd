// File: pipeline/job.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pipeline

import (
	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/internal/invariant"
	"github.com/momentics/hioload-ran/mapper"
	"github.com/momentics/hioload-ran/pattern"
	"github.com/momentics/hioload-ran/precoding"
	"github.com/momentics/hioload-ran/rebuffer"
)

// Job places one physical channel or signal into a slot grid.
type Job interface {
	Run(m mapper.ResourceGridMapper, w api.ResourceGridWriter)
}

// PatternJob maps a layer-major RE buffer over an RE pattern, e.g. DM-RS or SSB.
type PatternJob struct {
	Input     rebuffer.Reader
	Pattern   pattern.RePattern
	Precoding *precoding.Configuration
}

func (j PatternJob) Run(m mapper.ResourceGridMapper, w api.ResourceGridWriter) {
	m.Map(w, j.Input, j.Pattern, j.Precoding)
}

// SymbolJob streams modulated symbols over a shared channel allocation, e.g. PDSCH.
type SymbolJob struct {
	Buffer     api.SymbolBuffer
	Allocation pattern.AllocationConfiguration
	Reserved   *pattern.RePatternList
	Precoding  *precoding.Configuration
	RESkip     int
}

// NofRE returns the REs per layer left to the job once the reserved REs are removed.
func (j SymbolJob) NofRE() int {
	return j.Allocation.NofRE(j.Reserved)
}

// Run panics with a contract violation when RESkip passes the end of the allocation.
func (j SymbolJob) Run(m mapper.ResourceGridMapper, w api.ResourceGridWriter) {
	if j.RESkip > 0 {
		if n := j.NofRE(); j.RESkip > n {
			invariant.Failf("pipeline: RE skip %d beyond the %d REs of the allocation", j.RESkip, n)
		}
	}
	m.MapSymbols(w, j.Buffer, j.Allocation, j.Reserved, j.Precoding, j.RESkip)
}

// JobFunc adapts a function to Job.
type JobFunc func(m mapper.ResourceGridMapper, w api.ResourceGridWriter)

func (f JobFunc) Run(m mapper.ResourceGridMapper, w api.ResourceGridWriter) { f(m, w) }
