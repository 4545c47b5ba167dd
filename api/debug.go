// Package api
// Author: momentics
//
// Runtime probes for pools, pipeline counters and platform limits.

package api

// Debug is a registry of named probes evaluated on demand.
type Debug interface {
	// DumpState evaluates every probe and returns the results by name.
	DumpState() map[string]any

	// RegisterProbe adds fn under name, replacing a probe of the same name.
	RegisterProbe(name string, fn func() any)
}
