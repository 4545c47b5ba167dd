// File: internal/invariant/invariant.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fatal precondition checks for the real-time data path. A failed check is a
// bug in the calling channel processor; it panics with an *api.Error carrying
// ErrCodeContractViolation and is never turned into a returned error.

package invariant

import (
	"fmt"

	"github.com/momentics/hioload-ran/api"
)

// Check panics when cond is false.
func Check(cond bool, format string, args ...any) {
	if cond {
		return
	}
	Failf(format, args...)
}

// Failf panics unconditionally. Hot paths test the condition inline and call
// Failf so the variadic arguments are only built on failure.
func Failf(format string, args ...any) {
	panic(api.NewError(api.ErrCodeContractViolation, fmt.Sprintf(format, args...)))
}
