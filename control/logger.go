// File: control/logger.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package control

import (
	"log"
	"sync/atomic"
)

type logFunc func(format string, v ...any)

var logger = newLogger(log.Printf)

func newLogger(f logFunc) *atomic.Pointer[logFunc] {
	p := new(atomic.Pointer[logFunc])
	p.Store(&f)
	return p
}

// Logf writes through the diagnostic logger shared by every package of the
// module. It defaults to log.Printf and may be replaced by SetLogger at any
// time, also while other goroutines are logging.
func Logf(format string, v ...any) {
	(*logger.Load())(format, v...)
}

// SetLogger replaces the logger. Passing nil mutes it.
func SetLogger(f func(format string, v ...any)) {
	if f == nil {
		f = func(string, ...any) {}
	}
	fn := logFunc(f)
	logger.Store(&fn)
}
