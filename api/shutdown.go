// File: api/shutdown.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

// GracefulShutdown is implemented by components owning workers or locked memory.
type GracefulShutdown interface {
	// Shutdown stops background work and releases resources. It is idempotent.
	Shutdown() error
}
