//go:build !linux
// +build !linux

// File: grid/mlock_other.go
// Author: momentics <momentics@gmail.com>
//
// Stub for platforms without memory locking support.

package grid

import (
	"fmt"

	"github.com/momentics/hioload-ran/api"
	"github.com/momentics/hioload-ran/bf16"
)

func lockMemory([]bf16.CBF16) error {
	return fmt.Errorf("memory locking: %w", api.ErrNotSupported)
}

func unlockMemory([]bf16.CBF16) error {
	return nil
}
