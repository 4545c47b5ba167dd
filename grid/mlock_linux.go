//go:build linux
// +build linux

// File: grid/mlock_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux memory locking for grid storage.

package grid

import (
	"unsafe"

	"github.com/momentics/hioload-ran/bf16"
	"golang.org/x/sys/unix"
)

func sampleBytes(data []bf16.CBF16) []byte {
	if len(data) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), len(data)*int(unsafe.Sizeof(data[0])))
}

func lockMemory(data []bf16.CBF16) error {
	return unix.Mlock(sampleBytes(data))
}

func unlockMemory(data []bf16.CBF16) error {
	return unix.Munlock(sampleBytes(data))
}
