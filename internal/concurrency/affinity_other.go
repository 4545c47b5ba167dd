// File: internal/concurrency/affinity_other.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build !linux

package concurrency

import "runtime"

func platformPinCurrentThread(int) error { return ErrAffinityNotSupported }
func platformUnpinCurrentThread() error  { return nil }

func platformAllowedCPUs() []int {
	cpus := make([]int, runtime.NumCPU())
	for i := range cpus {
		cpus[i] = i
	}
	return cpus
}
