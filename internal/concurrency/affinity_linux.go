// File: internal/concurrency/affinity_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

//go:build linux

package concurrency

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// cpuSetSize is CPU_SETSIZE, the capacity of unix.CPUSet.
const cpuSetSize = 1024

var (
	processMaskOnce sync.Once
	processMask     unix.CPUSet
)

// initialMask is the affinity of the process at first use, restored on unpin.
func initialMask() unix.CPUSet {
	processMaskOnce.Do(func() {
		if err := unix.SchedGetaffinity(0, &processMask); err != nil {
			processMask.Zero()
		}
	})
	return processMask
}

func platformPinCurrentThread(cpu int) error {
	allowed := initialMask()
	if cpu < 0 || (allowed.Count() > 0 && !allowed.IsSet(cpu)) {
		return fmt.Errorf("pin to CPU %d: %w", cpu, ErrInvalidCPU)
	}
	var set unix.CPUSet
	set.Set(cpu)
	if err := unix.SchedSetaffinity(0, &set); err != nil {
		return fmt.Errorf("sched_setaffinity CPU %d: %w", cpu, err)
	}
	return nil
}

func platformUnpinCurrentThread() error {
	set := initialMask()
	if set.Count() == 0 {
		return nil
	}
	return unix.SchedSetaffinity(0, &set)
}

func platformAllowedCPUs() []int {
	set := initialMask()
	var cpus []int
	for cpu := 0; cpu < cpuSetSize && len(cpus) < set.Count(); cpu++ {
		if set.IsSet(cpu) {
			cpus = append(cpus, cpu)
		}
	}
	return cpus
}
