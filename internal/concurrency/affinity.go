// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// CPU affinity for worker threads.

package concurrency

import "runtime"

// PinCurrentThread locks the calling goroutine to its OS thread and restricts
// that thread to cpu. The goroutine stays locked until UnpinCurrentThread.
func PinCurrentThread(cpu int) error {
	runtime.LockOSThread()
	if err := platformPinCurrentThread(cpu); err != nil {
		runtime.UnlockOSThread()
		return err
	}
	return nil
}

// UnpinCurrentThread lets the calling thread run on every allowed CPU again and
// unlocks the goroutine from it.
func UnpinCurrentThread() error {
	defer runtime.UnlockOSThread()
	return platformUnpinCurrentThread()
}

// AllowedCPUs returns the CPUs the process may run on, ascending.
func AllowedCPUs() []int {
	return platformAllowedCPUs()
}

// NumCPUs returns the number of logical CPUs.
func NumCPUs() int {
	return runtime.NumCPU()
}
