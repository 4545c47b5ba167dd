//go:build linux
// +build linux

// control/platform_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux-specific debug probes.

package control

import "golang.org/x/sys/unix"

func registerOSProbes(dp *DebugProbes) {
	// Locked grids count against RLIMIT_MEMLOCK.
	dp.RegisterProbe("platform.memlock_limit", func() any {
		var lim unix.Rlimit
		if err := unix.Getrlimit(unix.RLIMIT_MEMLOCK, &lim); err != nil {
			return err.Error()
		}
		return lim.Cur
	})
}
