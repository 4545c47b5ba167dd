//go:build !linux
// +build !linux

// control/platform_other.go
// Author: momentics <momentics@gmail.com>
//
// Debug probes for platforms without OS-specific limits.

package control

func registerOSProbes(*DebugProbes) {}
