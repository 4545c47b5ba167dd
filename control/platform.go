// File: control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform debug probes shared by every OS.

package control

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// RegisterPlatformProbes registers CPU count, SIMD features used by sample
// conversion and precoding, and OS-specific limits.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.arch", func() any {
		return runtime.GOARCH
	})
	dp.RegisterProbe("platform.simd", func() any {
		return simdFeatures()
	})
	registerOSProbes(dp)
}

func simdFeatures() map[string]bool {
	switch runtime.GOARCH {
	case "amd64", "386":
		return map[string]bool{
			"sse4.1":     cpu.X86.HasSSE41,
			"avx2":       cpu.X86.HasAVX2,
			"fma":        cpu.X86.HasFMA,
			"avx512f":    cpu.X86.HasAVX512F,
			"avx512bf16": cpu.X86.HasAVX512BF16,
		}
	case "arm64":
		return map[string]bool{
			"asimd": cpu.ARM64.HasASIMD,
			"sve":   cpu.ARM64.HasSVE,
		}
	default:
		return map[string]bool{}
	}
}
