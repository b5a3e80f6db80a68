package compute

import (
	"os"
	"strconv"

	"golang.org/x/sys/cpu"
)

// LanesEnv overrides the detected lane width when set to a positive integer.
const LanesEnv = "GRAVSIM_LANES"

const defaultLanes = 4

type Backend struct {
	Name  string
	Lanes int
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelectBackend()
}

// SetBackend replaces the backend returned by Detect.
func SetBackend(b Backend) {
	activeBackend = b
}

// Detect returns the active backend.
func Detect() Backend {
	return activeBackend
}

// AutoSelectBackend inspects the environment and the CPU feature flags.
func AutoSelectBackend() Backend {
	if lanes, ok := lanesFromEnv(os.Getenv(LanesEnv)); ok {
		return Backend{Name: "env", Lanes: lanes}
	}
	return fromFeatures()
}

func lanesFromEnv(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	lanes, err := strconv.Atoi(v)
	if err != nil || lanes < 1 {
		return 0, false
	}
	return lanes, true
}

func fromFeatures() Backend {
	switch {
	case cpu.X86.HasAVX512F:
		return Backend{Name: "avx512", Lanes: 8}
	case cpu.X86.HasAVX2:
		return Backend{Name: "avx2", Lanes: 4}
	case cpu.X86.HasAVX:
		return Backend{Name: "avx", Lanes: 4}
	case cpu.X86.HasSSE2:
		return Backend{Name: "sse2", Lanes: 2}
	case cpu.ARM64.HasASIMD:
		return Backend{Name: "neon", Lanes: 2}
	default:
		return Backend{Name: "generic", Lanes: defaultLanes}
	}
}
