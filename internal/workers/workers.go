package workers

import (
	"os"
	"runtime"
	"strconv"

	"github.com/shirou/gopsutil/v3/mem"

	"media-convert/internal/logging"
)

// lowMemoryBytes is the available-memory floor below which worker counts are
// halved; image decodes and ffmpeg children are memory-hungry.
const lowMemoryBytes = 512 * 1024 * 1024

// Count returns the number of workers for a given task type.
// It respects container CPU limits via GOMAXPROCS (Go 1.19+).
//
// The multiplier adjusts for task characteristics:
//   - 1.0 for CPU-bound tasks
//   - 2.0 for I/O-bound tasks
//
// The limit parameter caps the worker count; use 0 for no limit.
// Can be overridden with the CONVERT_WORKERS environment variable.
func Count(multiplier float64, limit int) int {
	if override := os.Getenv("CONVERT_WORKERS"); override != "" {
		if count, err := strconv.Atoi(override); err == nil && count > 0 {
			if limit > 0 && count > limit {
				return limit
			}
			return count
		}
	}

	available := runtime.GOMAXPROCS(0)
	count := int(float64(available) * multiplier)

	if memoryConstrained() {
		count /= 2
		logging.Debug("low available memory, halving worker count to %d", count)
	}

	if count < 1 {
		count = 1
	}
	if limit > 0 && count > limit {
		count = limit
	}
	return count
}

// ForCPU returns the worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int) int {
	return Count(1.0, limit)
}

// ForIO returns the worker count for I/O-bound tasks (2 per CPU).
func ForIO(limit int) int {
	return Count(2.0, limit)
}

func memoryConstrained() bool {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return false
	}
	return vm.Available < lowMemoryBytes
}
