package openpose

import (
	"fmt"
	"strconv"
	"strings"
	"syscall"
	"unsafe"
)

// SetCPUAffinity sets the CPU Affinity mask of the program to run on the specified
// cores.  OpenCV DNN inference runs on the CPU so on big.LITTLE boards pinning
// to the fast cores gives stable timings.
func SetCPUAffinity(mask uintptr) error {

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_SETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return fmt.Errorf("failed to set CPU affinity: %w", err)
	}

	return nil
}

// GetCPUAffinity gets the current CPU Affinity mask the program is running on
func GetCPUAffinity() (uintptr, error) {

	var mask uintptr

	_, _, err := syscall.RawSyscall(syscall.SYS_SCHED_GETAFFINITY, 0,
		unsafe.Sizeof(mask), uintptr(unsafe.Pointer(&mask)))

	if err != 0 {
		return 0, fmt.Errorf("failed to get CPU affinity: %w", err)
	}

	return mask, nil
}

// CPUCoreMask calculates the core mask by passing in the CPU core numbers as a
// slice, eg: []int{4,5,6,7}
func CPUCoreMask(cores []int) uintptr {

	var mask uintptr

	for _, core := range cores {
		mask |= 1 << core
	}

	return mask
}

// ParseCoreList parses a list of CPU core numbers given as comma separated
// values and ranges, eg: "0,2" or "4-7"
func ParseCoreList(list string) ([]int, error) {

	// cores must fit in the affinity mask
	maxCore := int(unsafe.Sizeof(uintptr(0))) * 8

	cores := make([]int, 0)
	seen := make(map[int]bool)

	add := func(c int) error {
		if c < 0 || c >= maxCore {
			return fmt.Errorf("cpu core %d out of range 0-%d", c, maxCore-1)
		}
		if !seen[c] {
			seen[c] = true
			cores = append(cores, c)
		}
		return nil
	}

	for _, field := range strings.Split(list, ",") {
		field = strings.TrimSpace(field)

		if field == "" {
			continue
		}

		lo, hi, isRange := strings.Cut(field, "-")

		start, err := strconv.Atoi(strings.TrimSpace(lo))

		if err != nil {
			return nil, fmt.Errorf("invalid cpu core %q: %w", field, err)
		}

		end := start

		if isRange {
			end, err = strconv.Atoi(strings.TrimSpace(hi))

			if err != nil {
				return nil, fmt.Errorf("invalid cpu core range %q: %w", field, err)
			}

			if end < start {
				return nil, fmt.Errorf("invalid cpu core range %q", field)
			}
		}

		for c := start; c <= end; c++ {
			if err := add(c); err != nil {
				return nil, err
			}
		}
	}

	if len(cores) == 0 {
		return nil, fmt.Errorf("no cpu cores given")
	}

	return cores, nil
}
