package util

import "runtime"

// WorkerCount returns the number of workers used for parallel extraction
// and parsing: twice the CPU count, clamped to [4, 32].
//
// The 2x factor leaves room for goroutines parked in CGO parser calls.
func WorkerCount() int {
	n := runtime.NumCPU() * 2
	if n < 4 {
		n = 4
	}
	if n > 32 {
		n = 32
	}
	return n
}

// WorkerCountWithOverride returns override when positive, WorkerCount otherwise.
func WorkerCountWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return WorkerCount()
}
