// budget.go - derive the dircache's open-descriptor budget at startup
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package rlimit

import (
	"os"

	"golang.org/x/sys/unix"
)

// Reserved std-stream descriptors plus headroom -empty and -execdir+ hold
// onto (one retained parent-directory fd per pending exec batch) need.
const (
	stdStreams  = 3
	execReserve = 2
)

// Budget computes the number of directory descriptors the DirCache may
// hold open simultaneously: RLIMIT_NOFILE minus std streams, minus
// whatever is already open in this process, minus a small reserve
//
func Budget() int {
	var rl unix.Rlimit
	limit := 256
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rl); err == nil {
		limit = int(rl.Cur)
	}

	open := countOpenFDs()

	budget := limit - stdStreams - open - execReserve
	if budget < 2 {
		budget = 2
	}
	return budget
}

// countOpenFDs enumerates /proc/self/fd (falling back to /dev/fd) to learn
// how many descriptors this process already holds, so the budget doesn't
// double-count them.
func countOpenFDs() int {
	for _, dir := range []string{"/proc/self/fd", "/dev/fd"} {
		if entries, err := os.ReadDir(dir); err == nil {
			return len(entries)
		}
	}
	return stdStreams
}
