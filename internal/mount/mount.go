// mount.go - mount-table lookup for -fstype
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// The core only needs "what
// filesystem type backs this device id", so this package parses
// /proc/mounts once and answers by device id rather than by path prefix,
// which is both simpler and correct across bind mounts.

package mount

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/puzpuzpuz/xsync/v3"
)

// Table answers "what fstype backs this device id", built once at
// startup and memoized per-device thereafter. Lookups may run
// concurrently with the main walk's -exec "+" batch dispatch, so the
// memoization cache is a concurrency-safe map, mirroring fiomap.go's
// FioMap.
type Table struct {
	byPath map[string]string // mount point -> fstype; unordered, FSType picks the longest match
	byDev  *xsync.MapOf[uint64, string]
}

// Load parses /proc/mounts. A failure to read it (e.g. a sandboxed or
// non-Linux environment) yields an empty, harmless table: -fstype
// will simply see "unknown".
func Load() *Table {
	t := &Table{
		byPath: make(map[string]string),
		byDev:  xsync.NewMapOf[uint64, string](),
	}

	f, err := os.Open("/proc/mounts")
	if err != nil {
		return t
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			continue
		}
		mountpoint, fstype := unescape(fields[1]), fields[2]
		t.byPath[mountpoint] = fstype
	}
	return t
}

// unescape decodes the octal escapes /proc/mounts uses for whitespace in
// paths (e.g. "\040" for a space).
func unescape(s string) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+3 < len(s) {
			if v, err := strconv.ParseUint(s[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(v))
				i += 3
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// FSType returns the filesystem type backing dev, the device id of some
// file known to live on it. It stats every mount point once per distinct
// device and memoizes the result.
func (t *Table) FSType(dev uint64) string {
	if fs, ok := t.byDev.Load(dev); ok {
		return fs
	}

	fs := "unknown"
	best := -1
	for mp, candidate := range t.byPath {
		var st unix.Stat_t
		if err := unix.Stat(mp, &st); err != nil {
			continue
		}
		if uint64(st.Dev) == dev && len(mp) > best {
			fs = candidate
			best = len(mp)
		}
	}
	t.byDev.Store(dev, fs)
	return fs
}
