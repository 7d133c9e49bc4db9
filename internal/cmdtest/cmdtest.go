// cmdtest.go - scripted end-to-end test harness for cmd/bfs
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Each script builds a throwaway directory tree and asserts on the
// sorted, trimmed stdout of one cmd/bfs invocation. Directive values are
// tokenized with shlex ("key=\"a b c\"" -> (key, [a b c])), and each run
// gets its own go-logger.Logger.
package cmdtest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/opencoff/go-logger"
	"github.com/opencoff/shlex"
)

// Dir describes one scripted test's throwaway filesystem: files (content
// is just the relative path plus a newline, callers rarely care), empty
// dirs, and symlinks.
type Dir struct {
	Root     string
	Files    []string
	Dirs     []string
	Symlinks map[string]string // newname -> target
}

// Build materializes d under a fresh temp directory and returns its path.
func Build(t TestingT, d Dir) string {
	root, err := os.MkdirTemp("", "bfs-cmdtest-*")
	if err != nil {
		t.Fatalf("mkdtemp: %s", err)
	}
	for _, rel := range d.Dirs {
		if err := os.MkdirAll(filepath.Join(root, rel), 0755); err != nil {
			t.Fatalf("mkdir %s: %s", rel, err)
		}
	}
	for _, rel := range d.Files {
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("mkdir for %s: %s", rel, err)
		}
		if err := os.WriteFile(full, []byte(rel+"\n"), 0644); err != nil {
			t.Fatalf("write %s: %s", rel, err)
		}
	}
	for name, target := range d.Symlinks {
		if err := os.Symlink(target, filepath.Join(root, name)); err != nil {
			t.Fatalf("symlink %s -> %s: %s", name, target, err)
		}
	}
	return root
}

// TestingT is the subset of *testing.T this package needs, so it has no
// hard dependency on the testing package's own internals.
type TestingT interface {
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
}

// Expect is one "key=\"a b c\"" directive parsed out of a script line,
// ported from testsuite/split.go's Split.
type Expect struct {
	Key  string
	Vals []string
}

// ParseDirective splits a "key=a b c" or "key=\"a b c\"" token into its
// key and shlex-tokenized values.
func ParseDirective(s string) (Expect, error) {
	i := strings.Index(s, "=")
	if i < 0 {
		return Expect{}, fmt.Errorf("%s: missing '=' separator", s)
	}
	key := strings.ToLower(s[:i])
	vals, err := shlex.Split(strings.TrimSpace(s[i+1:]))
	if err != nil {
		return Expect{}, fmt.Errorf("%s: %w", s, err)
	}
	return Expect{Key: key, Vals: vals}, nil
}

// Logger opens a per-test go-logger.Logger writing to w, mirroring
// run.go's one-logger-per-test-run lifecycle.
func Logger(w io.Writer, name string) logger.Logger {
	lg, err := logger.NewLogger(w, logger.LOG_DEBUG, name, logger.Ldate|logger.Ltime|logger.Lmicroseconds)
	if err != nil {
		panic(err) // a broken io.Writer at test-setup time is a harness bug
	}
	return lg
}

// SortedLines splits s on newlines, drops the trailing empty element left
// by a final newline, and sorts -- cmd/bfs's BFS order isn't stable
// across runs at the same depth, so scripted expectations compare
// sorted output.
func SortedLines(s string) []string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) == 1 && lines[0] == "" {
		return nil
	}
	sort.Strings(lines)
	return lines
}
