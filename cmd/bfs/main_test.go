package main

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/opencoff/bfs/internal/cmdtest"
)

// captureStdout redirects os.Stdout to a pipe for the duration of fn and
// returns everything written to it. run() talks to os.Stdout directly
//, so an end-to-end
// test has to swap the global rather than inject a writer.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	w.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestRunFindsFilesByName(t *testing.T) {
	root := cmdtest.Build(t, cmdtest.Dir{
		Root:  "",
		Files: []string{"a.go", "b.txt", "sub/c.go"},
		Dirs:  []string{"sub"},
	})
	defer os.RemoveAll(root)

	var code int
	out := captureStdout(t, func() {
		code = run([]string{root, "-name", "*.go"})
	})
	if code != 0 {
		t.Fatalf("run() exit code = %d, want 0", code)
	}
	got := cmdtest.SortedLines(out)
	want := []string{root + "/a.go", root + "/sub/c.go"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRunMaxdepthLimitsTraversal(t *testing.T) {
	root := cmdtest.Build(t, cmdtest.Dir{
		Files: []string{"top.txt", "sub/deep.txt"},
		Dirs:  []string{"sub"},
	})
	defer os.RemoveAll(root)

	out := captureStdout(t, func() {
		run([]string{root, "-maxdepth", "1", "-type", "f"})
	})
	got := cmdtest.SortedLines(out)
	if len(got) != 1 || got[0] != root+"/top.txt" {
		t.Fatalf("got %v, want only %s", got, root+"/top.txt")
	}
}

func TestRunMaxdepthZeroVisitsOnlyRoot(t *testing.T) {
	root := cmdtest.Build(t, cmdtest.Dir{
		Files: []string{"top.txt"},
	})
	defer os.RemoveAll(root)

	out := captureStdout(t, func() {
		run([]string{root, "-maxdepth", "0"})
	})
	got := cmdtest.SortedLines(out)
	if len(got) != 1 || got[0] != root {
		t.Fatalf("got %v, want only %s", got, root)
	}
}

func TestRunPruneExcludesSubtree(t *testing.T) {
	root := cmdtest.Build(t, cmdtest.Dir{
		Files: []string{"keep.txt", "skip/nope.txt"},
		Dirs:  []string{"skip"},
	})
	defer os.RemoveAll(root)

	out := captureStdout(t, func() {
		run([]string{root, "-name", "skip", "-prune", "-o", "-type", "f", "-print"})
	})
	if strings.Contains(out, "nope.txt") {
		t.Fatalf("output should not contain pruned subtree contents: %q", out)
	}
	if !strings.Contains(out, "keep.txt") {
		t.Fatalf("output should contain keep.txt: %q", out)
	}
}

func TestRunUnknownLiteralReturnsNonZero(t *testing.T) {
	code := run([]string{"-not-a-real-flag"})
	if code == 0 {
		t.Fatal("run() with an unknown literal should return a non-zero exit code")
	}
}
