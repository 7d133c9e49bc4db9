package bftw

import (
	"os"
	"path/filepath"
	"testing"
)

func mkTestTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, d := range []string{"a", "b", "c", "d", "e"} {
		if err := os.Mkdir(filepath.Join(root, d), 0755); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func TestDirCacheEvictsAtCapacity(t *testing.T) {
	root := mkTestTree(t)
	c := NewDirCache(2)

	re := newRootEntry(root)
	if _, err := c.Open(re, root, nil); err != nil {
		t.Fatalf("Open(root): %s", err)
	}

	names := []string{"a", "b", "c"}
	entries := make([]*Entry, len(names))
	for i, name := range names {
		e := newChildEntry(re, "/"+name)
		if _, err := c.Open(e, filepath.Join(root, name), nil); err != nil {
			t.Fatalf("Open(%s): %s", name, err)
		}
		entries[i] = e
	}

	if c.Size() > c.Capacity() {
		t.Fatalf("Size() = %d exceeds Capacity() = %d", c.Size(), c.Capacity())
	}

	open := 0
	for _, e := range entries {
		if e.isOpen() {
			open++
		}
	}
	if open > c.Capacity() {
		t.Fatalf("%d entries still open, capacity is %d", open, c.Capacity())
	}
}

func TestDirCacheRefKeepsEntryAlive(t *testing.T) {
	root := mkTestTree(t)
	c := NewDirCache(2)
	re := newRootEntry(root)
	if _, err := c.Open(re, root, nil); err != nil {
		t.Fatal(err)
	}
	c.Ref(re, 1)
	if re.refs != 2 {
		t.Fatalf("refs = %d, want 2", re.refs)
	}
	c.Ref(re, -1)
	if re.refs != 1 {
		t.Fatalf("refs = %d, want 1", re.refs)
	}
}
