// dircache.go - bounded priority queue of open directory descriptors
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// A small, explicit data structure with its own invariants rather than a
// generic container. Ported from bftw.c's "dircache" type.

package bftw

import (
	"container/heap"
	"fmt"

	"golang.org/x/sys/unix"
)

// DirCache bounds the number of simultaneously open directory descriptors
// to `capacity`. Pushing an entry whose fd is open may evict the current
// heap root (closing its descriptor, but never destroying the entry).
type DirCache struct {
	heap     dirHeap
	capacity int
}

// NewDirCache creates a cache willing to hold at most capacity open
// descriptors. capacity is clamped to at least 2 so the EMFILE retry path
// (which must keep a "save" entry alive) always has room to work with.
func NewDirCache(capacity int) *DirCache {
	if capacity < 2 {
		capacity = 2
	}
	return &DirCache{capacity: capacity}
}

func (c *DirCache) Size() int     { return c.heap.Len() }
func (c *DirCache) Capacity() int { return c.capacity }

// dirHeap implements container/heap.Interface, ordered so the root is
// always the best eviction candidate: depth DESC, then refcount ASC
//
type dirHeap []*Entry

func (h dirHeap) Len() int { return len(h) }
func (h dirHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.depth != b.depth {
		return a.depth > b.depth
	}
	return a.refs < b.refs
}
func (h dirHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIndex = i
	h[j].heapIndex = j
}
func (h *dirHeap) Push(x any) {
	e := x.(*Entry)
	e.heapIndex = len(*h)
	*h = append(*h, e)
}
func (h *dirHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.heapIndex = -1
	*h = old[:n-1]
	return e
}

// evictRoot closes the descriptor of the current heap root (if any) and
// removes it from the heap. It is a no-op on an empty cache.
func (c *DirCache) evictRoot() {
	if c.heap.Len() == 0 {
		return
	}
	e := heap.Pop(&c.heap).(*Entry)
	if e.isOpen() {
		unix.Close(e.fd)
		e.fd = -1
	}
}

// evictRootExcept evicts the heap root unless it is `save`, in which case
// it evicts the next-best candidate instead (used by the EMFILE retry path,
// which must not close the descriptor it is actively trying to reuse).
func (c *DirCache) evictRootExcept(save *Entry) bool {
	if c.heap.Len() == 0 {
		return false
	}
	if c.heap[0] != save {
		c.evictRoot()
		return true
	}
	if c.heap.Len() < 2 {
		return false
	}
	// temporarily remove save, evict the new root, then reinsert save
	heap.Remove(&c.heap, 0)
	c.evictRoot()
	heap.Push(&c.heap, save)
	return true
}

// push inserts e (whose fd must already be open) into the heap, evicting
// the current root first if the cache is at capacity.
func (c *DirCache) push(e *Entry) {
	if c.heap.Len() >= c.capacity {
		c.evictRoot()
	}
	heap.Push(&c.heap, e)
}

// touch re-heapifies e after its refcount changed.
func (c *DirCache) touch(e *Entry) {
	if e.heapIndex >= 0 {
		heap.Fix(&c.heap, e.heapIndex)
	}
}

// remove takes e out of the heap without touching its descriptor.
func (c *DirCache) remove(e *Entry) {
	if e.heapIndex >= 0 {
		heap.Remove(&c.heap, e.heapIndex)
	}
}

// shrinkTo permanently lowers capacity; used by the EMFILE retry path,
// which may only shrink, never grow
func (c *DirCache) shrinkTo(n int) {
	if n < c.capacity {
		c.capacity = n
	}
}

// entryBase walks e's parent chain to the nearest ancestor with an open
// fd, returning that descriptor and the path suffix beyond it. If no
// ancestor is open, it returns (AT_FDCWD, fullpath).
func entryBase(e *Entry, fullpath string) (int, string) {
	for a := e.parent; a != nil; a = a.parent {
		if a.isOpen() {
			suffix := fullpath[a.pathLen():]
			if len(suffix) > 0 && suffix[0] == '/' {
				suffix = suffix[1:]
			}
			return a.fd, suffix
		}
	}
	return unix.AT_FDCWD, fullpath
}

// Open opens entry e (whose full path is fullpath), using directory-
// relative I/O from the nearest open ancestor when possible, retrying once
// on EMFILE. save, if non-nil, is an entry the cache must
// not evict while searching for space (it is the one another caller is
// about to dup from).
func (c *DirCache) Open(e *Entry, fullpath string, save *Entry) (int, error) {
	if c.heap.Len() >= c.capacity {
		c.evictRootExcept(save)
	}

	base, suffix := entryBase(e, fullpath)
	fd, err := openDirAt(base, suffix)
	if err == unix.EMFILE {
		if c.evictRootExcept(save) {
			c.shrinkTo(c.heap.Len())
			base, suffix = entryBase(e, fullpath)
			fd, err = openDirAt(base, suffix)
		}
	}
	if err != nil {
		return -1, fmt.Errorf("opendir %q: %w", fullpath, err)
	}

	e.fd = fd
	c.push(e)
	return fd, nil
}

// openDirAt is a thin wrapper over openat(2) with O_DIRECTORY|O_CLOEXEC.
func openDirAt(base int, suffix string) (int, error) {
	if suffix == "" {
		suffix = "."
	}
	return unix.Openat(base, suffix, unix.O_RDONLY|unix.O_CLOEXEC|unix.O_DIRECTORY, 0)
}

// Close closes e's descriptor (if open) and removes it from the heap.
// Unlike eviction, this is used when the entry itself is being GC'd.
func (c *DirCache) Close(e *Entry) {
	if e.heapIndex >= 0 {
		c.remove(e)
	}
	if e.isOpen() {
		unix.Close(e.fd)
		e.fd = -1
	}
}

// Ref bumps e's refcount by delta and re-heapifies it. delta is typically
// +1 when a child entry is created, -1 during GC.
func (c *DirCache) Ref(e *Entry, delta int32) int32 {
	e.refs += delta
	c.touch(e)
	return e.refs
}
