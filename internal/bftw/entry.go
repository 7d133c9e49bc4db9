// entry.go - a cached directory entry
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package bftw

// Entry represents one directory discovered by the walk. It is created
// when the directory is first seen and destroyed once its refcount drops
// to zero. Entries form a tree via the parent pointer; the refcount of an
// entry is 1 ("self") plus one for every still-live child entry.
type Entry struct {
	parent *Entry
	depth  int
	refs   int32

	fd int // -1 when closed

	dev, ino uint64 // filled once a stat is performed on this dir

	// name is this entry's path segment relative to its parent, with a
	// leading separator (roots excepted); nameoff is its byte offset within the full
	// walk path.
	name    string
	nameoff int

	// heapIndex is DirCache's bookkeeping slot; -1 when not in the heap.
	heapIndex int
}

func newRootEntry(name string) *Entry {
	return &Entry{
		parent:    nil,
		depth:     0,
		refs:      1,
		fd:        -1,
		name:      name,
		nameoff:   0,
		heapIndex: -1,
	}
}

// childNameOff returns the byte offset at which a direct child's name
// segment starts. It is normally parent.nameoff+len(parent.name), but the
// bare "/" root already supplies the leading separator every child name
// carries (newChildEntry is always called with a "/"+childname segment),
// so counting the root's own single-byte name again would double it,
// rendering e.g. "/etc" as "//etc".
func (parent *Entry) childNameOff() int {
	if parent.name == "/" {
		return parent.nameoff
	}
	return parent.nameoff + len(parent.name)
}

func newChildEntry(parent *Entry, name string) *Entry {
	return &Entry{
		parent:    parent,
		depth:     parent.depth + 1,
		refs:      1,
		fd:        -1,
		name:      name,
		nameoff:   parent.childNameOff(),
		heapIndex: -1,
	}
}

// isOpen reports whether this entry currently holds an open descriptor.
func (e *Entry) isOpen() bool {
	return e.fd >= 0
}

// namelen is the length in bytes this entry contributes to the full path.
func (e *Entry) namelen() int {
	return len(e.name)
}

// pathLen is the total length of the full path ending at this entry.
func (e *Entry) pathLen() int {
	return e.nameoff + e.namelen()
}

// setDevIno records the (dev, ino) pair once this directory has been stat'd,
// used by cycle detection
func (e *Entry) setDevIno(dev, ino uint64) {
	e.dev, e.ino = dev, ino
}

// ancestorMatches walks the parent chain (excluding e itself) looking for a
// directory with the given (dev, ino) pair; used under -L to detect ELOOP.
func (e *Entry) ancestorMatches(dev, ino uint64) bool {
	for a := e.parent; a != nil; a = a.parent {
		if a.dev == dev && a.ino == ino {
			return true
		}
	}
	return false
}

// rootAncestor returns the root entry at the top of e's parent chain.
func (e *Entry) rootAncestor() *Entry {
	r := e
	for r.parent != nil {
		r = r.parent
	}
	return r
}
