// walker.go - breadth-first traversal orchestration
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// This is the Go rendering of bftw.c's main loop: an options struct, an
// internal state type unexported to callers, and a single exported
// entry point.

package bftw

import (
	"path"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/opencoff/bfs/internal/rlimit"
)

// Options controls one traversal.
type Options struct {
	Roots []string

	Follow FollowMode
	XDev   bool

	// PostOrder requests a second, post-order visit for every directory
	// once all of its descendants have been visited.
	PostOrder bool

	// MaxDepth, when >= 0, stops the walker from reading directories
	// deeper than this: directories at depth <= MaxDepth are read, so
	// entries down to depth MaxDepth+1 are visited (0 means "the roots
	// and their direct children"); a negative value means unlimited.
	// Callers that build an Options literal without setting this field
	// get Go's int zero value, which limits the walk that way, not
	// "unlimited" -- set it to -1 explicitly for unlimited depth.
	MaxDepth int

	// Recover corresponds to BFTW_RECOVER: a directory that cannot be
	// opened or read is delivered to the callback and the walk goes on.
	// When unset, such a directory error aborts the walk once the
	// callback has seen it; stat and cycle errors on single entries are
	// delivered to the callback and never abort, whatever Recover says.
	Recover bool

	// StatAlways forces every visit to be stat'd even when the dirent
	// type is already known.
	StatAlways bool

	// Budget caps the number of simultaneously open directory
	// descriptors; 0 means "derive from RLIMIT_NOFILE" (internal/rlimit).
	Budget int
}

// Walker drives one synchronous, single-threaded traversal.
type Walker struct {
	opt   Options
	cache *DirCache
	queue *DirQueue
	path  *PathBuilder
	cb    Callback

	stopped bool
	errno   error
}

// New creates a Walker that will invoke cb once per visited entry.
func New(opt Options, cb Callback) *Walker {
	budget := opt.Budget
	if budget <= 0 {
		budget = rlimit.Budget()
	}
	return &Walker{
		opt:   opt,
		cache: NewDirCache(budget),
		queue: NewDirQueue(),
		path:  NewPathBuilder(),
		cb:    cb,
	}
}

// detectCycles reports whether -L style cycle detection is active.
func (w *Walker) detectCycles() bool {
	return w.opt.Follow == FollowAll
}

// Walk runs the traversal over every configured root, in order. It
// returns a *FatalError if the callback ever returns an invalid action,
// or if Recover is false and a directory could not be opened or read.
func (w *Walker) Walk() error {
	for _, root := range w.opt.Roots {
		if w.stopped {
			break
		}
		if err := w.walkOneRoot(root); err != nil {
			return err
		}
	}
	return nil
}

func cleanRoot(root string) string {
	if root == "/" || root == "" {
		return root
	}
	return strings.TrimRight(root, "/")
}

// walkOneRoot opens and visits a single root argument.
func (w *Walker) walkOneRoot(rootArg string) error {
	root := cleanRoot(rootArg)
	if root == "" {
		root = "."
	}

	rootEntry := newRootEntry(root)
	followRoot := w.opt.Follow != FollowNone

	st, err := w.statPath(unix.AT_FDCWD, root, followRoot)
	v := &Visit{
		Path:    root,
		Root:    rootArg,
		NameOff: rootBasenameOffset(root),
		Depth:   0,
		Phase:   PhasePre,
		Follow:  followRoot,
		AtFD:    unix.AT_FDCWD,
		AtPath:  root,
		entry:   rootEntry,
	}
	if err != nil {
		v.Type = TypeError
		v.Err = &Error{Op: "stat", Path: root, Err: err}
	} else {
		v.Stat = st
		v.Type = st.Type()
		rootEntry.setDevIno(st.Dev, st.Ino)
	}

	action := w.invoke(v)
	switch action {
	case ActionStop:
		w.stopped = true
		return nil
	case ActionSkipSubtree, ActionSkipSiblings:
		return nil
	case ActionContinue:
		// fall through
	default:
		return &FatalError{}
	}

	if v.Type != TypeDir {
		return nil
	}

	w.queue.Push(rootEntry)
	return w.mainLoop()
}

// mainLoop drains the DirQueue, opening,
// reading and enqueueing until it (and the current entry) are exhausted.
func (w *Walker) mainLoop() error {
	current := w.queue.Pop()
	for current != nil && !w.stopped {
		fullPath := w.path.Advance(current)

		fd, err := w.cache.Open(current, fullPath, nil)
		if err != nil {
			if ferr, stop := w.reportDirError(current, fullPath, "opendir", err); stop {
				return ferr
			}
			w.gc(current)
			current = w.queue.Pop()
			continue
		}

		dirents, err := readDirents(fd)
		if err != nil {
			if ferr, stop := w.reportDirError(current, fullPath, "readdir", err); stop {
				return ferr
			}
			w.gc(current)
			current = w.queue.Pop()
			continue
		}

		stopped, ferr := w.processChildren(current, fullPath, dirents)
		if ferr != nil {
			return ferr
		}
		if stopped {
			w.gc(current)
			return nil
		}

		w.gc(current)
		current = w.queue.Pop()
	}
	return nil
}

// processChildren visits every name in dirents under current, enqueueing
// any that resolve to directories the caller wants descended into.
// Returns (stopped, fatalErr).
func (w *Walker) processChildren(current *Entry, fullPath string, dirents []dirent) (bool, error) {
	for i := range dirents {
		de := dirents[i]
		childPath := fullPath + "/" + de.name
		if fullPath == "/" {
			childPath = "/" + de.name
		}

		follow := w.opt.Follow == FollowAll
		dtype := de.typ

		var st *Stat
		var verr *Error

		if w.needStat(dtype, follow) {
			s, err := w.statPath(current.fd, de.name, follow)
			if err != nil {
				verr = &Error{Op: "stat", Path: childPath, Err: err}
				dtype = TypeError
			} else {
				st = s
				dtype = s.Type()
			}
		}

		if verr == nil && dtype == TypeDir && w.detectCycles() && st != nil {
			if current.ancestorMatches(st.Dev, st.Ino) || (current.dev == st.Dev && current.ino == st.Ino) {
				verr = &Error{Op: "stat", Path: childPath, Err: unix.ELOOP}
				dtype = TypeError
			}
		}

		v := &Visit{
			Path:    childPath,
			Root:    current.rootAncestor().name,
			NameOff: len(childPath) - len(de.name),
			Depth:   current.depth + 1,
			Type:    dtype,
			Phase:   PhasePre,
			Stat:    st,
			Follow:  follow,
			AtFD:    current.fd,
			AtPath:  de.name,
			Err:     verr,
		}

		action := w.invoke(v)
		switch action {
		case ActionContinue:
			if dtype == TypeDir {
				if w.opt.XDev && st != nil && st.Dev != current.dev {
					continue
				}
				if w.opt.MaxDepth >= 0 && v.Depth > w.opt.MaxDepth {
					continue
				}
				child := newChildEntry(current, "/"+de.name)
				if st != nil {
					child.setDevIno(st.Dev, st.Ino)
				}
				w.cache.Ref(current, 1)
				w.queue.Push(child)
			}
		case ActionSkipSubtree:
			// never enqueue, even if it was a directory
		case ActionSkipSiblings:
			return false, nil
		case ActionStop:
			w.stopped = true
			return true, nil
		default:
			return false, &FatalError{}
		}
	}
	return false, nil
}

// reportDirError builds the directory-error visit and dispatches the
// callback's response. stop is true when the walk must end (either
// cleanly via Stop, or fatally).
func (w *Walker) reportDirError(e *Entry, fullPath, op string, err error) (error, bool) {
	v := &Visit{
		Path:    TrimToDir(fullPath),
		Root:    e.rootAncestor().name,
		NameOff: rootBasenameOffset(TrimToDir(fullPath)),
		Depth:   e.depth,
		Type:    TypeError,
		Phase:   PhasePre,
		Err:     &Error{Op: op, Path: fullPath, Err: err},
	}

	action := w.invoke(v)
	switch action {
	case ActionStop:
		w.stopped = true
		return nil, true
	case ActionContinue, ActionSkipSiblings, ActionSkipSubtree:
		if !w.opt.Recover {
			return &FatalError{Cause: v.Err}, true
		}
		return nil, false
	default:
		return &FatalError{}, true
	}
}

// gc decrements current's refcount; once it reaches zero it fires the
// post-order callback (if requested), closes its descriptor, frees it,
// and propagates the decrement up the parent chain.
func (w *Walker) gc(e *Entry) {
	for e != nil {
		refs := w.cache.Ref(e, -1)
		if refs > 0 {
			return
		}

		if w.opt.PostOrder {
			p := w.path.Advance(e)
			atfd, atpath := unix.AT_FDCWD, p
			if e.parent != nil && e.parent.isOpen() {
				atfd, atpath = e.parent.fd, strings.TrimPrefix(e.name, "/")
			}
			v := &Visit{
				Path:    p,
				Root:    e.rootAncestor().name,
				NameOff: rootBasenameOffset(p),
				Depth:   e.depth,
				Type:    TypeDir,
				Phase:   PhasePost,
				AtFD:    atfd,
				AtPath:  atpath,
				entry:   e,
			}
			action := w.invoke(v)
			if action == ActionStop {
				w.stopped = true
			}
		}

		w.cache.Close(e)
		e = e.parent
	}
}

// invoke calls the user callback, tracking the first error observed for
// diagnostics (the actual abort/continue decision is made by the caller).
func (w *Walker) invoke(v *Visit) Action {
	if v.Err != nil && w.errno == nil {
		w.errno = v.Err
	}
	return w.cb(v)
}

// needStat decides whether a visit requires a fresh stat call.
func (w *Walker) needStat(dtype FileType, follow bool) bool {
	if w.opt.StatAlways {
		return true
	}
	if dtype == TypeUnknown {
		return true
	}
	if dtype == TypeSymlink && follow {
		return true
	}
	if dtype == TypeDir && (w.detectCycles() || w.opt.XDev) {
		return true
	}
	return false
}

// statPath stats atpath relative to atfd, retrying without following on
// ENOENT so a broken symlink under -L is still reported
func (w *Walker) statPath(atfd int, atpath string, follow bool) (*Stat, error) {
	s, err := statAt(atfd, atpath, follow)
	if err != nil && follow && err == unix.ENOENT {
		s, err = statAt(atfd, atpath, false)
	}
	return s, err
}

// StatAt stats atpath relative to atfd (AT_FDCWD for an absolute or
// cwd-relative path), following the last symlink component iff follow is
// set. Exported so internal/expr can re-stat a Visit with a different
// follow mode (e.g. -xtype).
func StatAt(atfd int, atpath string, follow bool) (*Stat, error) {
	return statAt(atfd, atpath, follow)
}

func statAt(atfd int, atpath string, follow bool) (*Stat, error) {
	var raw unix.Stat_t
	flags := 0
	if !follow {
		flags = unix.AT_SYMLINK_NOFOLLOW
	}
	if err := unix.Fstatat(atfd, atpath, &raw, flags); err != nil {
		return nil, err
	}
	s := &Stat{}
	s.fillFromStat(&raw)
	return s, nil
}

// rootBasenameOffset returns the offset of p's final path component,
// mirroring path.Base without allocating a second string.
func rootBasenameOffset(p string) int {
	b := path.Base(p)
	if idx := strings.LastIndex(p, b); idx >= 0 {
		return idx
	}
	return 0
}
