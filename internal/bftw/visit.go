// visit.go - the record a callback sees for each visited entry
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package bftw

// Phase distinguishes a pre-order visit (default) from the post-order
// visit a directory gets once every descendant has been fully walked
//
type Phase int

const (
	PhasePre Phase = iota
	PhasePost
)

// Action is what a Callback returns to tell the Walker how to proceed.
// Any value outside this set aborts the walk with a *FatalError.
type Action int

const (
	ActionContinue Action = iota
	ActionSkipSiblings
	ActionSkipSubtree
	ActionStop
	actionInvalid // sentinel; never returned by a well-behaved callback
)

// FollowMode controls whether and when the walker resolves symlinks.
type FollowMode int

const (
	FollowNone FollowMode = iota // -P
	FollowRoots                  // -H: only the command-line root arguments
	FollowAll                    // -L: every symlink; enables cycle detection
)

// Visit is what the user-supplied Callback sees for one file system entry.
type Visit struct {
	Path     string // full path as built by PathBuilder
	Root     string // the command-line root this visit descends from
	NameOff  int    // offset of the basename within Path
	Depth    int
	Type     FileType
	Phase    Phase
	Stat     *Stat // nil unless a stat was performed
	Follow   bool  // whether this visit followed a symlink to get its Type/Stat
	AtFD     int   // directory fd suitable for *at syscalls against this entry
	AtPath   string // path suffix relative to AtFD
	Err      *Error // non-nil iff Type == TypeError

	entry *Entry // internal; the cache entry for directory visits
}

// Basename returns the final path component of this visit.
func (v *Visit) Basename() string {
	return v.Path[v.NameOff:]
}

// Callback is invoked once per visited entry. It must return one of the
// four Action values; anything else aborts the walk with a *FatalError
//
type Callback func(v *Visit) Action
