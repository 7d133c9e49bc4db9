// context.go - per-visit evaluation context
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package expr

import (
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"

	"github.com/opencoff/go-utils"

	"github.com/opencoff/bfs/internal/bftw"
	"github.com/opencoff/bfs/internal/execute"
	"github.com/opencoff/bfs/internal/lscolors"
	"github.com/opencoff/bfs/internal/mount"
)

// Context is everything a Node needs to evaluate itself against one
// visited entry: the visit record, ambient "now", and the external
// collaborators.
type Context struct {
	Visit *bftw.Visit
	Now   time.Time

	Mount  *mount.Table
	Colors *lscolors.Table
	Stdout io.Writer
	Stderr io.Writer
	Files  *OutputFiles
	Exec   *execute.Dispatcher

	// IgnoreRaces enables the ENOENT-at-depth>0 suppression.
	IgnoreRaces bool

	// Hint carries the walker action an action leaf wants to force; when
	// set, the walker's return value is this hint instead of CONTINUE.
	Hint    bftw.Action
	hintSet bool

	// Quit and ExitNonZero are accumulators threaded across the whole
	// command, not just this visit.
	Quit        *bool
	ExitNonZero *bool

	// StatLog, when set, receives one line per stat/lstat call, with
	// the size humanized (KiB/MiB/...) since a raw byte count is hard
	// to scan in a debug trace.
	StatLog func(format string, args ...any)
}

// SetHint records a forced walker action; the first hint set for a visit
// wins.
func (c *Context) SetHint(a bftw.Action) {
	if !c.hintSet {
		c.Hint = a
		c.hintSet = true
	}
}

// HintSet reports whether an action has requested an override of
// ActionContinue.
func (c *Context) HintSet() bool { return c.hintSet }

// MarkError records a predicate/action failure: bumps the exit status
// and, unless IgnoreRaces suppresses an ENOENT at depth>0, writes a
// diagnostic to Stderr.
func (c *Context) MarkError(op string, err error) {
	if c.IgnoreRaces && c.Visit.Depth > 0 && err == unix.ENOENT {
		return
	}
	if c.ExitNonZero != nil {
		*c.ExitNonZero = true
	}
	if c.Stderr != nil {
		io.WriteString(c.Stderr, "bfs: "+op+": "+c.Visit.Path+": "+err.Error()+"\n")
	}
}

// Stat lazily fills (and caches) the visit's stat buffer, matching the
// walker's own follow mode for this entry.
func (c *Context) Stat() (*bftw.Stat, error) {
	if c.Visit.Stat != nil {
		return c.Visit.Stat, nil
	}
	s, err := bftw.StatAt(c.Visit.AtFD, c.Visit.AtPath, c.Visit.Follow)
	if err != nil {
		return nil, err
	}
	c.Visit.Stat = s
	c.logStat(s)
	return s, nil
}

func (c *Context) logStat(s *bftw.Stat) {
	if c.StatLog != nil {
		c.StatLog("stat %s: size=%s mode=%o", c.Visit.Path, utils.HumanizeSize(uint64(s.Size)), s.Mode&07777)
	}
}

// StatFollow performs a fresh stat with an explicit follow mode,
// bypassing the cached buffer -- used by -xtype to probe the opposite
// follow mode for one comparison.
func (c *Context) StatFollow(follow bool) (*bftw.Stat, error) {
	if follow == c.Visit.Follow && c.Visit.Stat != nil {
		return c.Visit.Stat, nil
	}
	s, err := bftw.StatAt(c.Visit.AtFD, c.Visit.AtPath, follow)
	if err != nil {
		return nil, err
	}
	c.logStat(s)
	return s, nil
}

// Readlink reads the symlink target of the current visit.
func (c *Context) Readlink() (string, error) {
	buf := make([]byte, 256)
	for {
		n, err := unix.Readlinkat(c.Visit.AtFD, c.Visit.AtPath, buf)
		if err != nil {
			return "", err
		}
		if n < len(buf) {
			return string(buf[:n]), nil
		}
		buf = make([]byte, len(buf)*2)
	}
}

// OutputFiles caches the *os.File handles -fprint/-fprint0/-fprintf/-fls
// open once per distinct filename across the whole command.
type OutputFiles struct {
	files map[string]*os.File
}

func NewOutputFiles() *OutputFiles {
	return &OutputFiles{files: make(map[string]*os.File)}
}

func (o *OutputFiles) Get(name string) (*os.File, error) {
	if f, ok := o.files[name]; ok {
		return f, nil
	}
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	o.files[name] = f
	return f, nil
}

func (o *OutputFiles) CloseAll() {
	for _, f := range o.files {
		f.Close()
	}
}
