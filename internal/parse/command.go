// command.go - the aggregate parsed command
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
package parse

import (
	"time"

	"github.com/opencoff/bfs/internal/bftw"
	"github.com/opencoff/bfs/internal/expr"
)

// DebugFlags selects which -D trace categories are active.
type DebugFlags struct {
	Opt    bool // optimizer rewrites
	Rates  bool // per-node evaluation counters
	Search bool // per-visit trace
	Tree   bool // dump the parsed expression tree
	Stat   bool // log every stat/lstat call
	Exec   bool // accepted; no exec trace is written
}

func (d DebugFlags) Any() bool {
	return d.Opt || d.Rates || d.Search || d.Tree || d.Stat || d.Exec
}

// Command aggregates everything needed to run one invocation
type Command struct {
	Roots []string
	Root  *expr.Node

	Follow      bftw.FollowMode
	MinDepth    int
	MaxDepth    int
	XDev        bool
	IgnoreRaces bool
	XargsSafe   bool
	OptLevel    int
	Debug       DebugFlags

	ExtendedRegex bool

	ColorForce bool
	ColorNever bool

	Now      time.Time
	DayStart bool

	// PostOrder is set by a bare "-depth" and by "-delete": directories are
	// visited after their children instead of before.
	PostOrder bool

	// NoLeaf is parsed and accepted for GNU find compatibility but has
	// no effect
	NoLeaf bool
}

// defaultCommand returns a Command with the zero-value-safe defaults the
// parser starts from.
func defaultCommand() *Command {
	return &Command{
		Follow:   bftw.FollowNone,
		MinDepth: 0,
		MaxDepth: -1,
		OptLevel: 1,
		Now:      time.Now(),
	}
}

// EffectiveNow returns the time base predicates should measure against,
// applying -daystart's next-local-midnight shift if requested.
func (c *Command) EffectiveNow() time.Time {
	if !c.DayStart {
		return c.Now
	}
	y, m, d := c.Now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, c.Now.Location())
	if c.Now.After(midnight) {
		midnight = midnight.AddDate(0, 0, 1)
	}
	return midnight
}
