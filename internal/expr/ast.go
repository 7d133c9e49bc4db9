// ast.go - expression tree nodes
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2

package expr

import (
	"regexp"
	"time"

	"github.com/opencoff/bfs/internal/execute"
	"github.com/opencoff/bfs/internal/printfmt"
)

// Cmp is the leading +/- comparator accepted by every numeric predicate
//
type Cmp int

const (
	CmpExact Cmp = iota
	CmpLess
	CmpGreater
)

func (c Cmp) Match(val, n int64) bool {
	switch c {
	case CmpLess:
		return val < n
	case CmpGreater:
		return val > n
	default:
		return val == n
	}
}

func (c Cmp) String() string {
	switch c {
	case CmpLess:
		return "-"
	case CmpGreater:
		return "+"
	default:
		return ""
	}
}

// TimeUnit is the scale a -amin/-atime-family predicate divides its
// duration by before comparing against n.
type TimeUnit int64

const (
	UnitMinutes TimeUnit = 60
	UnitDays    TimeUnit = 60 * 60 * 24
)

// PermMode selects how -perm compares the mode bits it was given against
// the file's actual mode.
type PermMode int

const (
	PermExact PermMode = iota // ==
	PermAll                   // (m&t)==t
	PermAny                   // !(m&t)==!t
)

// PermClause is one comma-separated clause of a symbolic -perm spec
//
type PermClause struct {
	Who    uint32 // who-mask: subset of 0777 this clause may touch
	Op     byte   // '+', '-', '='
	Bits   uint32 // rwx/X/st bits to apply
	FromID byte   // 0, or 'u'/'g'/'o' when the clause copies another class
}

// Node is one expression tree node. Fields not relevant to Kind are left
// zero: one shape, dispatched on Kind rather than on a function pointer
// or interface.
type Node struct {
	Kind        Kind
	Left, Right *Node

	// cached, propagated by the optimizer during construction
	Pure        bool
	AlwaysTrue  bool
	AlwaysFalse bool

	// rate-debug counters
	Evaluations uint64
	Successes   uint64
	Elapsed     time.Duration

	// predicate/action payloads -- only the fields relevant to Kind
	// are populated by the parser.
	IntVal   int64
	Cmp      Cmp
	TimeUnit TimeUnit
	SizeUnit int64

	Str      string // -name/-path/-lname glob, -fstype name, file args
	CaseFold bool

	Dev, Ino uint64 // -samefile

	Field    byte // 'a'/'c'/'m' -- which of atime/ctime/mtime
	RefField byte // -newerXY's Y
	RefTime  time.Time

	AccessMode uint32 // X_OK/R_OK/W_OK
	TypeMask   uint32 // bitmask of bftw.FileType values

	FileMode, DirMode uint32       // -perm's two resolved target modes
	PermMode          PermMode
	PermClauses        []PermClause // retained for debug/print round-trip

	Regex *regexp.Regexp

	ExecArgv []string // -exec/-ok template, without the trailing ';' or '+' (see ExecPlus)
	ExecPlus bool
	ExecDir  bool
	ExecAsk  bool

	// execTmpl is the compiled execute.Template, built lazily on first
	// evaluation and reused thereafter so "+"-batched invocations share
	// one Dispatcher-side accumulator key.
	execTmpl *execute.Template

	PrintfFormat   string // raw format string, compiled lazily
	printfCompiled *printfmt.Format

	Src string // source argv tokens, space joined, for -D tree / errors

	// implicit flags a node synthesized by the parser (the trailing
	// "-a -print", or a bare "-a" between adjacent tests) rather than
	// typed by the user. The parser never sets it and nothing reads it,
	// so -D tree output does not tell such nodes apart.
	implicit bool
}

// True and False are the singleton constant leaves every optimizer pass
// folds toward
var (
	True  = &Node{Kind: KindTrue, Pure: true, AlwaysTrue: true}
	False = &Node{Kind: KindFalse, Pure: true, AlwaysFalse: true}
)

// NewNot/NewAnd/NewOr/NewComma build a combinator node and immediately
// compute its purity/always flags, which propagate through the tree.
// The Optimizer performs further algebraic rewrites on top of these.
func NewNot(x *Node) *Node {
	n := &Node{Kind: KindNot, Left: x}
	n.Pure = x.Pure
	n.AlwaysTrue = x.AlwaysFalse
	n.AlwaysFalse = x.AlwaysTrue
	return n
}

func NewAnd(l, r *Node) *Node {
	n := &Node{Kind: KindAnd, Left: l, Right: r}
	n.Pure = l.Pure && r.Pure
	n.AlwaysFalse = l.AlwaysFalse || r.AlwaysFalse
	n.AlwaysTrue = l.AlwaysTrue && r.AlwaysTrue
	return n
}

func NewOr(l, r *Node) *Node {
	n := &Node{Kind: KindOr, Left: l, Right: r}
	n.Pure = l.Pure && r.Pure
	n.AlwaysTrue = l.AlwaysTrue || r.AlwaysTrue
	n.AlwaysFalse = l.AlwaysFalse && r.AlwaysFalse
	return n
}

func NewComma(l, r *Node) *Node {
	n := &Node{Kind: KindComma, Left: l, Right: r}
	n.Pure = l.Pure && r.Pure
	n.AlwaysTrue = r.AlwaysTrue
	n.AlwaysFalse = r.AlwaysFalse
	return n
}

// NewLeaf builds a predicate or action leaf. Predicates are pure by
// construction; actions never are
func NewLeaf(k Kind) *Node {
	n := &Node{Kind: k}
	n.Pure = !k.isAction()
	return n
}
