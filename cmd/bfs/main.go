// main.go - command-line entry point
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Wires internal/parse's Command to a bftw.Walker and an expr.Context:
// parse argv once, build the long-lived collaborators once, then drive
// one synchronous walk to completion.
package main

import (
	"bufio"
	"fmt"
	"os"
	"path"

	"golang.org/x/sys/unix"

	"github.com/opencoff/bfs/internal/bftw"
	"github.com/opencoff/bfs/internal/debuglog"
	"github.com/opencoff/bfs/internal/execute"
	"github.com/opencoff/bfs/internal/expr"
	"github.com/opencoff/bfs/internal/lscolors"
	"github.com/opencoff/bfs/internal/mount"
	"github.com/opencoff/bfs/internal/parse"
)

var Z = path.Base(os.Args[0])

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(argv []string) int {
	var log *debuglog.Logger

	// debugf is handed to the parser before we know the final Debug
	// flag set, so it reopens lazily on first use -- the parser only
	// ever calls it after -D has already been consumed.
	var debugf func(string, ...any)

	cmd, err := parse.Parse(argv, func(format string, args ...any) {
		if debugf != nil {
			debugf(format, args...)
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", Z, err)
		return 1
	}

	log = debuglog.New(os.Stderr, Z, cmd.Debug.Any())
	defer log.Close()
	debugf = log.Debugf

	if cmd.Debug.Tree {
		log.Debugf("expression tree:\n%s", dumpTree(cmd.Root, 0))
	}

	// at -O4 Finalize folds a wholly pure expression to the constant
	// false: nothing can be printed or run, so the walk is skipped
	if cmd.OptLevel >= 4 && cmd.Root.Pure && cmd.Root.AlwaysFalse {
		return 0
	}

	colors := resolveColors(cmd)
	exec := execute.NewDispatcher()
	if cmd.Debug.Exec {
		exec.Stdout = os.Stdout
		exec.Stderr = os.Stderr
	}
	if isTerminal(os.Stdin) {
		exec.Confirm = bufio.NewReader(os.Stdin)
	}

	var mtab *mount.Table
	if needsMountTable(cmd.Root) {
		mtab = mount.Load()
	}

	var quit, exitNonZero bool
	now := cmd.EffectiveNow()
	depthMode := cmd.PostOrder

	cb := func(v *bftw.Visit) bftw.Action {
		if v.Err != nil {
			if !(cmd.IgnoreRaces && v.Depth > 0 && v.Err.Err == unix.ENOENT) {
				exitNonZero = true
				fmt.Fprintf(os.Stderr, "%s: %s\n", Z, v.Err)
			}
			return bftw.ActionContinue
		}

		if cmd.Debug.Search {
			log.Debugf("visit %s depth=%d phase=%v", v.Path, v.Depth, v.Phase)
		}

		if v.Depth < cmd.MinDepth {
			return bftw.ActionContinue
		}
		if cmd.MaxDepth >= 0 && v.Depth > cmd.MaxDepth {
			return bftw.ActionContinue
		}
		if !expr.ShouldEvaluate(depthMode, v) {
			return bftw.ActionContinue
		}

		ctx := &expr.Context{
			Visit:       v,
			Now:         now,
			Mount:       mtab,
			Colors:      colors,
			Stdout:      os.Stdout,
			Stderr:      os.Stderr,
			Files:       outputFiles,
			Exec:        exec,
			IgnoreRaces: cmd.IgnoreRaces,
			Quit:        &quit,
			ExitNonZero: &exitNonZero,
		}
		if cmd.Debug.Stat {
			ctx.StatLog = log.Debugf
		}

		cmd.Root.Eval(ctx)

		if cmd.Debug.Rates {
			log.Debugf("node %s: %d evals, %d matches, %s elapsed",
				cmd.Root.Kind, cmd.Root.Evaluations, cmd.Root.Successes, cmd.Root.Elapsed)
		}

		if ctx.HintSet() {
			return ctx.Hint
		}
		return bftw.ActionContinue
	}

	w := bftw.New(bftw.Options{
		Roots:     cmd.Roots,
		Follow:    cmd.Follow,
		XDev:      cmd.XDev,
		PostOrder: cmd.PostOrder,
		MaxDepth:  cmd.MaxDepth,
		Recover:   true,
	}, cb)

	if err := w.Walk(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", Z, err)
		return 1
	}

	if err := exec.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", Z, err)
		exitNonZero = true
	}
	outputFiles.CloseAll()

	if exitNonZero {
		return 1
	}
	return 0
}

var outputFiles = expr.NewOutputFiles()

// resolveColors decides whether -print/-ls highlight names, honoring
// -color/-nocolor overrides around the LS_COLORS-and-tty default.
func resolveColors(cmd *parse.Command) *lscolors.Table {
	if cmd.ColorNever {
		return lscolors.Parse("")
	}
	t := lscolors.Parse(os.Getenv("LS_COLORS"))
	if cmd.ColorForce {
		return t
	}
	if !isTerminal(os.Stdout) {
		return lscolors.Parse("")
	}
	return t
}

// needsMountTable reports whether the expression tree contains an
// -fstype test anywhere, so plain runs never pay for parsing
// /proc/mounts
func needsMountTable(n *expr.Node) bool {
	if n == nil {
		return false
	}
	if n.Kind == expr.KindFSType {
		return true
	}
	return needsMountTable(n.Left) || needsMountTable(n.Right)
}

// ioctlTermios is Linux's TCGETS; the only platform this module's *at
// syscall usage elsewhere already commits it to.
const ioctlTermios = unix.TCGETS

func isTerminal(f *os.File) bool {
	_, err := unix.IoctlGetTermios(int(f.Fd()), ioctlTermios)
	return err == nil
}

func dumpTree(n *expr.Node, depth int) string {
	if n == nil {
		return ""
	}
	indent := ""
	for i := 0; i < depth; i++ {
		indent += "  "
	}
	s := fmt.Sprintf("%s%s\n", indent, n.Kind)
	s += dumpTree(n.Left, depth+1)
	s += dumpTree(n.Right, depth+1)
	return s
}
