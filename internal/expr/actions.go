// actions.go - side-effecting leaves
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Modeled on eval_exec/eval_fprintf/eval_delete, wired to
// internal/printfmt for -printf/-fprintf, internal/execute for
// -exec/-ok, and internal/lscolors for -print's optional highlighting.
package expr

import (
	"fmt"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/opencoff/bfs/internal/bftw"
	"github.com/opencoff/bfs/internal/execute"
	"github.com/opencoff/bfs/internal/lscolors"
	"github.com/opencoff/bfs/internal/printfmt"
)

func (n *Node) evalPrune(ctx *Context) bool {
	ctx.SetHint(bftw.ActionSkipSubtree)
	return true
}

func (n *Node) evalQuit(ctx *Context) bool {
	ctx.SetHint(bftw.ActionStop)
	if ctx.Quit != nil {
		*ctx.Quit = true
	}
	return true
}

func (n *Node) evalDelete(ctx *Context) bool {
	flags := 0
	if ctx.Visit.Type == bftw.TypeDir {
		flags = unix.AT_REMOVEDIR
	}
	// a directory can only be unlinked once everything below it is
	// gone: -delete implies post-order traversal, which the
	// command builder enables whenever -delete appears in the
	// expression.
	if err := unix.Unlinkat(ctx.Visit.AtFD, ctx.Visit.AtPath, flags); err != nil {
		ctx.MarkError("delete", err)
		return false
	}
	return true
}

// colorCode picks the LS_COLORS key for a visit's type, falling back to
// the per-extension table for regular files.
func colorCode(colors *lscolors.Table, v *bftw.Visit) string {
	switch v.Type {
	case bftw.TypeDir:
		return colors.Code("di")
	case bftw.TypeSymlink:
		return colors.Code("ln")
	case bftw.TypeFifo:
		return colors.Code("pi")
	case bftw.TypeSocket:
		return colors.Code("so")
	case bftw.TypeBlockdev:
		return colors.Code("bd")
	case bftw.TypeChardev:
		return colors.Code("cd")
	default:
		if code := colors.ExtCode(v.Basename()); code != "" {
			return code
		}
		return colors.Code("fi")
	}
}

func (n *Node) evalPrint(ctx *Context) bool {
	text := ctx.Visit.Path
	if ctx.Colors.Enabled() {
		text = ctx.Colors.Wrap(colorCode(ctx.Colors, ctx.Visit), text)
	}
	fmt.Fprintln(ctx.Stdout, text)
	return true
}

func (n *Node) evalPrint0(ctx *Context) bool {
	fmt.Fprint(ctx.Stdout, ctx.Visit.Path, "\x00")
	return true
}

func (n *Node) evalFPrint(ctx *Context) bool {
	f, err := ctx.Files.Get(n.Str)
	if err != nil {
		ctx.MarkError("fprint", err)
		return false
	}
	fmt.Fprintln(f, ctx.Visit.Path)
	return true
}

func (n *Node) evalFPrint0(ctx *Context) bool {
	f, err := ctx.Files.Get(n.Str)
	if err != nil {
		ctx.MarkError("fprint0", err)
		return false
	}
	fmt.Fprint(f, ctx.Visit.Path, "\x00")
	return true
}

func (n *Node) compiledFormat() *printfmt.Format {
	if n.printfCompiled == nil {
		n.printfCompiled = printfmt.Compile(n.PrintfFormat)
	}
	return n.printfCompiled
}

func (n *Node) evalPrintf(ctx *Context) bool {
	st, _ := ctx.Stat()
	fmt.Fprint(ctx.Stdout, printfmt.Render(n.compiledFormat(), ctx.Visit, st))
	return true
}

func (n *Node) evalFPrintf(ctx *Context) bool {
	f, err := ctx.Files.Get(n.Str)
	if err != nil {
		ctx.MarkError("fprintf", err)
		return false
	}
	st, _ := ctx.Stat()
	fmt.Fprint(f, printfmt.Render(n.compiledFormat(), ctx.Visit, st))
	return true
}

// lsLine renders one "ls -dils"-style line
func lsLine(v *bftw.Visit, st *bftw.Stat) string {
	if st == nil {
		return v.Path
	}
	blocks := (st.Blocks*512 + 1023) / 1024
	perm := modeStringFor(st.Mode)
	name := v.Path
	return fmt.Sprintf("%9d %6d %s %3d %5d %5d %8d %s",
		st.Ino, blocks, perm, st.Nlink, st.Uid, st.Gid, st.Size, name)
}

func modeStringFor(mode uint32) string {
	const letters = "rwxrwxrwx"
	var b strings.Builder
	switch mode & 0170000 {
	case 0040000:
		b.WriteByte('d')
	case 0120000:
		b.WriteByte('l')
	case 0020000:
		b.WriteByte('c')
	case 0060000:
		b.WriteByte('b')
	case 0010000:
		b.WriteByte('p')
	case 0140000:
		b.WriteByte('s')
	default:
		b.WriteByte('-')
	}
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			b.WriteByte(letters[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func (n *Node) evalLs(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("ls", err)
		return false
	}
	fmt.Fprintln(ctx.Stdout, lsLine(ctx.Visit, st))
	return true
}

func (n *Node) evalFls(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("fls", err)
		return false
	}
	f, err := ctx.Files.Get(n.Str)
	if err != nil {
		ctx.MarkError("fls", err)
		return false
	}
	fmt.Fprintln(f, lsLine(ctx.Visit, st))
	return true
}

// template lazily builds (and caches) the execute.Template for an
// -exec/-ok leaf, keyed by the leaf's own identity so distinct -exec/-ok
// leaves in the same command never share a "+" batch.
func (n *Node) template() *execute.Template {
	if n.execTmpl != nil {
		return n.execTmpl
	}
	argv := n.ExecArgv
	var prog string
	var args []string
	if len(argv) > 0 {
		prog = argv[0]
		args = argv[1:]
	}
	n.execTmpl = &execute.Template{
		Prog:    prog,
		Args:    args,
		Plus:    n.ExecPlus,
		ChDir:   n.ExecDir,
		Confirm: n.ExecAsk,
	}
	return n.execTmpl
}

func (n *Node) evalExec(ctx *Context) bool {
	if ctx.Exec == nil {
		return false
	}
	ok, err := ctx.Exec.Run(n.template(), ctx.Visit.Path)
	if err != nil {
		ctx.MarkError("exec", err)
		return false
	}
	return ok
}

func (n *Node) evalOk(ctx *Context) bool {
	return n.evalExec(ctx)
}

func (n *Node) evalNoHidden(ctx *Context) bool {
	if strings.HasPrefix(ctx.Visit.Basename(), ".") {
		ctx.SetHint(bftw.ActionSkipSubtree)
		return false
	}
	return true
}
