// predicates.go - pure test leaves
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// One method per Kind, modeled on bftw's eval.c predicate bodies but
// expressed against the normalized bftw.Stat/Visit rather than raw
// struct stat fields.
package expr

import (
	"os"
	"os/user"
	"strconv"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sys/unix"

	"github.com/opencoff/bfs/internal/bftw"
)

func (n *Node) evalAccess(ctx *Context) bool {
	err := unix.Faccessat(ctx.Visit.AtFD, ctx.Visit.AtPath, n.AccessMode, 0)
	return err == nil
}

// fieldTime picks the atime/ctime/mtime named by n.Field ('a'/'c'/'m').
func fieldTime(st *bftw.Stat, field byte) time.Time {
	switch field {
	case 'a':
		return st.Atim
	case 'c':
		return st.Ctim
	default:
		return st.Mtim
	}
}

func (n *Node) evalTimeCmp(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	age := ctx.Now.Sub(fieldTime(st, n.Field))
	units := int64(age / (time.Duration(n.TimeUnit) * time.Second))
	return n.Cmp.Match(units, n.IntVal)
}

func (n *Node) evalNewerXY(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return fieldTime(st, n.Field).After(n.RefTime)
}

func (n *Node) evalUsed(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	days := st.Atim.Sub(st.Ctim) / (24 * time.Hour)
	return n.Cmp.Match(int64(days), n.IntVal)
}

func (n *Node) evalGid(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return n.Cmp.Match(int64(st.Gid), n.IntVal)
}

func (n *Node) evalUid(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return n.Cmp.Match(int64(st.Uid), n.IntVal)
}

func (n *Node) evalNoGroup(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	_, err = user.LookupGroupId(strconv.Itoa(int(st.Gid)))
	return err != nil
}

func (n *Node) evalNoUser(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	_, err = user.LookupId(strconv.Itoa(int(st.Uid)))
	return err != nil
}

func (n *Node) evalDepth(ctx *Context) bool {
	return n.Cmp.Match(int64(ctx.Visit.Depth), n.IntVal)
}

func (n *Node) evalEmpty(ctx *Context) bool {
	if ctx.Visit.Type == bftw.TypeDir {
		entries, err := os.ReadDir(ctx.Visit.Path)
		if err != nil {
			ctx.MarkError("readdir", err)
			return false
		}
		return len(entries) == 0
	}
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return st.Size == 0
}

func (n *Node) evalFSType(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	if ctx.Mount == nil {
		return false
	}
	return ctx.Mount.FSType(st.Dev) == n.Str
}

func (n *Node) evalHidden(ctx *Context) bool {
	return strings.HasPrefix(ctx.Visit.Basename(), ".")
}

func (n *Node) evalInum(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return n.Cmp.Match(int64(st.Ino), n.IntVal)
}

func (n *Node) evalLinks(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return n.Cmp.Match(int64(st.Nlink), n.IntVal)
}

func (n *Node) evalLName(ctx *Context) bool {
	target, err := ctx.Readlink()
	if err != nil {
		return false
	}
	return globMatch(n.Str, target, n.CaseFold)
}

func (n *Node) evalName(ctx *Context) bool {
	return globMatch(n.Str, ctx.Visit.Basename(), n.CaseFold)
}

func (n *Node) evalPath(ctx *Context) bool {
	return globMatch(n.Str, ctx.Visit.Path, n.CaseFold)
}

// globMatch is a shell-glob match with an optional ASCII case-fold, used
// by -name/-iname, -path/-ipath and -lname/-ilname. Unlike filepath.Match,
// "*" is allowed to cross "/" here, matching -path's "*/build/*"-style
// patterns the way find(1) actually does.
func globMatch(pattern, name string, caseFold bool) bool {
	if caseFold {
		pattern = strings.ToLower(pattern)
		name = strings.ToLower(name)
	}
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(name)
}

func (n *Node) evalPerm(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	mode := st.Mode & 07777
	target := n.FileMode
	if ctx.Visit.Type == bftw.TypeDir {
		target = n.DirMode
	}
	switch n.PermMode {
	case PermAll:
		return mode&target == target
	case PermAny:
		return target == 0 || mode&target != 0
	default:
		return mode == target
	}
}

func (n *Node) evalRegex(ctx *Context) bool {
	return n.Regex != nil && n.Regex.MatchString(ctx.Visit.Path)
}

func (n *Node) evalSameFile(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return st.Dev == n.Dev && st.Ino == n.Ino
}

func (n *Node) evalSize(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	unit := n.SizeUnit
	if unit <= 0 {
		unit = 1
	}
	units := (st.Size + unit - 1) / unit
	return n.Cmp.Match(units, n.IntVal)
}

func (n *Node) evalSparse(ctx *Context) bool {
	st, err := ctx.Stat()
	if err != nil {
		ctx.MarkError("stat", err)
		return false
	}
	return st.Blocks*512 < st.Size
}

func (n *Node) evalType(ctx *Context) bool {
	typ := ctx.Visit.Type
	if typ == bftw.TypeUnknown {
		st, err := ctx.Stat()
		if err != nil {
			ctx.MarkError("stat", err)
			return false
		}
		typ = st.Type()
	}
	return n.TypeMask&(1<<uint(typ)) != 0
}

func (n *Node) evalXType(ctx *Context) bool {
	st, err := ctx.StatFollow(!ctx.Visit.Follow)
	if err != nil {
		// the opposite-mode stat failed (e.g. a broken symlink under
		// -P): fall back to the visit's own type.
		return n.evalType(ctx)
	}
	return n.TypeMask&(1<<uint(st.Type())) != 0
}
