// evaluator.go - Node.Eval dispatch and the per-visit driver
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Mirrors eval.c's single eval_expr() switch, reshaped as a method on the
// tagged Node (a Kind
// switch instead of an indirect call).
package expr

import (
	"time"

	"github.com/opencoff/bfs/internal/bftw"
)

// ShouldEvaluate decides, for one visit, whether the root expression
// should run at all:
//   - non-directories are only ever visited once (PhasePre) and are
//     always evaluated then;
//   - directories in non-depth mode are evaluated on PhasePre;
//   - directories in depth ("-depth") mode are evaluated only on
//     PhasePost -- this is what makes -prune a no-op under -depth,
//     since PhasePre for a directory always returns ActionContinue
//     in that mode, before the expression has had any say.
func ShouldEvaluate(depthMode bool, v *bftw.Visit) bool {
	if v.Type != bftw.TypeDir {
		return v.Phase == bftw.PhasePre
	}
	if depthMode {
		return v.Phase == bftw.PhasePost
	}
	return v.Phase == bftw.PhasePre
}

// Eval walks the tree rooted at n, applying short-circuit semantics for
// KindAnd/KindOr/KindComma and returning whether the overall expression
// matched. Rate-debug counters and elapsed time are recorded for every
// node, combinators included
func (n *Node) Eval(ctx *Context) bool {
	n.Evaluations++
	start := time.Now()
	result := n.eval(ctx)
	n.Elapsed += time.Since(start)
	if result {
		n.Successes++
	}
	return result
}

func (n *Node) eval(ctx *Context) bool {
	switch n.Kind {
	case KindTrue:
		return true
	case KindFalse:
		return false
	case KindNot:
		return !n.Left.Eval(ctx)
	case KindAnd:
		return n.Left.Eval(ctx) && n.Right.Eval(ctx)
	case KindOr:
		return n.Left.Eval(ctx) || n.Right.Eval(ctx)
	case KindComma:
		n.Left.Eval(ctx)
		return n.Right.Eval(ctx)
	default:
		return n.evalLeaf(ctx)
	}
}

// evalLeaf dispatches every predicate and action leaf. Predicates live in
// predicates.go, actions in actions.go; both are methods on *Node taking
// *Context so they can consult n's payload fields directly.
func (n *Node) evalLeaf(ctx *Context) bool {
	switch n.Kind {
	case KindAccess:
		return n.evalAccess(ctx)
	case KindTimeCmp:
		return n.evalTimeCmp(ctx)
	case KindNewerXY:
		return n.evalNewerXY(ctx)
	case KindUsed:
		return n.evalUsed(ctx)
	case KindGid:
		return n.evalGid(ctx)
	case KindUid:
		return n.evalUid(ctx)
	case KindNoGroup:
		return n.evalNoGroup(ctx)
	case KindNoUser:
		return n.evalNoUser(ctx)
	case KindDepth:
		return n.evalDepth(ctx)
	case KindEmpty:
		return n.evalEmpty(ctx)
	case KindFSType:
		return n.evalFSType(ctx)
	case KindHidden:
		return n.evalHidden(ctx)
	case KindInum:
		return n.evalInum(ctx)
	case KindLinks:
		return n.evalLinks(ctx)
	case KindLName:
		return n.evalLName(ctx)
	case KindName:
		return n.evalName(ctx)
	case KindPath:
		return n.evalPath(ctx)
	case KindPerm:
		return n.evalPerm(ctx)
	case KindRegex:
		return n.evalRegex(ctx)
	case KindSameFile:
		return n.evalSameFile(ctx)
	case KindSize:
		return n.evalSize(ctx)
	case KindSparse:
		return n.evalSparse(ctx)
	case KindType:
		return n.evalType(ctx)
	case KindXType:
		return n.evalXType(ctx)

	case KindPrune:
		return n.evalPrune(ctx)
	case KindQuit:
		return n.evalQuit(ctx)
	case KindDelete:
		return n.evalDelete(ctx)
	case KindPrint:
		return n.evalPrint(ctx)
	case KindPrint0:
		return n.evalPrint0(ctx)
	case KindFPrint:
		return n.evalFPrint(ctx)
	case KindFPrint0:
		return n.evalFPrint0(ctx)
	case KindPrintf:
		return n.evalPrintf(ctx)
	case KindFPrintf:
		return n.evalFPrintf(ctx)
	case KindLs:
		return n.evalLs(ctx)
	case KindFls:
		return n.evalFls(ctx)
	case KindExec:
		return n.evalExec(ctx)
	case KindOk:
		return n.evalOk(ctx)
	case KindNoHidden:
		return n.evalNoHidden(ctx)
	default:
		return false
	}
}
