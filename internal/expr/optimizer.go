// optimizer.go - algebraic rewrites applied during construction
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Ported from bftw's sibling eval.c optimizer passes The
// parser calls into a Builder instead of the raw New* constructors so
// every combinator gets these rewrites as it is built, plus one
// Finalize() pass over the completed tree.

package expr

// Builder applies the optimizer's algebraic rewrites at the
// requested level (0-4, where 4 is the "-Ofast" alias) while constructing
// combinator nodes.
type Builder struct {
	Level int
	Debug func(format string, args ...any)
}

func (b *Builder) log(format string, args ...any) {
	if b.Debug != nil {
		b.Debug(format, args...)
	}
}

// Not builds a negation, folding !true/!false and eliminating double
// negation at O1+.
func (b *Builder) Not(x *Node) *Node {
	if b.Level < 1 {
		return NewNot(x)
	}
	switch x.Kind {
	case KindTrue:
		b.log("O1: !true -> false")
		return False
	case KindFalse:
		b.log("O1: !false -> true")
		return True
	case KindNot:
		b.log("O1: !!x -> x")
		return x.Left
	}
	return NewNot(x)
}

// And builds a conjunction, applying short-circuit collapse, disjunctive
// syllogism, De Morgan distribution (O1) and purity-based elimination
// (O2).
func (b *Builder) And(l, r *Node) *Node {
	if b.Level < 1 {
		return NewAnd(l, r)
	}

	switch {
	case l.Kind == KindFalse:
		b.log("O1: false -a x -> false")
		return False
	case l.Kind == KindTrue:
		b.log("O1: true -a x -> x")
		return r
	case r.Kind == KindTrue:
		b.log("O1: x -a true -> x")
		return l
	case r.Kind == KindFalse:
		if l.Pure {
			b.log("O1: x -a false -> false (x pure)")
			return False
		}
		b.log("O1: x -a false -> (x , false) (x has side effects)")
		return NewComma(l, False)
	}

	if l.Kind == KindNot && r.Kind == KindNot {
		b.log("O1: De Morgan: !a -a !b -> !(a -o b)")
		return b.Not(b.Or(l.Left, r.Left))
	}

	if b.Level >= 2 {
		if l.AlwaysFalse {
			b.log("O2: l always false, r unreachable -> l")
			return l
		}
		if r.AlwaysFalse && l.Pure {
			b.log("O2: r always false, l pure -> r")
			return r
		}
	}

	return NewAnd(l, r)
}

// Or builds a disjunction, the dual of And.
func (b *Builder) Or(l, r *Node) *Node {
	if b.Level < 1 {
		return NewOr(l, r)
	}

	switch {
	case l.Kind == KindTrue:
		b.log("O1: true -o x -> true")
		return True
	case l.Kind == KindFalse:
		b.log("O1: false -o x -> x")
		return r
	case r.Kind == KindFalse:
		b.log("O1: x -o false -> x")
		return l
	case r.Kind == KindTrue:
		if l.Pure {
			b.log("O1: x -o true -> true (x pure)")
			return True
		}
		b.log("O1: x -o true -> (x , true) (x has side effects)")
		return NewComma(l, True)
	}

	if l.Kind == KindNot && r.Kind == KindNot {
		b.log("O1: De Morgan: !a -o !b -> !(a -a b)")
		return b.Not(b.And(l.Left, r.Left))
	}

	if b.Level >= 2 {
		if l.AlwaysTrue {
			b.log("O2: l always true, r unreachable -> l")
			return l
		}
		if r.AlwaysTrue && l.Pure {
			b.log("O2: r always true, l pure -> r")
			return r
		}
	}

	return NewOr(l, r)
}

// Comma builds a sequencing node, dropping a pure (hence unobservable)
// left arm at O2+.
func (b *Builder) Comma(l, r *Node) *Node {
	if b.Level >= 2 && l.Pure {
		b.log("O2: pure left arm of comma dropped")
		return r
	}
	return NewComma(l, r)
}

// Finalize applies the top-level pass: stripping a trailing pure
// right-hand arm of and/or/comma (O2+), then, at O4, replacing a wholly
// pure expression with the constant false and reporting that traversal
// itself can be skipped
func (b *Builder) Finalize(root *Node) (*Node, bool) {
	if b.Level >= 2 {
		for (root.Kind == KindAnd || root.Kind == KindOr || root.Kind == KindComma) && root.Right.Pure {
			b.log("O2: top-level pass stripped trailing pure right arm")
			root = root.Left
		}
	}
	if b.Level >= 4 && root.Pure {
		b.log("O4: expression is pure, skipping traversal entirely")
		return False, true
	}
	return root, false
}
