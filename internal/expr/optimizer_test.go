package expr

import "testing"

func TestBuilderFoldsConstants(t *testing.T) {
	b := &Builder{Level: 1}

	if got := b.Not(True); got != False {
		t.Errorf("Not(True) = %v, want False", got.Kind)
	}
	if got := b.Not(b.Not(True)); got != True {
		t.Errorf("Not(Not(True)) = %v, want True", got.Kind)
	}
	if got := b.And(False, NewLeaf(KindPrint)); got != False {
		t.Errorf("And(False, x) = %v, want False", got.Kind)
	}
	if got := b.Or(True, NewLeaf(KindPrint)); got != True {
		t.Errorf("Or(True, x) = %v, want True", got.Kind)
	}
}

func TestBuilderAndFalseWithSideEffectBecomesComma(t *testing.T) {
	b := &Builder{Level: 1}
	print := NewLeaf(KindPrint) // not pure: an action
	got := b.And(print, False)
	if got.Kind != KindComma {
		t.Fatalf("And(print, False) = %v, want comma (side effect preserved)", got.Kind)
	}
}

func TestBuilderDeMorgan(t *testing.T) {
	b := &Builder{Level: 1}
	name := NewLeaf(KindName)
	empty := NewLeaf(KindEmpty)
	got := b.And(b.Not(name), b.Not(empty))
	if got.Kind != KindNot {
		t.Fatalf("!a -a !b = %v, want Not(Or(a,b))", got.Kind)
	}
	if got.Left.Kind != KindOr {
		t.Fatalf("!a -a !b inner = %v, want Or", got.Left.Kind)
	}
}

func TestBuilderO2PurityElimination(t *testing.T) {
	b := &Builder{Level: 2}
	alwaysFalseLeaf := &Node{Kind: KindEmpty, Pure: true, AlwaysFalse: true}
	print := NewLeaf(KindPrint)
	got := b.And(alwaysFalseLeaf, print)
	if got != alwaysFalseLeaf {
		t.Fatalf("O2 should short-circuit an always-false left arm, got %v", got.Kind)
	}
}

func TestFinalizeO4SkipsPureExpression(t *testing.T) {
	b := &Builder{Level: 4}
	pureTrue := &Node{Kind: KindTrue, Pure: true, AlwaysTrue: true}
	final, skip := b.Finalize(pureTrue)
	if !skip {
		t.Fatal("Finalize at O4 on a pure expression should report skip=true")
	}
	if final != False {
		t.Fatalf("Finalize at O4 returned %v, want the False singleton", final.Kind)
	}
}

func TestEvalShortCircuitAnd(t *testing.T) {
	right := NewLeaf(KindTrue)
	n := NewAnd(False, right)
	if n.Eval(&Context{}) {
		t.Fatal("And(False, x) should be false")
	}
	if right.Evaluations != 0 {
		t.Fatalf("right side of And should not run after a false left side, Evaluations=%d", right.Evaluations)
	}
}
