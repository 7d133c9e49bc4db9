package parse

import (
	"strings"
	"testing"

	"github.com/opencoff/bfs/internal/expr"
)

func mustParse(t *testing.T, argv ...string) *Command {
	t.Helper()
	cmd, err := Parse(argv, nil)
	if err != nil {
		t.Fatalf("Parse(%v): %s", argv, err)
	}
	return cmd
}

func TestParseDefaultsToCurrentDirAndImplicitPrint(t *testing.T) {
	cmd := mustParse(t, "-name", "*.go")
	if len(cmd.Roots) != 1 || cmd.Roots[0] != "." {
		t.Fatalf("Roots = %v, want [.]", cmd.Roots)
	}
	// implicit -print means the parsed root is (-name ... -a -print);
	// at the default O1 level that's still an And node.
	if cmd.Root.Kind != expr.KindAnd {
		t.Fatalf("Root.Kind = %v, want And (implicit -print)", cmd.Root.Kind)
	}
}

func TestParseExplicitActionSuppressesImplicitPrint(t *testing.T) {
	cmd := mustParse(t, "-name", "*.go", "-print0")
	// with -O1, `x -a -print0` and no further rewrite applies since
	// -print0 is an action: the tree should be an And whose right is
	// exactly the -print0 leaf, not a synthesized second -print.
	if cmd.Root.Kind != expr.KindAnd || cmd.Root.Right.Kind != expr.KindPrint0 {
		t.Fatalf("Root = %v/%v, want And ending in -print0", cmd.Root.Kind, cmd.Root.Right.Kind)
	}
}

func TestParseRootsBeforeExpression(t *testing.T) {
	cmd := mustParse(t, "/tmp", "/var", "-name", "x")
	if len(cmd.Roots) != 2 || cmd.Roots[0] != "/tmp" || cmd.Roots[1] != "/var" {
		t.Fatalf("Roots = %v, want [/tmp /var]", cmd.Roots)
	}
}

func TestParseOrPrecedence(t *testing.T) {
	// -name a -o -name b -a -name c  parses as  a -o (b -a c), which the
	// implicit -print then wraps: ((a -o (b -a c)) -a print)
	cmd := mustParse(t, "-name", "a", "-o", "-name", "b", "-a", "-name", "c")
	if cmd.Root.Kind != expr.KindAnd {
		t.Fatalf("top Kind = %v, want And (implicit -print)", cmd.Root.Kind)
	}
	root := cmd.Root.Left
	if root.Kind != expr.KindOr {
		t.Fatalf("Root.Left.Kind = %v, want Or", root.Kind)
	}
	if root.Right.Kind != expr.KindAnd {
		t.Fatalf("Or.Right.Kind = %v, want And", root.Right.Kind)
	}
}

func TestParseImplicitAnd(t *testing.T) {
	cmd := mustParse(t, "-name", "a", "-type", "f")
	// two adjacent tests with no -a/-o implies And, then implicit -print
	// wraps again: ((a -a type) -a print)
	if cmd.Root.Kind != expr.KindAnd {
		t.Fatalf("Root.Kind = %v, want And", cmd.Root.Kind)
	}
	if cmd.Root.Left.Kind != expr.KindAnd {
		t.Fatalf("Root.Left.Kind = %v, want And (implicit -a between name/type)", cmd.Root.Left.Kind)
	}
}

func TestParseNotAndParens(t *testing.T) {
	cmd := mustParse(t, "(", "-name", "a", "-o", "-name", "b", ")", "!", "-empty")
	// the implicit -print wraps the whole expression: ((a -o b) -a !empty) -a print
	if cmd.Root.Kind != expr.KindAnd {
		t.Fatalf("Root.Kind = %v, want And (implicit -print)", cmd.Root.Kind)
	}
	body := cmd.Root.Left
	if body.Left.Kind != expr.KindOr {
		t.Fatalf("parenthesized clause should parse as Or, got %v", body.Left.Kind)
	}
	if body.Right.Kind != expr.KindNot {
		t.Fatalf("! -empty should parse as Not, got %v", body.Right.Kind)
	}
}

func TestUnknownLiteralSuggests(t *testing.T) {
	_, err := Parse([]string{"-nam", "x"}, nil)
	if err == nil {
		t.Fatal("expected an error for unknown literal -nam")
	}
	if !strings.Contains(err.Error(), "did you mean") {
		t.Fatalf("error %q carries no suggestion", err)
	}
}

func TestMaxdepthMindepthGlobalFlags(t *testing.T) {
	cmd := mustParse(t, "-maxdepth", "3", "-mindepth", "1", "-true")
	if cmd.MaxDepth != 3 || cmd.MinDepth != 1 {
		t.Fatalf("MaxDepth=%d MinDepth=%d, want 3/1", cmd.MaxDepth, cmd.MinDepth)
	}
}

func TestExcludeDesugarsToNamePruneOr(t *testing.T) {
	cmd := mustParse(t, "-exclude", "*.tmp", "-name", "*.go")
	// root should be Or(And(Name(*.tmp), Prune), rest); rest has its own
	// implicit -print wrapping.
	if cmd.Root.Kind != expr.KindOr {
		t.Fatalf("Root.Kind = %v, want Or (exclude prepended)", cmd.Root.Kind)
	}
	left := cmd.Root.Left
	if left.Kind != expr.KindAnd || left.Left.Kind != expr.KindName || left.Right.Kind != expr.KindPrune {
		t.Fatalf("Root.Left should be And(Name, Prune), got %v", left.Kind)
	}
}
