package expr

import (
	"testing"

	"github.com/opencoff/bfs/internal/bftw"
)

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, name string
		caseFold      bool
		want          bool
	}{
		{"*.go", "main.go", false, true},
		{"*.go", "main.GO", false, false},
		{"*.go", "main.GO", true, true},
		{"foo*", "bar", false, false},
	}
	for _, c := range cases {
		if got := globMatch(c.pattern, c.name, c.caseFold); got != c.want {
			t.Errorf("globMatch(%q, %q, %v) = %v, want %v", c.pattern, c.name, c.caseFold, got, c.want)
		}
	}
}

func permContext(mode uint32, isDir bool) *Context {
	typ := bftw.TypeRegular
	if isDir {
		typ = bftw.TypeDir
	}
	v := &bftw.Visit{Type: typ, Stat: &bftw.Stat{Mode: mode}}
	return &Context{Visit: v}
}

func TestEvalPermExact(t *testing.T) {
	n := &Node{Kind: KindPerm, PermMode: PermExact, FileMode: 0644, DirMode: 0755}
	if !n.evalPerm(permContext(0644, false)) {
		t.Error("0644 should match -perm 644 exactly")
	}
	if n.evalPerm(permContext(0600, false)) {
		t.Error("0600 should not match -perm 644 exactly")
	}
}

func TestEvalPermAll(t *testing.T) {
	n := &Node{Kind: KindPerm, PermMode: PermAll, FileMode: 0600, DirMode: 0600}
	if !n.evalPerm(permContext(0644, false)) {
		t.Error("0644 contains all bits of 0600, -perm -0600 should match")
	}
	if n.evalPerm(permContext(0400, false)) {
		t.Error("0400 is missing 0200, -perm -0600 should not match")
	}
}

func TestEvalPermAny(t *testing.T) {
	n := &Node{Kind: KindPerm, PermMode: PermAny, FileMode: 0100, DirMode: 0100}
	if n.evalPerm(permContext(0644, false)) {
		t.Error("0644 shares no bits with 0100, -perm /0100 should not match")
	}
	if !n.evalPerm(permContext(0744, false)) {
		t.Error("0744 shares 0100 with the target, -perm /0100 should match")
	}
}

func TestEvalPermUsesDirMode(t *testing.T) {
	n := &Node{Kind: KindPerm, PermMode: PermExact, FileMode: 0644, DirMode: 0755}
	if !n.evalPerm(permContext(0755, true)) {
		t.Error("a directory should be compared against DirMode, not FileMode")
	}
}

func TestEvalTypeMask(t *testing.T) {
	n := &Node{Kind: KindType, TypeMask: 1 << uint(bftw.TypeDir)}
	v := &bftw.Visit{Type: bftw.TypeDir}
	if !n.evalType(&Context{Visit: v}) {
		t.Error("-type d should match a directory visit")
	}
	v.Type = bftw.TypeRegular
	if n.evalType(&Context{Visit: v}) {
		t.Error("-type d should not match a regular file visit")
	}
}
