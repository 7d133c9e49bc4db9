package printfmt

import (
	"testing"
	"time"

	"github.com/opencoff/bfs/internal/bftw"
)

func TestCompileLiteralAndDirectives(t *testing.T) {
	f := Compile("%p (%s bytes)\\n")
	v := &bftw.Visit{Path: "a/b.go", Depth: 2}
	st := &bftw.Stat{Size: 42}
	got := Render(f, v, st)
	want := "a/b.go (42 bytes)\n"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestCompilePercentEscapesLiterally(t *testing.T) {
	f := Compile("100%%")
	got := Render(f, &bftw.Visit{}, nil)
	if got != "100%" {
		t.Fatalf("Render() = %q, want %q", got, "100%")
	}
}

func TestCompileBackslashCStopsOutput(t *testing.T) {
	f := Compile("before\\cafter")
	got := Render(f, &bftw.Visit{}, nil)
	if got != "before" {
		t.Fatalf("Render() = %q, want %q (\\c should truncate)", got, "before")
	}
}

func TestRenderMissingStatYieldsEmpty(t *testing.T) {
	f := Compile("[%s]")
	got := Render(f, &bftw.Visit{}, nil)
	if got != "[]" {
		t.Fatalf("Render() with nil stat = %q, want %q", got, "[]")
	}
}

func TestRenderModeDirectives(t *testing.T) {
	f := Compile("%m %M")
	st := &bftw.Stat{Mode: 0100644}
	got := Render(f, &bftw.Visit{}, st)
	want := "644 -rw-r--r--"
	if got != want {
		t.Fatalf("Render() = %q, want %q", got, want)
	}
}

func TestRenderTimeDirective(t *testing.T) {
	f := Compile("%t")
	mt := time.Date(2024, time.January, 2, 3, 4, 5, 0, time.UTC)
	st := &bftw.Stat{Mtim: mt}
	got := Render(f, &bftw.Visit{}, st)
	if got != mt.Format(time.ANSIC) {
		t.Fatalf("Render() = %q, want %q", got, mt.Format(time.ANSIC))
	}
}

func TestBasenameAndDirname(t *testing.T) {
	v := &bftw.Visit{Path: "a/b/c.go", NameOff: 4}
	f := Compile("%f|%h")
	got := Render(f, v, nil)
	if got != "c.go|a/b" {
		t.Fatalf("Render() = %q, want %q", got, "c.go|a/b")
	}
}
