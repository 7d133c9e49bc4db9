package execute

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandSubstring(t *testing.T) {
	got := expandSubstring([]string{"cp", "{}", "{}.bak"}, "a/b.txt")
	want := []string{"cp", "a/b.txt", "a/b.txt.bak"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expandSubstring()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func captureOutput(t *testing.T) (*os.File, func() string) {
	t.Helper()
	f, err := os.CreateTemp(t.TempDir(), "out")
	if err != nil {
		t.Fatal(err)
	}
	return f, func() string {
		data, err := os.ReadFile(f.Name())
		if err != nil {
			t.Fatal(err)
		}
		return string(data)
	}
}

func TestRunImmediateTemplate(t *testing.T) {
	out, read := captureOutput(t)
	defer out.Close()

	d := NewDispatcher()
	d.Stdout = out
	tmpl := &Template{Prog: "echo", Args: []string{"hit:{}"}}
	ok, err := d.Run(tmpl, "target.txt")
	if err != nil || !ok {
		t.Fatalf("Run() = %v, %v", ok, err)
	}
	if got := strings.TrimSpace(read()); got != "hit:target.txt" {
		t.Fatalf("output = %q, want %q", got, "hit:target.txt")
	}
}

func TestRunOkDeclinesWithoutConfirmReader(t *testing.T) {
	out, read := captureOutput(t)
	defer out.Close()

	d := NewDispatcher()
	d.Stdout = out
	d.Stderr = out
	tmpl := &Template{Prog: "echo", Args: []string{"should-not-run"}, Confirm: true}
	ok, err := d.Run(tmpl, "x")
	if err != nil || !ok {
		t.Fatalf("Run() = %v, %v, want ok=true (declined, not failed)", ok, err)
	}
	if strings.Contains(read(), "should-not-run\n") {
		t.Fatal("declined -ok should not have executed the program")
	}
}

func TestRunOkConfirmedViaReader(t *testing.T) {
	out, read := captureOutput(t)
	defer out.Close()

	d := NewDispatcher()
	d.Stdout = out
	d.Stderr = out
	d.Confirm = bufio.NewReader(strings.NewReader("y\n"))
	tmpl := &Template{Prog: "echo", Args: []string{"confirmed"}, Confirm: true}
	ok, err := d.Run(tmpl, "x")
	if err != nil || !ok {
		t.Fatalf("Run() = %v, %v", ok, err)
	}
	if !strings.Contains(read(), "confirmed") {
		t.Fatal("confirmed -ok should have executed the program")
	}
}

func TestFlushBatchesPlusTemplate(t *testing.T) {
	out, read := captureOutput(t)
	defer out.Close()

	d := NewDispatcher()
	d.Stdout = out
	tmpl := &Template{Prog: "echo", Args: []string{"batch:"}, Plus: true}

	if _, err := d.Run(tmpl, "a"); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(tmpl, "b"); err != nil {
		t.Fatal(err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %s", err)
	}
	got := strings.TrimSpace(read())
	if got != "batch: a b" {
		t.Fatalf("batched output = %q, want %q", got, "batch: a b")
	}
}

func TestFlushChDirUsesRelativeNames(t *testing.T) {
	out, read := captureOutput(t)
	defer out.Close()

	dir := t.TempDir()
	d := NewDispatcher()
	d.Stdout = out
	tmpl := &Template{Prog: "echo", Plus: true, ChDir: true}

	if _, err := d.Run(tmpl, filepath.Join(dir, "f.txt")); err != nil {
		t.Fatal(err)
	}
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush: %s", err)
	}
	if got := strings.TrimSpace(read()); got != "f.txt" {
		t.Fatalf("chdir batch output = %q, want %q", got, "f.txt")
	}
}

func TestFlushWithNoPendingBatchesIsNoop(t *testing.T) {
	d := NewDispatcher()
	if err := d.Flush(); err != nil {
		t.Fatalf("Flush() on empty dispatcher = %s, want nil", err)
	}
}
