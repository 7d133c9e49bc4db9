// exec.go - -exec/-ok template expansion and dispatch
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Batched "+" invocations are flushed concurrently at walk end using a
// small worker pool.
package execute

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
)

// Template is one parsed -exec/-execdir/-ok/-okdir action.
type Template struct {
	Prog    string
	Args    []string // argv after Prog, up to (not including) the terminator
	Plus    bool     // terminator was "+" (batched) rather than ";" (immediate)
	ChDir   bool     // -execdir/-okdir: run in the parent directory of the file
	Confirm bool     // -ok/-okdir: prompt on the controlling tty first
}

// Dispatcher runs exec templates, accumulating "+"-terminated batches
// until Flush is called (at walk end).
type Dispatcher struct {
	Stdout, Stderr *os.File
	Confirm        *bufio.Reader // source of y/n answers for -ok; nil disables confirmation (auto-no)

	batches *xsync.MapOf[batchKey, *batch]
}

type batchKey struct {
	tmpl *Template // pointer identity: each parsed -exec leaf owns one cached Template
	dir  string
}

type batch struct {
	tmpl  *Template
	dir   string
	files []string
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		batches: xsync.NewMapOf[batchKey, *batch](),
	}
}

// expandSubstring implements the ";"-mode {} substitution: substring
// replacement, not whole-word
func expandSubstring(args []string, path string) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = strings.ReplaceAll(a, "{}", path)
	}
	return out
}

// Run dispatches one file through tmpl. For ";" templates this execs
// immediately; for "+" templates it queues path for the next Flush.
func (d *Dispatcher) Run(tmpl *Template, path string) (bool, error) {
	if tmpl.Plus {
		dir := ""
		rel := path
		if tmpl.ChDir {
			dir = filepath.Dir(path)
			rel = filepath.Base(path)
		}
		key := batchKey{tmpl: tmpl, dir: dir}
		b, _ := d.batches.LoadOrCompute(key, func() *batch {
			return &batch{tmpl: tmpl, dir: dir}
		})
		b.files = append(b.files, rel)
		return true, nil
	}

	argv := expandSubstring(tmpl.Args, path)
	if tmpl.Confirm && !d.confirm(tmpl.Prog, argv) {
		return true, nil
	}

	dir := ""
	if tmpl.ChDir {
		dir = filepath.Dir(path)
	}
	return d.run1(tmpl.Prog, argv, dir)
}

func (d *Dispatcher) confirm(prog string, argv []string) bool {
	fmt.Fprintf(d.Stderr, "%s %s? ", prog, strings.Join(argv, " "))
	if d.Confirm == nil {
		fmt.Fprintln(d.Stderr, "n")
		return false
	}
	line, _ := d.Confirm.ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

func (d *Dispatcher) run1(prog string, argv []string, dir string) (bool, error) {
	cmd := exec.Command(prog, argv...)
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr
	cmd.Stdin = os.Stdin
	cmd.Dir = dir
	err := cmd.Run()
	if err != nil {
		return false, fmt.Errorf("exec %s: %w", prog, err)
	}
	return true, nil
}

// Flush runs every pending "+" batch, each batch concurrently with the
// others, via a small capped worker pool. It returns the first error
// encountered across all batches.
func (d *Dispatcher) Flush() error {
	var jobs []*batch
	d.batches.Range(func(_ batchKey, b *batch) bool {
		jobs = append(jobs, b)
		return true
	})
	if len(jobs) == 0 {
		return nil
	}

	nworkers := len(jobs)
	if nworkers > 8 {
		nworkers = 8
	}

	var wg sync.WaitGroup
	errs := make([]error, len(jobs))
	ch := make(chan int, len(jobs))
	for i := range jobs {
		ch <- i
	}
	close(ch)

	wg.Add(nworkers)
	for w := 0; w < nworkers; w++ {
		go func() {
			defer wg.Done()
			for i := range ch {
				b := jobs[i]
				argv := append(append([]string{}, b.tmpl.Args...), b.files...)
				if _, err := d.run1(b.tmpl.Prog, argv, b.dir); err != nil {
					errs[i] = err
				}
			}
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
