// lscolors.go - LS_COLORS parsing and ANSI highlighting
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Parses LS_COLORS the way coreutils/GNU find do and exposes a minimal
// "wrap this text in the escape sequence for this class" contract. Kept
// to raw ANSI escape passthrough rather than a color-name library (see
// DESIGN.md) because LS_COLORS entries are themselves raw `ESC[...m`
// parameter lists, not a fixed enum of colors a library like
// fatih/color can express.
package lscolors

import "strings"

// Table holds the parsed LS_COLORS codes: one per named key, plus an
// ordered list of "*suffix" entries matched longest-suffix-first.
type Table struct {
	enabled bool
	codes   map[string]string
	exts    []extEntry
}

type extEntry struct {
	suffix string
	code   string
}

// Parse builds a Table from an LS_COLORS-format string (the format of the
// LS_COLORS environment variable: "key=esc:key=esc:...:*.ext=esc:...").
// All-zero escape values are ignored.
func Parse(s string) *Table {
	t := &Table{codes: make(map[string]string)}
	if s == "" {
		return t
	}
	t.enabled = true

	for _, entry := range strings.Split(s, ":") {
		if entry == "" {
			continue
		}
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key, code := kv[0], kv[1]
		if isAllZero(code) {
			continue
		}
		if strings.HasPrefix(key, "*") {
			t.exts = append(t.exts, extEntry{suffix: key[1:], code: code})
		} else {
			t.codes[key] = code
		}
	}
	return t
}

func isAllZero(code string) bool {
	for _, part := range strings.Split(code, ";") {
		if part != "" && part != "0" && part != "00" {
			return false
		}
	}
	return true
}

// Enabled reports whether a non-empty LS_COLORS was parsed.
func (t *Table) Enabled() bool { return t != nil && t.enabled }

// Code returns the raw escape parameter string for a named key (e.g.
// "di", "ex", "no"), or "" if unset.
func (t *Table) Code(key string) string {
	if t == nil {
		return ""
	}
	return t.codes[key]
}

// ExtCode returns the escape parameters matching the longest "*suffix"
// entry for name, or "" if none match.
func (t *Table) ExtCode(name string) string {
	if t == nil {
		return ""
	}
	best, bestLen := "", -1
	for _, e := range t.exts {
		if strings.HasSuffix(name, e.suffix) && len(e.suffix) > bestLen {
			best, bestLen = e.code, len(e.suffix)
		}
	}
	return best
}

// Wrap surrounds text in the ANSI escape for code, followed by a reset
// (the "rs" key, defaulting to "0"). If colors are disabled or code is
// empty, text is returned unmodified.
func (t *Table) Wrap(code, text string) string {
	if !t.Enabled() || code == "" {
		return text
	}
	rs := t.Code("rs")
	if rs == "" {
		rs = "0"
	}
	return "\x1b[" + code + "m" + text + "\x1b[" + rs + "m"
}
