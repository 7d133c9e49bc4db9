// numeric.go - integer comparators, size units, the -perm mini-parser
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Modeled on parse.c's parse_int/parse_size/parse_mode helpers.
package parse

import (
	"strconv"
	"strings"

	"github.com/opencoff/bfs/internal/expr"
)

// parseCmpInt splits a leading '+'/'-' comparator off tok and parses the
// remainder as a base-10 integer: leading + means greater, - means
// less, otherwise exact.
func parseCmpInt(tok string) (expr.Cmp, int64, error) {
	cmp := expr.CmpExact
	switch {
	case strings.HasPrefix(tok, "+"):
		cmp, tok = expr.CmpGreater, tok[1:]
	case strings.HasPrefix(tok, "-"):
		cmp, tok = expr.CmpLess, tok[1:]
	}
	n, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		return 0, 0, errf(tok, "expected a decimal integer")
	}
	return cmp, n, nil
}

// sizeUnit maps a -size suffix letter to its byte scale (b c w k M G T P).
func sizeUnit(suffix byte) (int64, bool) {
	switch suffix {
	case 'b':
		return 512, true
	case 'c':
		return 1, true
	case 'w':
		return 2, true
	case 'k':
		return 1024, true
	case 'M':
		return 1024 * 1024, true
	case 'G':
		return 1024 * 1024 * 1024, true
	case 'T':
		return 1024 * 1024 * 1024 * 1024, true
	case 'P':
		return 1024 * 1024 * 1024 * 1024 * 1024, true
	}
	return 0, false
}

// parseSize parses a -size argument: [+-]N[bcwkMGTP], default unit 'b'.
func parseSize(tok string) (expr.Cmp, int64, int64, error) {
	unit := int64(512)
	body := tok
	if n := len(tok); n > 0 {
		if u, ok := sizeUnit(tok[n-1]); ok {
			unit, body = u, tok[:n-1]
		}
	}
	cmp, n, err := parseCmpInt(body)
	if err != nil {
		return 0, 0, 0, errf(tok, "invalid -size argument")
	}
	return cmp, n, unit, nil
}

// resolvePermClauses applies a parsed chmod-style clause list starting
// from an all-zero mode, returning the resolved target for plain files
// and for directories: X sets the executable bit on directories only.
// This is a simplification of the reference chmod grammar: a
// bare "X" with no other bit set on a non-directory target resolves to
// no bit at all (granting execute only when the file is already
// executable would require the file's own mode at parse time, which
// this resolved-target model doesn't carry -- see DESIGN.md).
func resolvePermClauses(clauses []expr.PermClause) (fileMode, dirMode uint32) {
	for _, c := range clauses {
		fileMode = applyClause(fileMode, c, false)
		dirMode = applyClause(dirMode, c, true)
	}
	return fileMode, dirMode
}

func applyClause(mode uint32, c expr.PermClause, isDir bool) uint32 {
	bits := c.Bits &^ xMarker
	if isDir && c.Bits&xMarker != 0 {
		bits |= 0111
	}
	switch c.Op {
	case '=':
		mode &^= c.Who
		mode |= bits & c.Who
	case '+':
		mode |= bits & c.Who
	case '-':
		mode &^= bits & c.Who
	}
	return mode
}

// xMarker is a private flag (outside the real 07777 mode space) meaning
// "this clause's X also grants execute, but only for directories";
// applyClause consumes it and never lets it leak into a resolved mode.
const xMarker = 1 << 20

// parsePermSymbolic parses a comma-separated chmod-style clause list:
// `[ugoa]*([+-=]([rwxXst]*|[ugo]))+`
func parsePermSymbolic(s string) ([]expr.PermClause, error) {
	var clauses []expr.PermClause
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			return nil, errf(s, "empty -perm clause")
		}
		i := 0
		who, explicit := uint32(0), false
		for i < len(part) {
			switch part[i] {
			case 'u':
				who |= 0700
				explicit = true
			case 'g':
				who |= 0070
				explicit = true
			case 'o':
				who |= 0007
				explicit = true
			case 'a':
				who |= 0777
				explicit = true
			default:
				goto ops
			}
			i++
		}
	ops:
		if !explicit {
			who = 0777
		}
		if i >= len(part) {
			return nil, errf(s, "missing +/-/= in -perm clause")
		}
		for i < len(part) {
			op := part[i]
			if op != '+' && op != '-' && op != '=' {
				return nil, errf(s, "expected +, - or = in -perm clause")
			}
			i++
			start := i
			var bits uint32
			var fromID byte
			for i < len(part) && strings.ContainsRune("rwxXst", rune(part[i])) {
				switch part[i] {
				case 'r':
					bits |= 0444
				case 'w':
					bits |= 0222
				case 'x':
					bits |= 0111
				case 'X':
					bits |= xMarker
				case 's':
					bits |= 06000
				case 't':
					bits |= 01000
				}
				i++
			}
			if i == start && i < len(part) && strings.ContainsRune("ugo", rune(part[i])) {
				fromID = part[i]
				i++
			}
			clauses = append(clauses, expr.PermClause{Who: who, Op: op, Bits: bits, FromID: fromID})
		}
	}
	return clauses, nil
}
