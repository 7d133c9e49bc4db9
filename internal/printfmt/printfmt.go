// printfmt.go - the -printf/-fprintf mini-language
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Compiles a printf(3)-like format string once (on first use) into a
// slice of chunks, then renders it per visit without re-scanning the
// format: parse once, execute many times.
package printfmt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/opencoff/bfs/internal/bftw"
)

// chunkKind tags one compiled piece of a format string.
type chunkKind int

const (
	chunkLiteral chunkKind = iota
	chunkDirective
)

type chunk struct {
	kind    chunkKind
	literal string
	verb    byte // the directive letter, e.g. 'p', 'f', 's', 'm'
}

// Format is a compiled -printf/-fprintf template.
type Format struct {
	chunks []chunk
}

// Compile parses a raw -printf format string into escapes and
// %-directives. Unknown directives are passed through literally rather
// than rejected.
func Compile(s string) *Format {
	f := &Format{}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			f.chunks = append(f.chunks, chunk{kind: chunkLiteral, literal: lit.String()})
			lit.Reset()
		}
	}

	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '\\':
			if i+1 < len(runes) {
				i++
				switch runes[i] {
				case 'n':
					lit.WriteByte('\n')
				case 't':
					lit.WriteByte('\t')
				case 'r':
					lit.WriteByte('\r')
				case '\\':
					lit.WriteByte('\\')
				case 'c':
					// "\c" stops output immediately, even mid-format
					//
					flush()
					f.chunks = append(f.chunks, chunk{kind: chunkDirective, verb: 'c'})
					return f
				default:
					lit.WriteRune(runes[i])
				}
			}
		case '%':
			if i+1 < len(runes) {
				i++
				if runes[i] == '%' {
					lit.WriteByte('%')
					continue
				}
				flush()
				f.chunks = append(f.chunks, chunk{kind: chunkDirective, verb: byte(runes[i])})
			}
		default:
			lit.WriteRune(c)
		}
	}
	flush()
	return f
}

// Render executes the compiled format against one visit.
func Render(f *Format, v *bftw.Visit, st *bftw.Stat) string {
	var b strings.Builder
	for _, c := range f.chunks {
		switch c.kind {
		case chunkLiteral:
			b.WriteString(c.literal)
		case chunkDirective:
			if c.verb == 'c' {
				return b.String()
			}
			b.WriteString(renderDirective(c.verb, v, st))
		}
	}
	return b.String()
}

func renderDirective(verb byte, v *bftw.Visit, st *bftw.Stat) string {
	switch verb {
	case 'p':
		return v.Path
	case 'f':
		return v.Basename()
	case 'h':
		if v.NameOff == 0 {
			return "."
		}
		return strings.TrimSuffix(v.Path[:v.NameOff], "/")
	case 'd':
		return strconv.Itoa(v.Depth)
	case 'y':
		return v.Type.String()
	case 'i':
		if st != nil {
			return strconv.FormatUint(st.Ino, 10)
		}
	case 's':
		if st != nil {
			return strconv.FormatInt(st.Size, 10)
		}
	case 'u':
		if st != nil {
			return strconv.FormatUint(uint64(st.Uid), 10)
		}
	case 'g':
		if st != nil {
			return strconv.FormatUint(uint64(st.Gid), 10)
		}
	case 'n':
		if st != nil {
			return strconv.FormatUint(st.Nlink, 10)
		}
	case 'm':
		if st != nil {
			return fmt.Sprintf("%o", st.Mode&07777)
		}
	case 'M':
		if st != nil {
			return modeString(st.Mode)
		}
	case 't':
		if st != nil {
			return st.Mtim.Format(time.ANSIC)
		}
	case 'a':
		if st != nil {
			return st.Atim.Format(time.ANSIC)
		}
	case 'c':
		if st != nil {
			return st.Ctim.Format(time.ANSIC)
		}
	default:
		return "%" + string(verb)
	}
	return ""
}

// modeString renders the ls -l style permission string for %M.
func modeString(mode uint32) string {
	const letters = "rwxrwxrwx"
	var b strings.Builder
	b.WriteByte(typeLetter(mode))
	for i := 0; i < 9; i++ {
		if mode&(1<<uint(8-i)) != 0 {
			b.WriteByte(letters[i])
		} else {
			b.WriteByte('-')
		}
	}
	return b.String()
}

func typeLetter(mode uint32) byte {
	switch mode & 0170000 {
	case 0040000:
		return 'd'
	case 0120000:
		return 'l'
	case 0020000:
		return 'c'
	case 0060000:
		return 'b'
	case 0010000:
		return 'p'
	case 0140000:
		return 's'
	default:
		return '-'
	}
}
