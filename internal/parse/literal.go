// literal.go - the test/action literal table
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// The literal table maps a name ("-name", "-exec", ...) to the parse
// function that consumes its arguments and builds the AST leaf.
package parse

import (
	"os/user"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"github.com/opencoff/bfs/internal/bftw"
	"github.com/opencoff/bfs/internal/expr"
)

type literalEntry struct {
	isAction bool
	parse    func(p *Parser) (*expr.Node, error)
}

// literalTable is keyed by the literal exactly as it appears in argv.
// -newerXY's family is matched separately (matchNewerXY) since its name
// space is combinatorial rather than enumerable.
var literalTable map[string]literalEntry

func init() {
	literalTable = map[string]literalEntry{
		"-true":  {parse: leaf(expr.KindTrue)},
		"-false": {parse: leaf(expr.KindFalse)},

		"-access":  {parse: parseAccess(unix.F_OK)},
		"-readable": {parse: parseAccess(unix.R_OK)},
		"-writable": {parse: parseAccess(unix.W_OK)},
		"-executable": {parse: parseAccess(unix.X_OK)},

		"-amin": {parse: parseTimeCmp('a', expr.UnitMinutes)},
		"-cmin": {parse: parseTimeCmp('c', expr.UnitMinutes)},
		"-mmin": {parse: parseTimeCmp('m', expr.UnitMinutes)},
		"-atime": {parse: parseTimeCmp('a', expr.UnitDays)},
		"-ctime": {parse: parseTimeCmp('c', expr.UnitDays)},
		"-mtime": {parse: parseTimeCmp('m', expr.UnitDays)},

		"-used": {parse: parseUsed},

		"-gid":     {parse: parseGid},
		"-uid":     {parse: parseUid},
		"-group":   {parse: parseGroupName},
		"-user":    {parse: parseUserName},
		"-nogroup": {parse: leaf(expr.KindNoGroup)},
		"-nouser":  {parse: leaf(expr.KindNoUser)},

		"-depth": {parse: parseDepth},

		"-empty": {parse: leaf(expr.KindEmpty)},

		"-fstype": {parse: parseStr(expr.KindFSType)},

		"-hidden":   {parse: leaf(expr.KindHidden)},
		"-nohidden": {isAction: true, parse: leaf(expr.KindNoHidden)},

		"-inum":  {parse: parseIntCmp(expr.KindInum)},
		"-links": {parse: parseIntCmp(expr.KindLinks)},

		"-lname":  {parse: parseGlob(expr.KindLName, false)},
		"-ilname": {parse: parseGlob(expr.KindLName, true)},
		"-name":   {parse: parseGlob(expr.KindName, false)},
		"-iname":  {parse: parseGlob(expr.KindName, true)},
		"-path":   {parse: parseGlob(expr.KindPath, false)},
		"-ipath":  {parse: parseGlob(expr.KindPath, true)},

		"-perm": {parse: parsePerm},

		"-regex":  {parse: parseRegex(false)},
		"-iregex": {parse: parseRegex(true)},

		"-samefile": {parse: parseSameFile},

		"-size": {parse: parseSizeLiteral},

		"-sparse": {parse: leaf(expr.KindSparse)},

		"-type":  {parse: parseType(expr.KindType)},
		"-xtype": {parse: parseType(expr.KindXType)},

		"-prune": {isAction: true, parse: leaf(expr.KindPrune)},
		"-quit":  {isAction: true, parse: leaf(expr.KindQuit)},
		"-delete": {isAction: true, parse: func(p *Parser) (*expr.Node, error) {
			p.cmd.PostOrder = true
			return expr.NewLeaf(expr.KindDelete), nil
		}},

		"-print":   {isAction: true, parse: leaf(expr.KindPrint)},
		"-print0":  {isAction: true, parse: leaf(expr.KindPrint0)},
		"-fprint":  {isAction: true, parse: parseStr(expr.KindFPrint)},
		"-fprint0": {isAction: true, parse: parseStr(expr.KindFPrint0)},
		"-printf":  {isAction: true, parse: parsePrintf(expr.KindPrintf)},
		"-fprintf": {isAction: true, parse: parseFPrintf},
		"-ls":      {isAction: true, parse: leaf(expr.KindLs)},
		"-fls":     {isAction: true, parse: parseStr(expr.KindFls)},

		"-exec":    {isAction: true, parse: parseExecTemplate(false, false)},
		"-execdir": {isAction: true, parse: parseExecTemplate(false, true)},
		"-ok":      {isAction: true, parse: parseExecTemplate(true, false)},
		"-okdir":   {isAction: true, parse: parseExecTemplate(true, true)},
	}
}

func literalNames() []string {
	names := make([]string, 0, len(literalTable)+len(globalFlagNames))
	for name := range literalTable {
		names = append(names, name)
	}
	for name := range globalFlagNames {
		names = append(names, name)
	}
	return names
}

// leaf builds a parser for a no-argument predicate/action.
func leaf(k expr.Kind) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		return expr.NewLeaf(k), nil
	}
}

func parseAccess(mode uint32) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		return &expr.Node{Kind: expr.KindAccess, AccessMode: mode, Pure: true}, nil
	}
}

func parseTimeCmp(field byte, unit expr.TimeUnit) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		cmp, n, err := p.intArg("-" + string(field) + "time")
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: expr.KindTimeCmp, Field: field, TimeUnit: unit, Cmp: cmp, IntVal: n, Pure: true}, nil
	}
}

func parseUsed(p *Parser) (*expr.Node, error) {
	cmp, n, err := p.intArg("-used")
	if err != nil {
		return nil, err
	}
	return &expr.Node{Kind: expr.KindUsed, Cmp: cmp, IntVal: n, Pure: true}, nil
}

func parseGid(p *Parser) (*expr.Node, error) {
	cmp, n, err := p.intArg("-gid")
	if err != nil {
		return nil, err
	}
	return &expr.Node{Kind: expr.KindGid, Cmp: cmp, IntVal: n, Pure: true}, nil
}

func parseUid(p *Parser) (*expr.Node, error) {
	cmp, n, err := p.intArg("-uid")
	if err != nil {
		return nil, err
	}
	return &expr.Node{Kind: expr.KindUid, Cmp: cmp, IntVal: n, Pure: true}, nil
}

func parseGroupName(p *Parser) (*expr.Node, error) {
	name, err := p.strArg("-group")
	if err != nil {
		return nil, err
	}
	g, err := user.LookupGroup(name)
	if err != nil {
		return nil, errf(name, "unknown group")
	}
	gid, _ := strconv.ParseInt(g.Gid, 10, 64)
	return &expr.Node{Kind: expr.KindGid, Cmp: expr.CmpExact, IntVal: gid, Pure: true}, nil
}

func parseUserName(p *Parser) (*expr.Node, error) {
	name, err := p.strArg("-user")
	if err != nil {
		return nil, err
	}
	u, err := user.Lookup(name)
	if err != nil {
		return nil, errf(name, "unknown user")
	}
	uid, _ := strconv.ParseInt(u.Uid, 10, 64)
	return &expr.Node{Kind: expr.KindUid, Cmp: expr.CmpExact, IntVal: uid, Pure: true}, nil
}

// parseDepth implements the dual role of "-depth": with a following
// comparator-int it is the depth(cmp,n) test; bare, it is the
// post-order traversal switch.
func parseDepth(p *Parser) (*expr.Node, error) {
	if tok := p.t.peek(); tok != "" && (tok[0] == '+' || tok[0] == '-' || isDigit(tok[0])) {
		if cmp, n, err := parseCmpInt(tok); err == nil {
			p.t.next()
			return &expr.Node{Kind: expr.KindDepth, Cmp: cmp, IntVal: n, Pure: true}, nil
		}
	}
	p.cmd.PostOrder = true
	return expr.True, nil
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// parseStr builds a parser for a literal taking one string argument. pure
// tells it whether the resulting Kind is a test (fstype) or an action
// (fprint/fprint0/fls) since Kind's own isAction bit isn't exported outside
// package expr.
func parseStr(k expr.Kind) func(p *Parser) (*expr.Node, error) {
	pure := k != expr.KindFPrint && k != expr.KindFPrint0 && k != expr.KindFls
	return func(p *Parser) (*expr.Node, error) {
		s, err := p.strArg(k.String())
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: k, Str: s, Pure: pure}, nil
	}
}

func parseIntCmp(k expr.Kind) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		cmp, n, err := p.intArg(k.String())
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: k, Cmp: cmp, IntVal: n, Pure: true}, nil
	}
}

func parseGlob(k expr.Kind, caseFold bool) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		s, err := p.strArg(k.String())
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: k, Str: s, CaseFold: caseFold, Pure: true}, nil
	}
}

func parsePerm(p *Parser) (*expr.Node, error) {
	tok, err := p.strArg("-perm")
	if err != nil {
		return nil, err
	}
	mode := expr.PermExact
	body := tok
	switch {
	case strings.HasPrefix(tok, "-"):
		mode, body = expr.PermAll, tok[1:]
	case strings.HasPrefix(tok, "/"):
		mode, body = expr.PermAny, tok[1:]
	}

	if n, err := strconv.ParseUint(body, 8, 32); err == nil {
		m := uint32(n) & 07777
		return &expr.Node{Kind: expr.KindPerm, PermMode: mode, FileMode: m, DirMode: m, Pure: true}, nil
	}

	clauses, err := parsePermSymbolic(body)
	if err != nil {
		return nil, err
	}
	fileMode, dirMode := resolvePermClauses(clauses)
	if mode == expr.PermExact {
		mode = expr.PermAll
	}
	return &expr.Node{Kind: expr.KindPerm, PermMode: mode, FileMode: fileMode, DirMode: dirMode, PermClauses: clauses, Pure: true}, nil
}

func parseRegex(caseFold bool) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		pat, err := p.strArg("-regex")
		if err != nil {
			return nil, err
		}
		if caseFold {
			pat = "(?i)" + pat
		}
		re, err := regexp.Compile("^(?:" + pat + ")$")
		if err != nil {
			return nil, errf(pat, "invalid regular expression: %s", err)
		}
		return &expr.Node{Kind: expr.KindRegex, Regex: re, Str: pat, Pure: true}, nil
	}
}

func parseSameFile(p *Parser) (*expr.Node, error) {
	path, err := p.strArg("-samefile")
	if err != nil {
		return nil, err
	}
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return nil, errf(path, "cannot stat reference file: %s", err)
	}
	return &expr.Node{Kind: expr.KindSameFile, Dev: uint64(st.Dev), Ino: uint64(st.Ino), Pure: true}, nil
}

func parseSizeLiteral(p *Parser) (*expr.Node, error) {
	tok, err := p.strArg("-size")
	if err != nil {
		return nil, err
	}
	cmp, n, unit, err := parseSize(tok)
	if err != nil {
		return nil, err
	}
	return &expr.Node{Kind: expr.KindSize, Cmp: cmp, IntVal: n, SizeUnit: unit, Pure: true}, nil
}

// typeMaskLetters maps -type/-xtype's letters to FileType bits (the
// %y/%Y printf directive uses the same family: bcdDpfls).
func typeMaskLetters(spec string) (uint32, error) {
	var mask uint32
	for _, part := range strings.Split(spec, ",") {
		if len(part) != 1 {
			return 0, errf(spec, "invalid -type argument")
		}
		var t bftw.FileType
		switch part[0] {
		case 'b':
			t = bftw.TypeBlockdev
		case 'c':
			t = bftw.TypeChardev
		case 'd':
			t = bftw.TypeDir
		case 'p':
			t = bftw.TypeFifo
		case 'f':
			t = bftw.TypeRegular
		case 'l':
			t = bftw.TypeSymlink
		case 's':
			t = bftw.TypeSocket
		case 'D':
			t = bftw.TypeDoor
		default:
			return 0, errf(part, "unknown -type letter")
		}
		mask |= 1 << uint(t)
	}
	return mask, nil
}

func parseType(k expr.Kind) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		tok, err := p.strArg(k.String())
		if err != nil {
			return nil, err
		}
		mask, err := typeMaskLetters(tok)
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: k, TypeMask: mask, Pure: true}, nil
	}
}

func parsePrintf(k expr.Kind) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		format, err := p.strArg("-printf")
		if err != nil {
			return nil, err
		}
		return &expr.Node{Kind: k, PrintfFormat: format}, nil
	}
}

func parseFPrintf(p *Parser) (*expr.Node, error) {
	name, err := p.strArg("-fprintf")
	if err != nil {
		return nil, err
	}
	format, err := p.strArg("-fprintf")
	if err != nil {
		return nil, err
	}
	return &expr.Node{Kind: expr.KindFPrintf, Str: name, PrintfFormat: format}, nil
}

// parseExecTemplate consumes `ARG... (; | +)`
func parseExecTemplate(confirm, chdir bool) func(p *Parser) (*expr.Node, error) {
	return func(p *Parser) (*expr.Node, error) {
		var argv []string
		plus := false
		for {
			tok, err := p.t.expect("-exec")
			if err != nil {
				return nil, errf("-exec", "missing terminating ; or +")
			}
			if tok == ";" {
				break
			}
			if tok == "+" {
				plus = true
				break
			}
			argv = append(argv, tok)
		}
		if len(argv) == 0 {
			return nil, errf("-exec", "missing command")
		}
		k := expr.KindExec
		if confirm {
			k = expr.KindOk
		}
		return &expr.Node{
			Kind: k, ExecArgv: argv, ExecPlus: plus, ExecDir: chdir, ExecAsk: confirm,
		}, nil
	}
}

// matchNewerXY recognizes the -newerXY family: X,Y each range over
// {a,c,m}; B (birth) and t (literal time) are explicitly rejected.
func matchNewerXY(tok string) func(p *Parser) (*expr.Node, error) {
	if !strings.HasPrefix(tok, "-newer") || len(tok) != len("-newerXY") {
		return nil
	}
	x, y := tok[len(tok)-2], tok[len(tok)-1]
	return func(p *Parser) (*expr.Node, error) {
		if x == 'B' || y == 'B' {
			return nil, errf(tok, "birth time is not supported")
		}
		if y == 't' {
			return nil, errf(tok, "-newerXt is not supported; use a reference file")
		}
		if !strings.ContainsRune("acm", rune(x)) || !strings.ContainsRune("acm", rune(y)) {
			return nil, errf(tok, "invalid -newerXY field")
		}
		ref, err := p.strArg(tok)
		if err != nil {
			return nil, err
		}
		var st unix.Stat_t
		if err := unix.Stat(ref, &st); err != nil {
			return nil, errf(ref, "cannot stat reference file: %s", err)
		}
		return &expr.Node{Kind: expr.KindNewerXY, Field: x, RefField: y, RefTime: statTimeField(&st, y), Pure: true}, nil
	}
}

// statTimeField extracts the a/c/m timestamp named by field from a raw
// unix.Stat_t (used by -newerXY to read its reference file's own time
// without going through bftw's lazy Stat cache).
func statTimeField(st *unix.Stat_t, field byte) time.Time {
	switch field {
	case 'a':
		return time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	case 'c':
		return time.Unix(int64(st.Ctim.Sec), int64(st.Ctim.Nsec))
	default:
		return time.Unix(int64(st.Mtim.Sec), int64(st.Mtim.Nsec))
	}
}
