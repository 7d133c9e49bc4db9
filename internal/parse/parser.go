// parser.go - recursive-descent grammar over flags/paths/tests/actions
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Grammar:
//
//	cmdline    := { flag | path | positional_option }* expression?
//	expression := clause ("," clause)*
//	clause     := term ("-o"|"-or" term)*
//	term       := factor { ("-a"|"-and")? factor }*
//	factor     := "(" expression ")" | ("!"|"-not") factor | literal
//	literal    := flag | option | test | action   (table-driven)
package parse

import (
	"strconv"

	"github.com/opencoff/bfs/internal/expr"
)

// Parser holds the mutable state threaded through one parse: the token
// cursor, the command being assembled, and the optimizer builder every
// combinator is constructed through.
type Parser struct {
	t       tokens
	cmd     *Command
	builder *expr.Builder

	actionSeen  bool
	warn        bool
	literalSeen int
	excludes    []string // -exclude patterns, sugar for `(-name P -prune) -o` prepended
	debugf      func(string, ...any)
}

// Parse parses argv (not including argv[0]) into a ready-to-run Command.
func Parse(argv []string, debugf func(string, ...any)) (*Command, error) {
	cmd := defaultCommand()
	p := &Parser{
		t:      tokens{argv: argv},
		cmd:    cmd,
		debugf: debugf,
	}
	p.builder = &expr.Builder{Level: cmd.OptLevel, Debug: debugf}

	if err := p.parsePreamble(); err != nil {
		return nil, err
	}
	if len(cmd.Roots) == 0 {
		cmd.Roots = []string{"."}
	}

	root := expr.True
	if !p.t.atEnd() {
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		root = n
	}

	if !p.actionSeen {
		root = p.builder.And(root, expr.NewLeaf(expr.KindPrint))
	}

	for i := len(p.excludes) - 1; i >= 0; i-- {
		nameNode := &expr.Node{Kind: expr.KindName, Str: p.excludes[i], Pure: true}
		clause := p.builder.And(nameNode, expr.NewLeaf(expr.KindPrune))
		root = p.builder.Or(clause, root)
	}

	// -O level may have been changed mid-parse by -O/-Ofast; re-run
	// Finalize at the level the command ended up with.
	p.builder.Level = cmd.OptLevel
	final, skip := p.builder.Finalize(root)
	cmd.Root = final
	_ = skip // surfaced to the walker driver via cmd.Root.Pure/AlwaysFalse

	return cmd, nil
}

// parsePreamble consumes the cmdline's leading {flag|path}* run: before
// the expression proper starts, the parser greedily consumes path
// tokens interleaved with global flags.
func (p *Parser) parsePreamble() error {
	for !p.t.atEnd() {
		tok := p.t.peek()
		if tok == "--" {
			p.t.next()
			continue
		}
		if isGlobalFlag(tok) {
			if err := p.parseGlobalFlag(tok); err != nil {
				return err
			}
			continue
		}
		if looksLikePath(tok) {
			p.cmd.Roots = append(p.cmd.Roots, p.t.next())
			continue
		}
		break
	}
	return nil
}

func (p *Parser) parseExpression() (*expr.Node, error) {
	left, err := p.parseClause()
	if err != nil {
		return nil, err
	}
	for p.t.peek() == "," {
		p.t.next()
		right, err := p.parseClause()
		if err != nil {
			return nil, err
		}
		left = p.builder.Comma(left, right)
	}
	return left, nil
}

func (p *Parser) parseClause() (*expr.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for isOrToken(p.t.peek()) {
		p.t.next()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = p.builder.Or(left, right)
	}
	return left, nil
}

func (p *Parser) parseTerm() (*expr.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.moreFactorsFollow() {
		if isAndToken(p.t.peek()) {
			p.t.next()
		}
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = p.builder.And(left, right)
	}
	return left, nil
}

// moreFactorsFollow decides whether the term continues: either an
// explicit -a/-and, or another factor-starting token (implicit and).
func (p *Parser) moreFactorsFollow() bool {
	tok := p.t.peek()
	if tok == "" || tok == ")" || tok == "," || isOrToken(tok) {
		return false
	}
	return true
}

func (p *Parser) parseFactor() (*expr.Node, error) {
	tok := p.t.peek()
	switch {
	case tok == "(":
		p.t.next()
		n, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.t.peek() != ")" {
			return nil, errf(tok, "expected closing )")
		}
		p.t.next()
		return n, nil
	case tok == "!" || tok == "-not":
		p.t.next()
		n, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return p.builder.Not(n), nil
	default:
		return p.parseLiteral()
	}
}

func isOrToken(tok string) bool  { return tok == "-o" || tok == "-or" }
func isAndToken(tok string) bool { return tok == "-a" || tok == "-and" }

// parseLiteral consumes one literal token: a global flag (folded to
// `true`), a test, or an action.
func (p *Parser) parseLiteral() (*expr.Node, error) {
	tok := p.t.next()
	if tok == "" {
		return nil, errf("", "expected an expression")
	}

	if isGlobalFlag(tok) {
		// An option-ish argument appearing after a non-option
		// emits a warning in warn mode.
		if p.warn && p.literalSeen > 0 {
			p.debugfOrNoop("warning: %s specified after the first test/action", tok)
		}
		if err := p.parseGlobalFlag(tok); err != nil {
			return nil, err
		}
		return expr.True, nil
	}
	p.literalSeen++

	if n := matchNewerXY(tok); n != nil {
		node, err := n(p)
		return node, err
	}

	fn, ok := literalTable[tok]
	if !ok {
		return nil, unknownLiteral(tok)
	}
	if fn.isAction {
		p.actionSeen = true
	}
	return fn.parse(p)
}

// intArg reads the next token and parses it as a comparator+integer,
// erroring with the literal name for context.
func (p *Parser) intArg(name string) (expr.Cmp, int64, error) {
	tok, err := p.t.expect(name)
	if err != nil {
		return 0, 0, err
	}
	return parseCmpInt(tok)
}

// strArg reads the next token verbatim.
func (p *Parser) strArg(name string) (string, error) {
	return p.t.expect(name)
}

func (p *Parser) debugfOrNoop(format string, args ...any) {
	if p.debugf != nil {
		p.debugf(format, args...)
	}
}

// plainIntArg parses an unsigned integer with no comparator (used by
// -maxdepth/-mindepth).
func plainIntArg(tok string) (int, error) {
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, errf(tok, "expected an integer")
	}
	return n, nil
}
