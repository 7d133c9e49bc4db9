// globalflags.go - options that configure the Command rather than the AST
//
// (c) 2024- the bfs authors
//
// Licensing Terms: GPLv2
//
// Grounded on parse.c's option table, plus this project's supplemented
// flags.
package parse

import (
	"strings"

	"github.com/opencoff/bfs/internal/bftw"
)

var globalFlagNames = map[string]bool{
	"-P": true, "-H": true, "-L": true,
	"-E": true, "-X": true,
	"-O": true, "-Ofast": true,
	"-D": true,
	"-f": true,
	"-maxdepth": true, "-mindepth": true,
	"-xdev": true, "-ignore_readdir_race": true,
	"-daystart": true, "-noleaf": true,
	"-color": true, "-nocolor": true,
	"-regextype": true,
	"-follow":    true,
	"-warn":      true, "-nowarn": true,
	"-quiet":   true,
	"-exclude": true,
}

func isGlobalFlag(tok string) bool { return globalFlagNames[tok] }

// parseGlobalFlag consumes tok (and any arguments it takes) and applies
// its effect to p.cmd / p.builder / p.warn.
func (p *Parser) parseGlobalFlag(tok string) error {
	switch tok {
	case "-P":
		p.cmd.Follow = bftw.FollowNone
	case "-H":
		p.cmd.Follow = bftw.FollowRoots
	case "-L":
		p.cmd.Follow = bftw.FollowAll
	case "-follow":
		// historic synonym for -L, meaningful only before any tests
		// are seen.
		p.cmd.Follow = bftw.FollowAll
	case "-E":
		p.cmd.ExtendedRegex = true
	case "-X":
		p.cmd.XargsSafe = true
	case "-xdev":
		p.cmd.XDev = true
	case "-ignore_readdir_race":
		p.cmd.IgnoreRaces = true
	case "-daystart":
		p.cmd.DayStart = true
	case "-noleaf":
		p.cmd.NoLeaf = true
	case "-color":
		p.cmd.ColorForce = true
	case "-nocolor":
		p.cmd.ColorNever = true
	case "-warn":
		p.warn = true
	case "-nowarn":
		p.warn = false
	case "-quiet":
		// accepted, no effect: quiet output is the caller's concern,
		// not the expression engine's.
	case "-exclude":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		p.excludes = append(p.excludes, arg)
	case "-O":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		n, err := plainIntArg(arg)
		if err != nil {
			return err
		}
		p.cmd.OptLevel = n
		p.builder.Level = n
	case "-Ofast":
		p.cmd.OptLevel = 4
		p.builder.Level = 4
	case "-D":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		return p.applyDebugFlags(arg)
	case "-f":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		p.cmd.Roots = append(p.cmd.Roots, arg)
	case "-maxdepth":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		n, err := plainIntArg(arg)
		if err != nil {
			return err
		}
		p.cmd.MaxDepth = n
	case "-mindepth":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		n, err := plainIntArg(arg)
		if err != nil {
			return err
		}
		p.cmd.MinDepth = n
	case "-regextype":
		arg, err := p.t.expect(tok)
		if err != nil {
			return err
		}
		if arg == "help" {
			return errf("", "supported regex types: posix-basic, posix-extended")
		}
		if arg != "posix-basic" && arg != "posix-extended" {
			return errf(arg, "unsupported -regextype")
		}
	}
	return nil
}

func (p *Parser) applyDebugFlags(spec string) error {
	for _, name := range strings.Split(spec, ",") {
		switch name {
		case "opt":
			p.cmd.Debug.Opt = true
		case "rates":
			p.cmd.Debug.Rates = true
		case "search":
			p.cmd.Debug.Search = true
		case "tree":
			p.cmd.Debug.Tree = true
		case "stat":
			p.cmd.Debug.Stat = true
		case "exec":
			p.cmd.Debug.Exec = true
		case "all":
			p.cmd.Debug = DebugFlags{true, true, true, true, true, true}
		case "help":
			return errf("", "debug flags: opt, rates, search, tree, stat, exec, all")
		default:
			return errf(name, "unknown -D flag")
		}
	}
	if p.cmd.Debug.Opt {
		p.builder.Debug = p.debugf
	}
	return nil
}
