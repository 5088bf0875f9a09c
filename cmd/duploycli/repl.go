package main

import (
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dscorbett/duployan-go"
	"github.com/dscorbett/duployan-go/layout"
	"github.com/pterm/pterm"
)

// Intp is the interpreter object, analogous to otcli's Intp but browsing
// a compiled duployan.Result rather than navigating a parsed binary font.
type Intp struct {
	result *duployan.Result
	repl   *readline.Instance
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		quit := intp.execute(fields[0], fields[1:])
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(cmd string, args []string) (quit bool) {
	switch strings.ToLower(cmd) {
	case "quit", "exit":
		return true
	case "help":
		printHelp()
	case "schemas":
		intp.listSchemas()
	case "lookups":
		intp.listLookups()
	case "lookup":
		intp.dumpLookup(args)
	case "anchors":
		intp.printAnchors(args)
	default:
		pterm.Error.Printfln("unknown command %q; try 'help'", cmd)
	}
	return false
}

func printHelp() {
	pterm.Info.Println("commands:")
	pterm.Println(`
  schemas            list every canonical schema's glyph name and code points
  lookups            list every lookup's index, feature/script/language, and rule count
  lookup <index>     dump the rules of lookup <index>
  anchors <glyph>    print the recorded anchor points of a canonical glyph
  quit               leave the REPL
`)
}

func (intp *Intp) listSchemas() {
	names := make([]string, 0, len(intp.result.Canonical))
	byName := make(map[string]string)
	for _, s := range intp.result.Canonical {
		name := s.GlyphName()
		names = append(names, name)
		byName[name] = runesToString(s.CodePoints)
	}
	sort.Strings(names)
	for _, name := range names {
		pterm.Printfln("%-32s %s", name, byName[name])
	}
}

func (intp *Intp) listLookups() {
	for i, l := range intp.result.Lookups {
		pterm.Printfln("%3d  feature=%-6s script=%-6s language=%-6s rules=%d", i, l.Feature, l.Script, l.Language, len(l.Rules))
	}
}

func (intp *Intp) dumpLookup(args []string) {
	if len(args) != 1 {
		pterm.Error.Println("usage: lookup <index>")
		return
	}
	i, err := strconv.Atoi(args[0])
	if err != nil || i < 0 || i >= len(intp.result.Lookups) {
		pterm.Error.Printfln("no such lookup %q", args[0])
		return
	}
	l := intp.result.Lookups[i]
	pterm.Printfln("lookup %d: feature=%s script=%s language=%s", i, l.Feature, l.Script, l.Language)
	for j, r := range l.Rules {
		pterm.Printfln("  rule %3d: %s -> %s", j, formatMembers(r.Input), formatMembers(r.Output))
	}
}

func formatMembers(members []layout.Member) string {
	parts := make([]string, len(members))
	for i, m := range members {
		if m.IsClass() {
			parts[i] = "@" + m.ClassName
		} else {
			parts[i] = m.Glyph.GlyphName()
		}
	}
	return strings.Join(parts, " ")
}

func (intp *Intp) printAnchors(args []string) {
	if len(args) != 1 {
		pterm.Error.Println("usage: anchors <glyph-name>")
		return
	}
	for _, g := range intp.result.Glyphs {
		if g.Schema.GlyphName() != args[0] {
			continue
		}
		if len(g.Glyph.Anchors) == 0 {
			pterm.Println("(no anchor points)")
			return
		}
		for _, a := range g.Glyph.Anchors {
			pterm.Printfln("%-20s kind=%-8v x=%.1f y=%.1f", a.Name, a.Kind, a.X, a.Y)
		}
		return
	}
	pterm.Error.Printfln("no canonical glyph named %q", args[0])
}

func runesToString(rs []rune) string {
	if len(rs) == 0 {
		return "(marker)"
	}
	return string(rs)
}
