package shellwords

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Command is one simple command found in a line.
type Command struct {
	Args []string // argv with quoting removed
	Text string   // the command re-printed as shell source
}

// Name returns the first word, or "" for a command with no words.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return c.Args[0]
}

// Commands returns every simple command in line in source order, including
// those inside pipelines, lists, subshells, control structures, function
// bodies and command or process substitutions. Declaration builtins such
// as export and local are reported with their keyword as the only arg.
func Commands(line string) ([]Command, error) {
	file, err := parse(line)
	if err != nil {
		return nil, err
	}

	w := &wordWriter{}
	printer := syntax.NewPrinter(syntax.SingleLine(true))
	source := func(n syntax.Node) string {
		var b strings.Builder
		if err := printer.Print(&b, n); err != nil {
			return ""
		}
		return strings.TrimSpace(b.String())
	}

	var cmds []Command
	syntax.Walk(file, func(node syntax.Node) bool {
		switch n := node.(type) {
		case *syntax.CallExpr:
			if len(n.Args) == 0 {
				return true
			}
			args := make([]string, 0, len(n.Args))
			for _, a := range n.Args {
				args = append(args, w.word(a))
			}
			cmds = append(cmds, Command{Args: args, Text: source(n)})
		case *syntax.DeclClause:
			cmds = append(cmds, Command{Args: []string{n.Variant.Value}, Text: source(n)})
		}
		return true
	})
	return cmds, nil
}
