// Package shellwords tokenizes a shell command line the way a POSIX shell
// would split it into argv, without performing any expansion.
//
// Split returns the first simple command, which is what a validator
// inspects. Commands returns every simple command in a line, which is what
// a gate must check before handing the line to a shell.
package shellwords

import (
	"errors"
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// ErrUnsupported is returned for command forms that have no single leading
// simple command.
var ErrUnsupported = errors.New("unsupported command form")

// Split returns the argv words of the first simple command in line.
// Quoting is removed; parameter expansions and substitutions are kept as
// their source text. Unbalanced quotes and other syntax errors return an
// error.
func Split(line string) ([]string, error) {
	file, err := parse(line)
	if err != nil {
		return nil, err
	}
	if len(file.Stmts) == 0 {
		return nil, nil
	}

	call, err := firstCall(file.Stmts[0])
	if err != nil {
		return nil, err
	}
	if call == nil {
		return nil, nil
	}

	w := &wordWriter{}
	words := make([]string, 0, len(call.Args))
	for _, arg := range call.Args {
		words = append(words, w.word(arg))
	}
	return words, nil
}

func parse(line string) (*syntax.File, error) {
	parser := syntax.NewParser(syntax.KeepComments(false), syntax.Variant(syntax.LangBash))
	return parser.Parse(strings.NewReader(line), "")
}

func firstCall(stmt *syntax.Stmt) (*syntax.CallExpr, error) {
	for stmt != nil {
		switch cmd := stmt.Cmd.(type) {
		case nil:
			return nil, nil
		case *syntax.CallExpr:
			return cmd, nil
		case *syntax.BinaryCmd:
			stmt = cmd.X
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupported, cmd)
		}
	}
	return nil, nil
}

type wordWriter struct {
	printer *syntax.Printer
}

func (w *wordWriter) word(word *syntax.Word) string {
	var b strings.Builder
	for _, part := range word.Parts {
		w.part(&b, part, false)
	}
	return b.String()
}

func (w *wordWriter) part(b *strings.Builder, part syntax.WordPart, quoted bool) {
	switch p := part.(type) {
	case *syntax.Lit:
		b.WriteString(unescape(p.Value, quoted))
	case *syntax.SglQuoted:
		b.WriteString(p.Value)
	case *syntax.DblQuoted:
		for _, inner := range p.Parts {
			w.part(b, inner, true)
		}
	default:
		if w.printer == nil {
			w.printer = syntax.NewPrinter()
		}
		var src strings.Builder
		if err := w.printer.Print(&src, part); err == nil {
			b.WriteString(src.String())
		}
	}
}

// unescape removes backslash escaping from a literal. Inside double quotes
// a backslash only escapes $, `, ", \ and newline.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			continue
		}
		next := s[i+1]
		switch {
		case next == '\n':
			i++
		case !quoted:
			b.WriteByte(next)
			i++
		case next == '$' || next == '`' || next == '"' || next == '\\':
			b.WriteByte(next)
			i++
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
