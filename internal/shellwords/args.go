package shellwords

import "strings"

// Option is one parsed flag occurrence.
type Option struct {
	Name     string
	Value    string
	HasValue bool
}

// Args is a command line split into options and positional operands.
// Values consumed by an option never appear as operands.
type Args struct {
	Options  []Option
	Operands []string
}

// Has reports whether any option named one of names was seen.
func (a Args) Has(names ...string) bool {
	for _, o := range a.Options {
		for _, n := range names {
			if o.Name == n {
				return true
			}
		}
	}
	return false
}

// ParseArgs splits tokens (without the command name) using getopt_long
// conventions: "--name=value", "--name value" for options in takesArg,
// short clusters such as "-sSL" and attached values such as "-XPOST".
// "--" ends option parsing and a lone "-" is an operand.
func ParseArgs(tokens []string, takesArg map[string]bool) Args {
	var a Args
	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		switch {
		case tok == "--":
			a.Operands = append(a.Operands, tokens[i+1:]...)
			return a

		case strings.HasPrefix(tok, "--"):
			if name, value, ok := strings.Cut(tok, "="); ok {
				a.Options = append(a.Options, Option{Name: name, Value: value, HasValue: true})
				continue
			}
			opt := Option{Name: tok}
			if takesArg[tok] && i+1 < len(tokens) {
				i++
				opt.Value, opt.HasValue = tokens[i], true
			}
			a.Options = append(a.Options, opt)

		case len(tok) > 1 && tok[0] == '-':
			cluster := tok[1:]
			for j := 0; j < len(cluster); j++ {
				name := "-" + string(cluster[j])
				if !takesArg[name] {
					a.Options = append(a.Options, Option{Name: name})
					continue
				}
				opt := Option{Name: name}
				if rest := cluster[j+1:]; rest != "" {
					opt.Value, opt.HasValue = rest, true
				} else if i+1 < len(tokens) {
					i++
					opt.Value, opt.HasValue = tokens[i], true
				}
				a.Options = append(a.Options, opt)
				break
			}

		default:
			a.Operands = append(a.Operands, tok)
		}
	}
	return a
}

// Set builds a lookup table from names.
func Set(names ...string) map[string]bool {
	m := make(map[string]bool, len(names))
	for _, n := range names {
		m[n] = true
	}
	return m
}

// Union merges lookup tables into a new one.
func Union(sets ...map[string]bool) map[string]bool {
	m := make(map[string]bool)
	for _, s := range sets {
		for k := range s {
			m[k] = true
		}
	}
	return m
}
