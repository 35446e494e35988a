package shellwords

import (
	"path"
	"strings"
)

// Wrapped is a command line that another command runs on its behalf.
type Wrapped struct {
	Line string
	// HiddenArgs is set when the wrapper adds words to Line at run time:
	// xargs appends words read from stdin, find and fd substitute the
	// paths they find. Those words are not in Line.
	HiddenArgs bool
}

// wrapper describes a command that runs another command given in its
// arguments. valueFlags lists options that consume the following word.
type wrapper struct {
	valueFlags map[string]bool
	// positional is the number of non-option words before the wrapped
	// command (timeout's DURATION).
	positional int
	// script marks wrappers that join their arguments and hand them to a
	// shell, so the wrapped words are re-parsed as a command line.
	script     bool
	hiddenArgs bool
}

var wrappers = map[string]wrapper{
	"env":     {valueFlags: set("-u", "--unset", "-C", "--chdir")},
	"nohup":   {},
	"nice":    {valueFlags: set("-n", "--adjustment")},
	"time":    {valueFlags: set("-f", "--format", "-o", "--output")},
	"command": {},
	"timeout": {valueFlags: set("-s", "--signal", "-k", "--kill-after"), positional: 1},
	"xargs": {valueFlags: set("-I", "-L", "-n", "-P", "-d", "-E", "-s", "-a",
		"--max-lines", "--max-args", "--max-procs", "--delimiter", "--eof", "--max-chars", "--arg-file", "--replace"),
		hiddenArgs: true},
	"watch": {valueFlags: set("-n", "--interval", "-q", "--equexit"), script: true},
}

// execActions start a command inside find or fd. The command runs up to a
// terminating ";" or "+", or to the end of the line.
var execActions = map[string]map[string]bool{
	"find": set("-exec", "-execdir", "-ok", "-okdir"),
	"fd":   set("-x", "--exec", "-X", "--exec-batch"),
}

func set(flags ...string) map[string]bool {
	m := make(map[string]bool, len(flags))
	for _, f := range flags {
		m[f] = true
	}
	return m
}

// Unwrap returns the command lines c runs on its behalf: the command given
// to a wrapper such as env, xargs, timeout or watch, or each -exec action
// of find. It returns nothing when c runs no other command.
// `command -v` and `command -V` only look a name up.
func Unwrap(c Command) ([]Wrapped, error) {
	name := path.Base(c.Name())
	if actions, ok := execActions[name]; ok {
		return unwrapExec(c.Args[1:], actions)
	}
	w, ok := wrappers[name]
	if !ok {
		return nil, nil
	}

	args := c.Args[1:]
	positional := w.positional
	i := 0
	for ; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			i++
			break
		}
		if name == "env" {
			if !strings.HasPrefix(a, "-") && strings.Contains(a, "=") {
				continue
			}
			if script, next, ok := splitString(args, i); ok {
				return envSplitString(script, args[next:])
			}
		}
		if strings.HasPrefix(a, "-") && len(a) > 1 {
			if name == "command" && (a == "-v" || a == "-V") {
				return nil, nil
			}
			if w.valueFlags[a] {
				i++
			}
			continue
		}
		if positional > 0 {
			positional--
			continue
		}
		break
	}
	// Positional words may also follow "--".
	for ; positional > 0 && i < len(args); positional-- {
		i++
	}
	if i >= len(args) {
		return nil, nil
	}

	inner := args[i:]
	if w.script {
		return []Wrapped{{Line: strings.Join(inner, " ")}}, nil
	}
	line, err := Join(inner)
	if err != nil {
		return nil, err
	}
	return []Wrapped{{Line: line, HiddenArgs: w.hiddenArgs}}, nil
}

// splitString recognises env's -S STRING, -SSTRING, clustered -iS STRING
// and --split-string[=]STRING forms at args[i]. It returns the string and
// the index after it.
func splitString(args []string, i int) (string, int, bool) {
	a := args[i]
	switch {
	case a == "--split-string":
		return nextArg(args, i)
	case strings.HasPrefix(a, "--split-string="):
		return strings.TrimPrefix(a, "--split-string="), i + 1, true
	case strings.HasPrefix(a, "--") || !strings.HasPrefix(a, "-"):
		return "", i, false
	}
	for k := 1; k < len(a); k++ {
		switch a[k] {
		case 'u', 'C':
			// The rest of the cluster is this option's value.
			return "", i, false
		case 'S':
			if k+1 < len(a) {
				return a[k+1:], i + 1, true
			}
			return nextArg(args, i)
		}
	}
	return "", i, false
}

func nextArg(args []string, i int) (string, int, bool) {
	if i+1 >= len(args) {
		return "", i + 1, true
	}
	return args[i+1], i + 2, true
}

// envSplitString builds the line env -S runs: the split string followed by
// the remaining arguments.
func envSplitString(script string, rest []string) ([]Wrapped, error) {
	line := script
	if len(rest) > 0 {
		tail, err := Join(rest)
		if err != nil {
			return nil, err
		}
		line = strings.TrimSpace(line + " " + tail)
	}
	if line == "" {
		return nil, nil
	}
	return []Wrapped{{Line: line}}, nil
}

func unwrapExec(args []string, actions map[string]bool) ([]Wrapped, error) {
	var out []Wrapped
	for i := 0; i < len(args); i++ {
		if !actions[args[i]] {
			continue
		}
		j := i + 1
		for j < len(args) && args[j] != ";" && args[j] != "+" {
			j++
		}
		if j > i+1 {
			line, err := Join(args[i+1 : j])
			if err != nil {
				return nil, err
			}
			out = append(out, Wrapped{Line: line, HiddenArgs: true})
		}
		i = j
	}
	return out, nil
}
