package shellwords

import (
	"fmt"
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// Join quotes each argument where needed and joins them into one command
// line that Split turns back into args.
func Join(args []string) (string, error) {
	quoted := make([]string, 0, len(args))
	for _, a := range args {
		q, err := syntax.Quote(a, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("quote %q: %w", a, err)
		}
		quoted = append(quoted, q)
	}
	return strings.Join(quoted, " "), nil
}
