// Package dbguard validates database client commands. Connecting and
// querying are allowed; dropping databases or users, wiping data and
// shutting servers down are not, except that development and test
// databases may be dropped.
package dbguard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

const parseFailure = "could not parse command"

// devDatabase matches names that mark a database or role as disposable,
// e.g. myapp_test, dev_db, tmp-42.
var devDatabase = regexp.MustCompile(`(?i)(^|[_.-])(test|tests|testing|dev|development|local|tmp|temp|scratch|sandbox|ci)([_.-]|[0-9]*$)`)

// destructiveSQL matches statements that remove databases, schemas, tables
// or roles, or that empty a table.
var destructiveSQL = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bDROP\s+(DATABASE|SCHEMA|TABLE|USER|ROLE|OWNED)\b`),
	regexp.MustCompile(`(?i)\bTRUNCATE\b`),
	// DELETE with no WHERE clause before the end of the statement.
	regexp.MustCompile(`(?i)\bDELETE\s+FROM\s+[^\s;]+\s*(;|$)`),
}

// parse tokenizes command and checks that its first word is one of names.
func parse(command string, names ...string) ([]string, validate.Result, bool) {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return nil, validate.Reject(parseFailure), false
	}
	if len(tokens) > 0 {
		base := policy.BaseName(tokens[0])
		for _, n := range names {
			if base == n {
				return tokens, validate.Result{}, true
			}
		}
	}
	return nil, validate.Reject(fmt.Sprintf("not a %s command", names[0])), false
}

// checkSQL rejects destructive statements in sql. tool names the client in
// the rejection.
func checkSQL(tool, sql string) validate.Result {
	for _, re := range destructiveSQL {
		if m := re.FindString(sql); m != "" {
			stmt := strings.ToUpper(strings.Join(strings.Fields(strings.TrimRight(m, ";")), " "))
			return validate.Reject(fmt.Sprintf("%s with '%s' is not allowed (destructive statement)", tool, stmt))
		}
	}
	return validate.Allow()
}

func validateDrop(tool, kind string, tokens []string, takesArg map[string]bool) validate.Result {
	args := shellwords.ParseArgs(tokens[1:], takesArg)
	if len(args.Operands) == 0 {
		return validate.Reject(fmt.Sprintf("%s needs an explicit %s name", tool, kind))
	}
	for _, name := range args.Operands {
		if !devDatabase.MatchString(name) {
			return validate.Reject(fmt.Sprintf(
				"%s '%s' is not allowed: only development or test %ss may be dropped", tool, name, kind))
		}
	}
	return validate.Allow()
}
