package dbguard

import (
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// pgConnFlags are the libpq connection options shared by the Postgres
// client tools.
var pgConnFlags = shellwords.Set(
	"-h", "--host", "-p", "--port", "-U", "--username", "--maintenance-db",
)

var psqlArgFlags = shellwords.Union(pgConnFlags, shellwords.Set(
	"-c", "--command", "-d", "--dbname", "-f", "--file", "-o", "--output",
	"-v", "--set", "--variable", "-P", "--pset", "-F", "--field-separator",
	"-R", "--record-separator", "-T", "--table-attr", "-L", "--log-file",
))

// ValidateDropdb allows dropping development and test databases only.
func ValidateDropdb(command string) validate.Result {
	tokens, res, ok := parse(command, "dropdb")
	if !ok {
		return res
	}
	return validateDrop("dropdb", "database", tokens, pgConnFlags)
}

// ValidateDropuser allows dropping development and test roles only.
func ValidateDropuser(command string) validate.Result {
	tokens, res, ok := parse(command, "dropuser")
	if !ok {
		return res
	}
	return validateDrop("dropuser", "user", tokens, pgConnFlags)
}

// ValidatePsql rejects destructive statements passed with -c. Scripts read
// from files or stdin are not inspected.
func ValidatePsql(command string) validate.Result {
	tokens, res, ok := parse(command, "psql")
	if !ok {
		return res
	}
	args := shellwords.ParseArgs(tokens[1:], psqlArgFlags)
	for _, o := range args.Options {
		if o.Name == "-c" || o.Name == "--command" {
			if r := checkSQL("psql", o.Value); !r.OK {
				return r
			}
		}
	}
	return validate.Allow()
}
