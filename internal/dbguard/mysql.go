package dbguard

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

var mysqlArgFlags = shellwords.Set(
	"-h", "--host", "-P", "--port", "-u", "--user", "-D", "--database",
	"-e", "--execute", "-S", "--socket",
)

// mysqladminBlocked are mysqladmin commands that remove data, stop the
// server or change credentials.
var mysqladminBlocked = map[string]bool{
	"drop": true, "shutdown": true, "password": true, "old-password": true,
}

// ValidateMysql rejects destructive statements passed with -e. It serves
// both mysql and mariadb.
func ValidateMysql(command string) validate.Result {
	tokens, res, ok := parse(command, "mysql", "mariadb")
	if !ok {
		return res
	}
	tool := policy.BaseName(tokens[0])
	args := shellwords.ParseArgs(tokens[1:], mysqlArgFlags)
	for _, o := range args.Options {
		if o.Name == "-e" || o.Name == "--execute" {
			if r := checkSQL(tool, o.Value); !r.OK {
				return r
			}
		}
	}
	return validate.Allow()
}

// ValidateMysqladmin rejects drop, shutdown and password changes.
func ValidateMysqladmin(command string) validate.Result {
	tokens, res, ok := parse(command, "mysqladmin")
	if !ok {
		return res
	}
	args := shellwords.ParseArgs(tokens[1:], mysqlArgFlags)
	for _, op := range args.Operands {
		if mysqladminBlocked[strings.ToLower(op)] {
			return validate.Reject(fmt.Sprintf("mysqladmin %s is not allowed", strings.ToLower(op)))
		}
	}
	return validate.Allow()
}
