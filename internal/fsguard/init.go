package fsguard

import (
	"path"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// ValidateInitScript allows a project's init.sh to run only from inside
// the project: the script path must be relative and may not climb out of
// the working directory.
func ValidateInitScript(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "init.sh" {
		return validate.Reject("not an init.sh command")
	}

	script := tokens[0]
	clean := path.Clean(script)
	if path.IsAbs(clean) || strings.HasPrefix(script, "~") {
		return validate.Reject("init.sh must be run from the project directory, not '" + script + "'")
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return validate.Reject("init.sh outside the project directory is not allowed: '" + script + "'")
	}
	return validate.Allow()
}
