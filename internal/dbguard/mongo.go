package dbguard

import (
	"fmt"
	"regexp"

	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

// -p is left out: without a value it prompts, and must not swallow --eval.
var mongoArgFlags = shellwords.Set(
	"--eval", "--host", "--port", "-u", "--username",
	"--authenticationDatabase", "-f", "--file",
)

// destructiveMongo matches shell calls that drop data or users, empty a
// collection or stop the server.
var destructiveMongo = regexp.MustCompile(
	`\.(dropDatabase|dropUser|dropAllUsers|dropRole|dropAllRoles|shutdownServer)\s*\(` +
		`|\.drop\s*\(\s*\)` +
		`|\.(deleteMany|remove)\s*\(\s*\{\s*\}\s*\)`)

// ValidateMongosh rejects destructive --eval scripts. It serves both
// mongosh and the legacy mongo shell.
func ValidateMongosh(command string) validate.Result {
	tokens, res, ok := parse(command, "mongosh", "mongo")
	if !ok {
		return res
	}
	args := shellwords.ParseArgs(tokens[1:], mongoArgFlags)
	for _, o := range args.Options {
		if o.Name != "--eval" {
			continue
		}
		if m := destructiveMongo.FindString(o.Value); m != "" {
			return validate.Reject(fmt.Sprintf("mongosh --eval with '%s' is not allowed (destructive operation)", m))
		}
	}
	return validate.Allow()
}
