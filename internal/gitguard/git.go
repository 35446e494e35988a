// Package gitguard validates git invocations. Ordinary git use is allowed;
// what is rejected is skipping the repository's hooks and rewriting the
// commit identity or hook configuration.
package gitguard

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

const parseFailure = "could not parse command"

// globalArgFlags are git options before the subcommand that take a value.
var globalArgFlags = shellwords.Set(
	"-C", "-c", "--git-dir", "--work-tree", "--namespace", "--exec-path", "--config-env",
)

// protectedKeys may not be set by the agent, either with git config or
// with -c on the command line.
var protectedKeys = map[string]bool{
	"user.name":       true,
	"user.email":      true,
	"author.name":     true,
	"author.email":    true,
	"committer.name":  true,
	"committer.email": true,
	"core.hookspath":  true,
}

// configReadFlags make git config read rather than write.
var configReadFlags = shellwords.Set(
	"--get", "--get-all", "--get-regexp", "--get-urlmatch", "-l", "--list",
	"--show-origin", "--show-scope", "--name-only",
)

// ValidateGit rejects commits and pushes that skip hooks and any change to
// the commit identity or hooks path.
func ValidateGit(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "git" {
		return validate.Reject("not a git command")
	}

	rest := tokens[1:]
	i := 0
	for ; i < len(rest); i++ {
		tok := rest[i]
		if !strings.HasPrefix(tok, "-") {
			break
		}
		name, value, attached := strings.Cut(tok, "=")
		if !globalArgFlags[name] {
			continue
		}
		if !attached && i+1 < len(rest) {
			i++
			value = rest[i]
		}
		if name == "-c" {
			key, _, _ := strings.Cut(value, "=")
			if protectedKeys[strings.ToLower(key)] {
				return validate.Reject(fmt.Sprintf("git -c %s is not allowed", key))
			}
		}
	}
	if i >= len(rest) {
		return validate.Allow()
	}

	sub, args := rest[i], rest[i+1:]
	switch sub {
	case "commit":
		if hasNoVerify(args, true) {
			return validate.Reject("git commit --no-verify is not allowed: commit hooks must run")
		}
	case "push", "merge", "rebase", "am", "cherry-pick", "revert":
		if hasNoVerify(args, false) {
			return validate.Reject(fmt.Sprintf("git %s --no-verify is not allowed: hooks must run", sub))
		}
	case "config":
		return validateConfig(args)
	}
	return validate.Allow()
}

// hasNoVerify reports whether args skip hooks. For commit, -n is the short
// form of --no-verify.
func hasNoVerify(args []string, commit bool) bool {
	takesArg := shellwords.Set("-m", "--message", "-F", "--file", "-C", "-c", "--author", "--date", "-t", "--template")
	parsed := shellwords.ParseArgs(args, takesArg)
	if parsed.Has("--no-verify") {
		return true
	}
	return commit && parsed.Has("-n")
}

// configWriteFlags change a key even with a single operand.
var configWriteFlags = shellwords.Set("--unset", "--unset-all", "--add", "--replace-all", "--rename-section", "--remove-section")

func validateConfig(args []string) validate.Result {
	parsed := shellwords.ParseArgs(args, shellwords.Set("-f", "--file", "--blob", "--type", "--default"))
	write := false
	for _, o := range parsed.Options {
		if configReadFlags[o.Name] {
			return validate.Allow()
		}
		if configWriteFlags[o.Name] {
			write = true
		}
	}

	ops := parsed.Operands
	// Newer git spells the action as a subcommand: git config set KEY VALUE.
	if len(ops) > 0 {
		switch ops[0] {
		case "get", "list":
			return validate.Allow()
		case "set", "unset":
			ops, write = ops[1:], true
		}
	}
	if len(ops) == 0 || (len(ops) < 2 && !write) {
		return validate.Allow()
	}
	if protectedKeys[strings.ToLower(ops[0])] {
		return validate.Reject(fmt.Sprintf("git config %s is not allowed", ops[0]))
	}
	return validate.Allow()
}
