// Package fsguard validates filesystem-mutating commands (rm, chmod) and
// the project init script.
package fsguard

import (
	"fmt"
	"path"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

const parseFailure = "could not parse command"

// protectedTargets may never be removed.
var protectedTargets = map[string]bool{
	"/":   true,
	"/*":  true,
	"~":   true,
	"~/":  true,
	"~/*": true,
	".":   true,
	"..":  true,
	"./*": true,
	"*":   true,
}

// systemDirs are top-level system paths. Removing them or anything
// matched by a glob directly inside them is rejected.
var systemDirs = map[string]bool{
	"/bin": true, "/boot": true, "/dev": true, "/etc": true, "/home": true,
	"/lib": true, "/lib64": true, "/opt": true, "/proc": true, "/root": true,
	"/sbin": true, "/srv": true, "/sys": true, "/usr": true, "/var": true,
	"/System": true, "/Library": true, "/Applications": true, "/Users": true,
}

// ValidateRm rejects removals of the filesystem root, the home directory,
// the working directory or its parent, and top-level system paths.
func ValidateRm(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "rm" {
		return validate.Reject("not an rm command")
	}

	args := shellwords.ParseArgs(tokens[1:], nil)
	if args.Has("--no-preserve-root") {
		return validate.Reject("rm --no-preserve-root is not allowed")
	}
	recursive := args.Has("-r", "-R", "--recursive")

	for _, target := range args.Operands {
		if reason := rmTargetReason(target, recursive); reason != "" {
			return validate.Reject(reason)
		}
	}
	return validate.Allow()
}

func rmTargetReason(target string, recursive bool) string {
	t := strings.TrimSpace(target)
	if t == "" {
		return ""
	}
	if protectedTargets[t] {
		return fmt.Sprintf("rm of '%s' is not allowed", target)
	}
	if recursive && (strings.Contains(t, "$") || strings.Contains(t, "`")) {
		return fmt.Sprintf("recursive rm with shell expansion '%s' is not allowed", target)
	}
	if !strings.HasPrefix(t, "/") {
		return ""
	}

	clean := path.Clean(t)
	if clean == "/" || systemDirs[clean] {
		return fmt.Sprintf("rm of system path '%s' is not allowed", target)
	}
	if dir := path.Dir(clean); systemDirs[dir] && strings.ContainsAny(path.Base(clean), "*?[") {
		return fmt.Sprintf("rm of system path '%s' is not allowed", target)
	}
	return ""
}
