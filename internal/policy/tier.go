package policy

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ppiankov/cmdgate/internal/mode"
)

// Tier is the static classification of a command name.
type Tier int

// Command tiers. Every known command carries exactly one.
const (
	TierSafe      Tier = iota // same behaviour in every mode
	TierDangerous             // shell spawning or arbitrary execution, removed in strict mode
	TierNetwork               // transfer tools, validated in strict mode
)

// TierLabel returns a human-readable label for the tier.
func TierLabel(t Tier) string {
	switch t {
	case TierSafe:
		return "safe"
	case TierDangerous:
		return "dangerous"
	case TierNetwork:
		return "network"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

func (t Tier) String() string {
	return TierLabel(t)
}

// commandTiers is the single source of truth for tier membership.
var commandTiers = map[string]Tier{
	// Core shell (read/navigate)
	"echo": TierSafe, "printf": TierSafe, "cat": TierSafe, "head": TierSafe,
	"tail": TierSafe, "less": TierSafe, "more": TierSafe, "ls": TierSafe,
	"pwd": TierSafe, "cd": TierSafe, "pushd": TierSafe, "popd": TierSafe,
	"cp": TierSafe, "mv": TierSafe, "mkdir": TierSafe, "rmdir": TierSafe,
	"touch": TierSafe, "ln": TierSafe, "find": TierSafe, "fd": TierSafe,
	"grep": TierSafe, "egrep": TierSafe, "fgrep": TierSafe, "rg": TierSafe,
	"ag": TierSafe, "sort": TierSafe, "uniq": TierSafe, "cut": TierSafe,
	"tr": TierSafe, "sed": TierSafe, "awk": TierSafe, "gawk": TierSafe,
	"wc": TierSafe, "diff": TierSafe, "cmp": TierSafe, "comm": TierSafe,
	"tee": TierSafe, "xargs": TierSafe, "read": TierSafe, "file": TierSafe,
	"stat": TierSafe, "tree": TierSafe, "du": TierSafe, "df": TierSafe,
	"which": TierSafe, "whereis": TierSafe, "type": TierSafe, "command": TierSafe,
	"date": TierSafe, "time": TierSafe, "sleep": TierSafe, "timeout": TierSafe,
	"watch": TierSafe, "true": TierSafe, "false": TierSafe, "test": TierSafe,
	"[": TierSafe, "[[": TierSafe, "env": TierSafe, "printenv": TierSafe,
	"export": TierSafe, "unset": TierSafe, "set": TierSafe, "source": TierSafe,
	".": TierSafe, "exit": TierSafe, "return": TierSafe, "break": TierSafe,
	"continue": TierSafe,

	// Archives
	"tar": TierSafe, "zip": TierSafe, "unzip": TierSafe, "gzip": TierSafe, "gunzip": TierSafe,

	// Read-only network diagnostics
	"ping": TierSafe, "host": TierSafe, "dig": TierSafe,

	// Version control
	"git": TierSafe, "gh": TierSafe,

	// Process management (validated)
	"ps": TierSafe, "pgrep": TierSafe, "lsof": TierSafe, "jobs": TierSafe,
	"kill": TierSafe, "pkill": TierSafe, "killall": TierSafe,

	// File mutation (validated)
	"rm": TierSafe, "chmod": TierSafe,

	// Text tools
	"paste": TierSafe, "join": TierSafe, "split": TierSafe, "fold": TierSafe,
	"fmt": TierSafe, "nl": TierSafe, "rev": TierSafe, "shuf": TierSafe,
	"column": TierSafe, "expand": TierSafe, "unexpand": TierSafe, "iconv": TierSafe,

	// Misc
	"clear": TierSafe, "reset": TierSafe, "man": TierSafe, "help": TierSafe,
	"uname": TierSafe, "whoami": TierSafe, "id": TierSafe, "basename": TierSafe,
	"dirname": TierSafe, "realpath": TierSafe, "readlink": TierSafe, "mktemp": TierSafe,
	"bc": TierSafe, "expr": TierSafe, "let": TierSafe, "seq": TierSafe,
	"yes": TierSafe, "jq": TierSafe, "yq": TierSafe,

	// A spawned interpreter bypasses every later per-command check.
	"eval": TierDangerous,
	"exec": TierDangerous,
	"sh":   TierDangerous,
	"bash": TierDangerous,
	"zsh":  TierDangerous,

	"curl": TierNetwork,
	"wget": TierNetwork,
}

// TierOf returns the tier assigned to name.
func TierOf(name string) (Tier, bool) {
	t, ok := commandTiers[name]
	return t, ok
}

// tierAllowed reports whether commands of tier t may run in mode m.
func tierAllowed(t Tier, m mode.Mode) bool {
	switch t {
	case TierSafe, TierNetwork:
		return true
	case TierDangerous:
		return !m.IsStrict()
	default:
		return false
	}
}

// IsPermitted reports whether the base command name may run in mode m.
func IsPermitted(name string, m mode.Mode) bool {
	t, ok := commandTiers[name]
	if !ok {
		return false
	}
	return tierAllowed(t, m)
}

// AllowedCommands returns the set of base command names permitted in mode m.
// The returned map is a fresh copy owned by the caller.
func AllowedCommands(m mode.Mode) map[string]struct{} {
	out := make(map[string]struct{}, len(commandTiers))
	for name, t := range commandTiers {
		if tierAllowed(t, m) {
			out[name] = struct{}{}
		}
	}
	return out
}

// CommandsInTier returns the sorted command names assigned to t.
func CommandsInTier(t Tier) []string {
	var out []string
	for name, ct := range commandTiers {
		if ct == t {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// BaseName returns the command name used for classification: the final
// path element of the first token, so /usr/bin/curl classifies as curl.
func BaseName(token string) string {
	if token == "" {
		return ""
	}
	if strings.Contains(token, "/") {
		return path.Base(token)
	}
	return token
}
