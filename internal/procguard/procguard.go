// Package procguard validates process-signalling commands so an agent can
// stop the development servers it started without touching anything else
// on the machine.
package procguard

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
)

const parseFailure = "could not parse command"

// DevProcesses are the process names pkill and killall may target.
var DevProcesses = map[string]bool{
	"node": true, "npm": true, "npx": true, "yarn": true, "pnpm": true,
	"bun": true, "deno": true, "tsc": true, "tsx": true, "vite": true,
	"next": true, "webpack": true, "esbuild": true, "nodemon": true,
	"jest": true, "vitest": true,
	"python": true, "python3": true, "uvicorn": true, "gunicorn": true,
	"flask": true, "celery": true, "pytest": true,
	"go": true, "cargo": true, "ruby": true, "rails": true, "puma": true,
	"java": true, "gradle": true, "mvn": true, "php": true, "dotnet": true,
	"http-server": true, "serve": true,
}

// signalToken matches "-9", "-KILL", "-SIGTERM".
var signalToken = regexp.MustCompile(`^-([0-9]+|[A-Z][A-Z0-9+-]+)$`)

// pkillBroad and killallBroad select processes by owner, group, session,
// terminal, parent or regular expression rather than by exact name.
var (
	pkillBroad = shellwords.Set(
		"-u", "-U", "-g", "-G", "-P", "-s", "-t", "-F",
		"--euid", "--uid", "--group", "--pgroup", "--parent",
		"--session", "--terminal", "--pidfile",
	)
	killallBroad = shellwords.Set("-u", "--user", "-r", "--regexp")
)

var (
	pkillArgs   = shellwords.Union(pkillBroad, shellwords.Set("--signal", "--ns", "--nslist"))
	killallArgs = shellwords.Union(killallBroad, shellwords.Set(
		"-s", "--signal", "-o", "--older-than", "-y", "--younger-than",
	))
)

// ValidateKill allows signalling explicit positive PIDs only. Process
// groups (0, -1 and other negative PIDs) and job specs are rejected.
func ValidateKill(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "kill" {
		return validate.Reject("not a kill command")
	}

	args := tokens[1:]
	if len(args) > 0 && (args[0] == "-l" || args[0] == "-L") {
		return validate.Allow()
	}

	i := 0
	switch {
	case len(args) > 1 && (args[0] == "-s" || args[0] == "-n"):
		i = 2
	case len(args) > 1 && strings.HasPrefix(args[0], "-") && args[0] != "--":
		// The first dash token is a signal when more arguments follow,
		// so "kill -9 -1" targets PID -1.
		i = 1
	case len(args) == 1 && strings.HasPrefix(args[0], "-") && !isNegativeInt(args[0]):
		i = 1
	}
	if i < len(args) && args[i] == "--" {
		i++
	}

	pids := args[min(i, len(args)):]
	if len(pids) == 0 {
		return validate.Reject("kill requires at least one PID")
	}
	for _, p := range pids {
		n, err := strconv.Atoi(p)
		if err != nil {
			return validate.Reject(fmt.Sprintf("kill target '%s' is not a numeric PID", p))
		}
		if n <= 0 {
			return validate.Reject(fmt.Sprintf("kill of process group '%s' is not allowed", p))
		}
	}
	return validate.Allow()
}

// ValidatePkill allows pkill against a single development process name.
func ValidatePkill(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "pkill" {
		return validate.Reject("not a pkill command")
	}

	args := shellwords.ParseArgs(stripSignals(tokens[1:]), pkillArgs)
	if reason := broadReason("pkill", args, pkillBroad); reason != "" {
		return validate.Reject(reason)
	}
	if len(args.Operands) != 1 {
		return validate.Reject("pkill requires exactly one process name")
	}

	name := args.Operands[0]
	if args.Has("-f", "--full") {
		fields := strings.Fields(name)
		if len(fields) == 0 {
			return validate.Reject("pkill -f pattern is empty")
		}
		name = policy.BaseName(fields[0])
	}
	if !DevProcesses[name] {
		return validate.Reject(fmt.Sprintf("pkill of '%s' is not allowed, only development processes", name))
	}
	return validate.Allow()
}

// ValidateKillall allows killall against development process names only.
func ValidateKillall(command string) validate.Result {
	tokens, err := shellwords.Split(command)
	if err != nil {
		return validate.Reject(parseFailure)
	}
	if len(tokens) == 0 || policy.BaseName(tokens[0]) != "killall" {
		return validate.Reject("not a killall command")
	}

	args := shellwords.ParseArgs(stripSignals(tokens[1:]), killallArgs)
	if reason := broadReason("killall", args, killallBroad); reason != "" {
		return validate.Reject(reason)
	}
	if len(args.Operands) == 0 {
		return validate.Reject("killall requires a process name")
	}
	for _, name := range args.Operands {
		if !DevProcesses[name] {
			return validate.Reject(fmt.Sprintf("killall of '%s' is not allowed, only development processes", name))
		}
	}
	return validate.Allow()
}

func broadReason(tool string, args shellwords.Args, broad map[string]bool) string {
	for _, o := range args.Options {
		if broad[o.Name] {
			return fmt.Sprintf("%s %s is not allowed, target processes by name", tool, o.Name)
		}
	}
	return ""
}

// stripSignals drops signal tokens such as "-9" or "-HUP", which would
// otherwise parse as clusters of short flags.
func stripSignals(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if signalToken.MatchString(t) {
			continue
		}
		out = append(out, t)
	}
	return out
}

func isNegativeInt(s string) bool {
	n, err := strconv.Atoi(s)
	return err == nil && n < 0
}
