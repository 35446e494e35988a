// Package gate decides whether an agent-issued shell command may run.
//
// Every simple command in the line is checked: its name must be permitted
// by the tier table for the current mode, and if a validator is bound to
// that name the validator must accept the command. Commands run through a
// wrapper such as env or xargs are checked as well. The first rejection
// denies the whole line.
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/cmdgate/internal/audit"
	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/shellwords"
	"github.com/ppiankov/cmdgate/internal/validate"
	"github.com/ppiankov/cmdgate/internal/validators"
)

// Config holds gate configuration. Zero values select defaults.
type Config struct {
	// Mode is consulted once per decision. Defaults to the
	// SECURITY_STRICT_MODE environment variable.
	Mode mode.Source
	// Registry resolves validators. Defaults to validators.Default().
	Registry *validate.Registry
	// ProjectCommands are extra command names permitted in every mode.
	ProjectCommands []string
	// Audit, when set, receives one entry per decision.
	Audit *audit.Log
	// Logger receives decision logs. Defaults to slog.Default().
	Logger *slog.Logger
	// Shell runs allowed commands in Run. Defaults to "sh".
	Shell string
	// RedactOutput masks credentials in the output returned by Run.
	RedactOutput bool
}

// Gate evaluates command lines. Safe for concurrent use.
type Gate struct {
	cfg     Config
	project map[string]bool
}

// New validates cfg and returns a Gate.
func New(cfg Config) (*Gate, error) {
	if err := policy.CheckProjectCommands(cfg.ProjectCommands); err != nil {
		return nil, fmt.Errorf("invalid project commands: %w", err)
	}
	if cfg.Mode == nil {
		cfg.Mode = mode.EnvSource{Key: mode.DefaultEnvKey}
	}
	if cfg.Registry == nil {
		cfg.Registry = validators.Default()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Shell == "" {
		cfg.Shell = "sh"
	}

	project := make(map[string]bool, len(cfg.ProjectCommands))
	for _, name := range cfg.ProjectCommands {
		project[strings.TrimSpace(name)] = true
	}
	return &Gate{cfg: cfg, project: project}, nil
}

// Check decides on command and records the decision. It never executes
// anything.
func (g *Gate) Check(ctx context.Context, command string) Decision {
	return g.CheckRequest(ctx, "", command)
}

// CheckRequest is Check with a caller-supplied request ID. An empty ID is
// replaced with a fresh UUID.
func (g *Gate) CheckRequest(ctx context.Context, requestID, command string) Decision {
	d := g.decide(requestID, command)
	g.record(ctx, d, nil)
	return d
}

// Mode returns the mode a decision made now would use.
func (g *Gate) Mode() mode.Mode {
	return mode.Resolve(g.cfg.Mode)
}

// Permitted reports whether name passes classification in mode m.
func (g *Gate) Permitted(name string, m mode.Mode) bool {
	return g.project[name] || policy.IsPermitted(name, m)
}

// AllowedCommands returns the permitted names in mode m, project
// commands included.
func (g *Gate) AllowedCommands(m mode.Mode) map[string]struct{} {
	out := policy.AllowedCommands(m)
	for name := range g.project {
		out[name] = struct{}{}
	}
	return out
}

// ValidatedCommands returns the command to validator bindings in mode m,
// including bindings for the configured project commands.
func (g *Gate) ValidatedCommands(m mode.Mode) map[string]policy.ValidatorID {
	out := policy.ValidatedCommands(m)
	for name := range g.project {
		if id, ok := policy.ValidatorFor(name, m); ok {
			out[name] = id
		}
	}
	return out
}

func (g *Gate) decide(requestID, command string) Decision {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	m := mode.Resolve(g.cfg.Mode)
	d := Decision{RequestID: requestID, Command: command, Mode: m}

	cmds, err := shellwords.Commands(command)
	if err != nil {
		return deny(d, StageClassify, "could not parse command")
	}
	if len(cmds) == 0 {
		return deny(d, StageClassify, "empty command")
	}

	d.Name = policy.BaseName(cmds[0].Name())
	d.Stage = StageDefault
	if reason, ok := g.checkAll(&d, cmds, command, m, 0); !ok {
		return deny(d, d.Stage, reason)
	}

	d.Allowed = true
	return d
}

// maxUnwrap bounds how deeply wrapper commands are followed.
const maxUnwrap = 8

// checkAll classifies and validates each command in cmds, then the command
// each wrapper runs. line is the source of cmds; a lone command is
// validated against line itself so validators see the caller's quoting.
// On rejection d carries the failing stage and name.
func (g *Gate) checkAll(d *Decision, cmds []shellwords.Command, line string, m mode.Mode, depth int) (string, bool) {
	for _, c := range cmds {
		name := policy.BaseName(c.Name())

		if !g.Permitted(name, m) {
			d.Name = name
			d.Validator = ""
			d.Stage = StageClassify
			return fmt.Sprintf("command '%s' is not allowed in %s mode", name, m), false
		}

		if v, id, ok := g.cfg.Registry.Lookup(name, m); ok {
			text := c.Text
			if len(cmds) == 1 {
				text = line
			}
			if res := v.Validate(text); !res.OK {
				d.Name = name
				d.Validator = string(id)
				d.Stage = StageValidator
				return res.Reason, false
			}
			if d.Stage == StageDefault {
				d.Stage = StageValidator
				d.Validator = string(id)
			}
		}

		wrapped, err := shellwords.Unwrap(c)
		if err != nil {
			d.Stage = StageClassify
			return "could not parse command", false
		}
		if len(wrapped) > 0 && depth >= maxUnwrap {
			d.Name = name
			d.Stage = StageClassify
			return fmt.Sprintf("command '%s' nests too many wrapped commands", name), false
		}
		for _, w := range wrapped {
			if reason, ok := g.checkWrapped(d, name, w, m, depth); !ok {
				return reason, false
			}
		}
	}
	return "", true
}

func (g *Gate) checkWrapped(d *Decision, wrapper string, w shellwords.Wrapped, m mode.Mode, depth int) (string, bool) {
	cmds, err := shellwords.Commands(w.Line)
	if err != nil {
		d.Name = wrapper
		d.Stage = StageClassify
		return "could not parse command", false
	}
	if w.HiddenArgs {
		// A validator would only see part of the argv.
		for _, c := range cmds {
			name := policy.BaseName(c.Name())
			if _, id, ok := g.cfg.Registry.Lookup(name, m); ok {
				d.Name = name
				d.Validator = string(id)
				d.Stage = StageValidator
				return fmt.Sprintf("command '%s' run by %s receives arguments at run time and cannot be validated", name, wrapper), false
			}
		}
	}
	return g.checkAll(d, cmds, w.Line, m, depth+1)
}

func deny(d Decision, stage Stage, reason string) Decision {
	d.Allowed = false
	d.Stage = stage
	d.Reason = reason
	return d
}

func (g *Gate) record(ctx context.Context, d Decision, exitCode *int) {
	attrs := []slog.Attr{
		slog.String("request_id", d.RequestID),
		slog.String("name", d.Name),
		slog.String("mode", d.Mode.String()),
		slog.String("stage", string(d.Stage)),
	}
	if d.Validator != "" {
		attrs = append(attrs, slog.String("validator", d.Validator))
	}
	if d.Allowed {
		g.cfg.Logger.LogAttrs(ctx, slog.LevelDebug, "command allowed", attrs...)
	} else {
		attrs = append(attrs, slog.String("reason", d.Reason))
		g.cfg.Logger.LogAttrs(ctx, slog.LevelWarn, "command blocked", attrs...)
	}

	if g.cfg.Audit == nil {
		return
	}
	entry := audit.Entry{
		RequestID: d.RequestID,
		Command:   d.Command,
		Name:      d.Name,
		Mode:      d.Mode.String(),
		Stage:     string(d.Stage),
		Validator: d.Validator,
		Decision:  audit.DecisionDeny,
		Reason:    d.Reason,
		ExitCode:  exitCode,
	}
	if d.Allowed {
		entry.Decision = audit.DecisionAllow
	}
	if err := g.cfg.Audit.Record(entry); err != nil {
		g.cfg.Logger.Error("audit write failed", "request_id", d.RequestID, "error", err)
	}
}
