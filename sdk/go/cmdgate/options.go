package cmdgate

import (
	"log/slog"
)

// ModeSource yields the raw strict-mode setting ("true", "1", "yes" select
// strict mode). ok is false when the setting is absent.
type ModeSource interface {
	Lookup() (value string, ok bool)
}

// ValidateFunc inspects a full command string. reason must be non-empty
// when ok is false.
type ValidateFunc func(command string) (ok bool, reason string)

// Option configures a Client at creation time.
type Option func(*clientConfig)

type clientConfig struct {
	source     ModeSource
	envKey     string
	project    []string
	auditPath  string
	logger     *slog.Logger
	shell      string
	redact     bool
	validators map[string]ValidateFunc
}

// WithStrict fixes the mode instead of reading the environment.
func WithStrict(strict bool) Option {
	return func(c *clientConfig) { c.source = fixedSource(strict) }
}

// WithModeSource reads the mode from src before every decision.
func WithModeSource(src ModeSource) Option {
	return func(c *clientConfig) { c.source = src }
}

// WithEnvKey reads the mode from the named environment variable instead of
// SECURITY_STRICT_MODE.
func WithEnvKey(key string) Option {
	return func(c *clientConfig) { c.envKey = key }
}

// WithProjectCommands permits extra command names in every mode.
func WithProjectCommands(names ...string) Option {
	return func(c *clientConfig) { c.project = append(c.project, names...) }
}

// WithAuditLog appends every decision to a hash-chained JSONL log at path.
func WithAuditLog(path string) Option {
	return func(c *clientConfig) { c.auditPath = path }
}

// WithLogger sets the decision logger. Defaults to a discarding logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}

// WithShell sets the shell used by Run. Defaults to "sh".
func WithShell(shell string) Option {
	return func(c *clientConfig) { c.shell = shell }
}

// WithOutputRedaction masks credentials in the output returned by Run.
func WithOutputRedaction(on bool) Option {
	return func(c *clientConfig) { c.redact = on }
}

// WithValidator replaces the built-in validator with the given ID
// (for example "validate_rm").
func WithValidator(id string, fn ValidateFunc) Option {
	return func(c *clientConfig) {
		if c.validators == nil {
			c.validators = make(map[string]ValidateFunc)
		}
		c.validators[id] = fn
	}
}

type fixedSource bool

func (f fixedSource) Lookup() (string, bool) {
	if f {
		return "true", true
	}
	return "false", true
}
