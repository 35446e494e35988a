package cmdgate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/ppiankov/cmdgate/internal/audit"
	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/policy"
	"github.com/ppiankov/cmdgate/internal/validate"
	"github.com/ppiankov/cmdgate/internal/validators"
)

// Client holds the gate pipeline for in-process enforcement.
// Safe for concurrent use.
type Client struct {
	gate  *gate.Gate
	audit *audit.Log
}

// New creates a Client with the given options. Without WithStrict or
// WithModeSource the mode is read from SECURITY_STRICT_MODE on every call.
func New(opts ...Option) (*Client, error) {
	var cfg clientConfig
	for _, o := range opts {
		o(&cfg)
	}

	var src mode.Source = mode.EnvSource{Key: cfg.envKey}
	if cfg.source != nil {
		src = cfg.source
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	reg := validators.Default()
	for id, fn := range cfg.validators {
		if _, ok := validators.Builtin[policy.ValidatorID(id)]; !ok {
			return nil, fmt.Errorf("cmdgate: unknown validator %q", id)
		}
		if fn == nil {
			return nil, fmt.Errorf("cmdgate: validator %q is nil", id)
		}
		reg.Replace(policy.ValidatorID(id), adapt(fn))
	}

	var auditLog *audit.Log
	if cfg.auditPath != "" {
		l, err := audit.Open(cfg.auditPath)
		if err != nil {
			return nil, fmt.Errorf("cmdgate: failed to open audit log: %w", err)
		}
		auditLog = l
	}

	g, err := gate.New(gate.Config{
		Mode:            src,
		Registry:        reg,
		ProjectCommands: cfg.project,
		Audit:           auditLog,
		Logger:          logger,
		Shell:           cfg.shell,
		RedactOutput:    cfg.redact,
	})
	if err != nil {
		if auditLog != nil {
			auditLog.Close()
		}
		return nil, fmt.Errorf("cmdgate: %w", err)
	}

	return &Client{gate: g, audit: auditLog}, nil
}

func adapt(fn ValidateFunc) validate.Validator {
	return validate.Func(func(command string) validate.Result {
		ok, reason := fn(command)
		if ok {
			return validate.Allow()
		}
		return validate.Reject(reason)
	})
}

// Check decides on command without executing anything.
func (c *Client) Check(ctx context.Context, command string) Result {
	return toResult(c.gate.Check(ctx, command))
}

// Run checks command and executes it with the configured shell when
// allowed. A denied command returns *BlockedError.
func (c *Client) Run(ctx context.Context, command string, stdin io.Reader) (*Output, error) {
	res, err := c.gate.Run(ctx, command, stdin)
	if err != nil {
		var blocked *gate.BlockedError
		if errors.As(err, &blocked) {
			return nil, &BlockedError{Command: command, Result: toResult(blocked.Decision)}
		}
		return nil, err
	}
	return &Output{
		Stdout:   res.Stdout,
		Stderr:   res.Stderr,
		ExitCode: res.ExitCode,
		Redacted: res.Redacted,
		Result:   toResult(res.Decision),
	}, nil
}

// Mode returns the mode the next decision would use.
func (c *Client) Mode() Mode {
	return Mode(c.gate.Mode().String())
}

// Close releases the audit log, if any.
func (c *Client) Close() error {
	if c.audit != nil {
		return c.audit.Close()
	}
	return nil
}
