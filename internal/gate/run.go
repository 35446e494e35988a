package gate

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

// Result captures the outcome of an executed command.
type Result struct {
	Stdout   string   `json:"stdout"`
	Stderr   string   `json:"stderr"`
	ExitCode int      `json:"exit_code"`
	Redacted int      `json:"redacted,omitempty"`
	Decision Decision `json:"decision"`
}

// Run checks command and, if allowed, executes it with the configured
// shell. A denied command returns *BlockedError and is never started.
// A non-zero exit status is reported in Result, not as an error.
func (g *Gate) Run(ctx context.Context, command string, stdin io.Reader) (*Result, error) {
	return g.RunRequest(ctx, "", command, stdin)
}

// RunRequest is Run with a caller-supplied request ID.
func (g *Gate) RunRequest(ctx context.Context, requestID, command string, stdin io.Reader) (*Result, error) {
	d := g.decide(requestID, command)
	if !d.Allowed {
		g.record(ctx, d, nil)
		return nil, &BlockedError{Decision: d}
	}

	cmd := exec.CommandContext(ctx, g.cfg.Shell, "-c", command)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if stdin != nil {
		cmd.Stdin = stdin
	}

	exitCode := 0
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			g.record(ctx, d, nil)
			return nil, err
		}
		exitCode = exitErr.ExitCode()
	}
	g.record(ctx, d, &exitCode)

	res := &Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
		Decision: d,
	}
	if g.cfg.RedactOutput {
		var n, m int
		res.Stdout, n = RedactOutput(res.Stdout)
		res.Stderr, m = RedactOutput(res.Stderr)
		res.Redacted = n + m
	}
	return res, nil
}
