package mcp

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/mode"
)

// CheckInput defines parameters for the cmdgate_check tool.
type CheckInput struct {
	Command string `json:"command" jsonschema:"full shell command line to check"`
}

// CheckOutput contains the gate decision.
type CheckOutput struct {
	Allowed   bool   `json:"allowed"`
	Reason    string `json:"reason,omitempty"`
	Stage     string `json:"stage"`
	Mode      string `json:"mode"`
	Name      string `json:"name,omitempty"`
	Validator string `json:"validator,omitempty"`
	RequestID string `json:"request_id"`
}

// ExecInput defines parameters for the cmdgate_exec tool.
type ExecInput struct {
	Command string `json:"command" jsonschema:"full shell command line to execute"`
	Stdin   string `json:"stdin,omitempty" jsonschema:"data written to the command's standard input"`
}

// ExecOutput contains the result of command execution or block details.
type ExecOutput struct {
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	ExitCode  int    `json:"exit_code"`
	Redacted  int    `json:"redacted,omitempty"`
	Blocked   bool   `json:"blocked,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id"`
}

// CommandsInput optionally selects a mode other than the current one.
type CommandsInput struct {
	Mode string `json:"mode,omitempty" jsonschema:"normal or strict; omit for the current mode"`
}

// CommandsOutput lists permitted and validated commands.
type CommandsOutput struct {
	Mode      string            `json:"mode"`
	Allowed   []string          `json:"allowed"`
	Validated map[string]string `json:"validated"`
}

func (s *Server) handleCheck(ctx context.Context, req *mcpsdk.CallToolRequest, input CheckInput) (*mcpsdk.CallToolResult, CheckOutput, error) {
	d := s.gate.Check(ctx, input.Command)
	return nil, checkOutput(d), nil
}

func checkOutput(d gate.Decision) CheckOutput {
	return CheckOutput{
		Allowed:   d.Allowed,
		Reason:    d.Reason,
		Stage:     string(d.Stage),
		Mode:      d.Mode.String(),
		Name:      d.Name,
		Validator: d.Validator,
		RequestID: d.RequestID,
	}
}

func (s *Server) handleExec(ctx context.Context, req *mcpsdk.CallToolRequest, input ExecInput) (*mcpsdk.CallToolResult, ExecOutput, error) {
	if s.execTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.execTimeout)
		defer cancel()
	}

	var stdin io.Reader
	if input.Stdin != "" {
		stdin = strings.NewReader(input.Stdin)
	}

	result, err := s.gate.Run(ctx, input.Command, stdin)
	if err != nil {
		var blocked *gate.BlockedError
		if errors.As(err, &blocked) {
			out := ExecOutput{
				Blocked:   true,
				Reason:    blocked.Decision.Reason,
				RequestID: blocked.Decision.RequestID,
			}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, ExecOutput{}, err
	}

	return nil, ExecOutput{
		Stdout:    result.Stdout,
		Stderr:    result.Stderr,
		ExitCode:  result.ExitCode,
		Redacted:  result.Redacted,
		RequestID: result.Decision.RequestID,
	}, nil
}

func (s *Server) handleCommands(ctx context.Context, req *mcpsdk.CallToolRequest, input CommandsInput) (*mcpsdk.CallToolResult, CommandsOutput, error) {
	m := s.gate.Mode()
	if input.Mode != "" {
		m = mode.ParseName(input.Mode)
	}

	allowed := make([]string, 0, 64)
	for name := range s.gate.AllowedCommands(m) {
		allowed = append(allowed, name)
	}
	sort.Strings(allowed)

	validated := make(map[string]string)
	for name, id := range s.gate.ValidatedCommands(m) {
		validated[name] = string(id)
	}

	return nil, CommandsOutput{
		Mode:      m.String(),
		Allowed:   allowed,
		Validated: validated,
	}, nil
}
