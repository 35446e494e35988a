// Package mcp exposes the gate to agents as Model Context Protocol tools
// over stdio.
package mcp

import (
	"context"
	"errors"
	"time"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/cmdgate/internal/gate"
)

// Config holds MCP server configuration.
type Config struct {
	Gate *gate.Gate
	// Version is reported to clients. Defaults to "dev".
	Version string
	// ExecTimeout bounds each cmdgate_exec call. Zero means no limit.
	ExecTimeout time.Duration
}

// Server wraps the MCP SDK server with gate enforcement.
type Server struct {
	mcpServer   *mcpsdk.Server
	gate        *gate.Gate
	execTimeout time.Duration
}

// New creates an MCP server with the cmdgate tools registered.
func New(cfg Config) (*Server, error) {
	if cfg.Gate == nil {
		return nil, errors.New("mcp server requires a gate")
	}
	version := cfg.Version
	if version == "" {
		version = "dev"
	}

	s := &Server{
		gate:        cfg.Gate,
		execTimeout: cfg.ExecTimeout,
	}
	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "cmdgate",
			Version: version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdgate_check",
		Description: "Check whether a shell command would be allowed without executing it (dry-run).",
	}, s.handleCheck)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdgate_exec",
		Description: "Execute a shell command after the gate allows it. Blocked commands return an error result with the reason.",
	}, s.handleExec)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "cmdgate_commands",
		Description: "List the command names permitted in the current (or given) mode and the commands that are argument-validated.",
	}, s.handleCommands)
}
