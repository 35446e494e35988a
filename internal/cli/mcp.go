package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	gatemcp "github.com/ppiankov/cmdgate/internal/mcp"
)

func init() {
	rootCmd.AddCommand(mcpCmd)
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long: "Runs cmdgate as an MCP (Model Context Protocol) server over stdio.\n" +
		"Exposes gated tools: cmdgate_check, cmdgate_exec, cmdgate_commands.",
	RunE: runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := store.Config()
	auditLog, err := openAudit(cfg)
	if err != nil {
		return err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}

	g, err := newGate(cfg, auditLog)
	if err != nil {
		return err
	}
	srv, err := gatemcp.New(gatemcp.Config{
		Gate:        g,
		Version:     version,
		ExecTimeout: cfg.Exec.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("cmdgate MCP server running on stdio", "mode", g.Mode().String())
	return srv.Run(ctx)
}
