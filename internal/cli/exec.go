package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/gate"
)

var (
	execDryRun  bool
	execTimeout time.Duration
)

func init() {
	rootCmd.AddCommand(execCmd)
	execCmd.Flags().BoolVar(&execDryRun, "dry-run", false, "Check the command without executing it")
	execCmd.Flags().DurationVar(&execTimeout, "timeout", 0, "Kill the command after this long (default: exec.timeout from config)")
}

var execCmd = &cobra.Command{
	Use:   "exec [flags] -- <command> [args...]",
	Short: "Execute a command through the gate",
	Long: "Checks the command line before execution and runs it with the configured\n" +
		"shell only when allowed. Blocked commands are not executed.\n" +
		"Exit code 77 indicates a block; otherwise the command's own exit code is returned.",
	Args: cobra.MinimumNArgs(1),
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	line, err := commandLine(args)
	if err != nil {
		return err
	}

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

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if execDryRun {
		d := g.Check(ctx, line)
		if err := printDecision(cmd.OutOrStdout(), d, "json"); err != nil {
			return err
		}
		if !d.Allowed {
			return &exitError{code: ExitBlocked}
		}
		return nil
	}

	timeout := cfg.Exec.Timeout
	if execTimeout > 0 {
		timeout = execTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := g.Run(ctx, line, cmd.InOrStdin())
	if err != nil {
		var blocked *gate.BlockedError
		if errors.As(err, &blocked) {
			resp := map[string]any{
				"blocked":    true,
				"command":    blocked.Decision.Command,
				"stage":      blocked.Decision.Stage,
				"reason":     blocked.Decision.Reason,
				"request_id": blocked.Decision.RequestID,
			}
			out, _ := json.MarshalIndent(resp, "", "  ")
			fmt.Fprintln(cmd.ErrOrStderr(), string(out))
			return &exitError{code: ExitBlocked}
		}
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
	if result.Stderr != "" {
		fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
	}
	if result.Redacted > 0 {
		logger.Info("output redacted", "request_id", result.Decision.RequestID, "count", result.Redacted)
	}

	if result.ExitCode != 0 {
		return &exitError{code: result.ExitCode}
	}
	return nil
}
