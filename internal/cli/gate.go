package cli

import (
	"fmt"
	"strings"

	"github.com/ppiankov/cmdgate/internal/audit"
	"github.com/ppiankov/cmdgate/internal/config"
	"github.com/ppiankov/cmdgate/internal/gate"
	"github.com/ppiankov/cmdgate/internal/shellwords"
)

// openAudit opens the configured audit log, or returns nil when auditing
// is disabled.
func openAudit(cfg config.Config) (*audit.Log, error) {
	if !cfg.Audit.Enabled {
		return nil, nil
	}
	l, err := audit.Open(cfg.Audit.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return l, nil
}

// newGate builds a gate from cfg that reads the mode from the live store.
func newGate(cfg config.Config, auditLog *audit.Log) (*gate.Gate, error) {
	g, err := gate.New(gate.Config{
		Mode:            store,
		ProjectCommands: cfg.ProjectCommands,
		Audit:           auditLog,
		Logger:          logger,
		Shell:           cfg.Exec.Shell,
		RedactOutput:    cfg.Exec.RedactOutput,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gate: %w", err)
	}
	return g, nil
}

// commandLine turns positional args into one command line. A single
// argument is taken verbatim so operators and quoting survive; several
// arguments are quoted individually.
func commandLine(args []string) (string, error) {
	if len(args) == 1 {
		return strings.TrimSpace(args[0]), nil
	}
	return shellwords.Join(args)
}
