package cli

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/audit"
	"github.com/ppiankov/cmdgate/internal/integrity"
	"github.com/ppiankov/cmdgate/internal/validators"
)

func init() {
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check readiness and diagnose configuration issues",
	RunE:  runDoctor,
}

type checkResult struct {
	label  string
	ok     bool
	detail string
	fix    string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := store.Config()
	var checks []checkResult

	// Config file.
	if _, err := os.Stat(store.Path()); err == nil {
		checks = append(checks, checkResult{label: "config file", ok: true, detail: store.Path()})
	} else {
		checks = append(checks, checkResult{
			label:  "config file",
			ok:     false,
			detail: "missing (defaults in use)",
			fix:    "cmdgate init",
		})
	}

	// Mode, as the next decision would see it.
	g, err := newGate(cfg, nil)
	if err != nil {
		checks = append(checks, checkResult{label: "gate", ok: false, detail: err.Error()})
	} else {
		checks = append(checks, checkResult{label: "mode", ok: true, detail: g.Mode().String()})
	}

	// Built-in validators.
	checks = append(checks, checkResult{
		label:  "validators",
		ok:     true,
		detail: fmt.Sprintf("%d registered", len(validators.Builtin)),
	})

	// Execution shell.
	if p, err := exec.LookPath(cfg.Exec.Shell); err == nil {
		checks = append(checks, checkResult{label: "shell", ok: true, detail: p})
	} else {
		checks = append(checks, checkResult{
			label:  "shell",
			ok:     false,
			detail: fmt.Sprintf("%q not found", cfg.Exec.Shell),
			fix:    "set exec.shell in config",
		})
	}

	// Audit chain.
	if cfg.Audit.Enabled {
		if _, err := os.Stat(cfg.Audit.Path); err != nil {
			checks = append(checks, checkResult{label: "audit log", ok: true, detail: "not created yet"})
		} else if r := audit.Verify(cfg.Audit.Path); r.Valid {
			checks = append(checks, checkResult{label: "audit log", ok: true, detail: fmt.Sprintf("%d entries, chain intact", r.Lines)})
		} else {
			checks = append(checks, checkResult{
				label:  "audit log",
				ok:     false,
				detail: fmt.Sprintf("chain broken at line %d", r.ErrorLine),
				fix:    "cmdgate audit verify",
			})
		}
	} else {
		checks = append(checks, checkResult{label: "audit log", ok: true, detail: "disabled"})
	}

	// Binary checksum.
	switch r, err := integrity.Verify(); {
	case err != nil:
		checks = append(checks, checkResult{label: "binary", ok: false, detail: err.Error()})
	case r.Status == integrity.StatusMismatch:
		checks = append(checks, checkResult{
			label:  "binary",
			ok:     false,
			detail: fmt.Sprintf("checksum mismatch (expected %s, got %s)", short(r.Expected), short(r.Actual)),
			fix:    "reinstall cmdgate",
		})
	case r.Status == integrity.StatusVerified:
		checks = append(checks, checkResult{label: "binary", ok: true, detail: "checksum verified (" + short(r.Actual) + ")"})
	default:
		checks = append(checks, checkResult{label: "binary", ok: true, detail: "no checksum on record"})
	}

	if printChecks(cmd.OutOrStdout(), checks) {
		return fmt.Errorf("doctor found issues")
	}
	return nil
}

// printChecks writes one line per check and reports whether any failed.
func printChecks(w io.Writer, checks []checkResult) bool {
	hasFailures := false
	for _, c := range checks {
		mark := "\u2713" // ✓
		if !c.ok {
			mark = "\u2717" // ✗
			hasFailures = true
		}
		line := fmt.Sprintf("%s %-14s %s", mark, c.label+":", c.detail)
		if !c.ok && c.fix != "" {
			line += fmt.Sprintf("  ->  %s", c.fix)
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	if hasFailures {
		fmt.Fprintln(w, "Some checks failed. Run the suggested commands to fix.")
	} else {
		fmt.Fprintln(w, "All checks passed.")
	}
	return hasFailures
}

func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:8] + "..." + hash[len(hash)-8:]
}
