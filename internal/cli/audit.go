package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/audit"
)

var (
	tailLines     int
	tailDecision  string
	tailStage     string
	tailRequestID string
	tailSince     time.Duration
	tailFormat    string
)

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.AddCommand(auditVerifyCmd)
	auditCmd.AddCommand(auditTailCmd)
	auditTailCmd.Flags().IntVarP(&tailLines, "lines", "n", 10, "Number of recent entries to show (0 for all)")
	auditTailCmd.Flags().StringVar(&tailDecision, "decision", "", "Only show allow or deny entries")
	auditTailCmd.Flags().StringVar(&tailStage, "stage", "", "Only show entries decided at this stage (classify|validator|default)")
	auditTailCmd.Flags().StringVar(&tailRequestID, "request-id", "", "Only show entries for this request ID")
	auditTailCmd.Flags().DurationVar(&tailSince, "since", 0, "Only show entries newer than this (e.g. 1h)")
	auditTailCmd.Flags().StringVarP(&tailFormat, "format", "f", "text", "Output format (text|json)")
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Audit log operations",
	Long:  "Commands for verifying and inspecting the hash-chained decision log.",
}

var auditVerifyCmd = &cobra.Command{
	Use:   "verify [path]",
	Short: "Verify hash chain integrity of an audit log",
	Long: "Walks the JSONL audit log and validates that every entry's prev_hash\n" +
		"matches the SHA-256 of the previous entry. Exits 0 if valid, 1 if tampered.\n" +
		"The path defaults to audit.path from config.",
	Args: cobra.MaximumNArgs(1),
	RunE: runAuditVerify,
}

var auditTailCmd = &cobra.Command{
	Use:   "tail [path]",
	Short: "Show recent audit log entries",
	Long:  "Reads the last N matching entries from the JSONL audit log.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAuditTail,
}

func auditPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return store.Config().Audit.Path
}

func runAuditVerify(cmd *cobra.Command, args []string) error {
	result := audit.Verify(auditPath(args))
	if result.Valid {
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %d entries verified\n", result.Lines)
		return nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "FAILED at line %d: %s\n", result.ErrorLine, result.Error)
	return &exitError{code: 1}
}

func runAuditTail(cmd *cobra.Command, args []string) error {
	f := audit.Filter{
		RequestID: tailRequestID,
		Decision:  tailDecision,
		Stage:     tailStage,
		Limit:     tailLines,
	}
	if tailSince > 0 {
		f.Since = time.Now().Add(-tailSince)
	}

	res, err := audit.Query(auditPath(args), f)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if tailFormat == "json" {
		out, err := audit.FormatJSON(res)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, out)
		return nil
	}
	fmt.Fprint(w, audit.FormatText(res))
	return nil
}
