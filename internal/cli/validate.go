package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/client"
	"github.com/ppiankov/cmdgate/internal/gate"
)

var (
	validateRemote string
	validateFormat string
)

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().StringVar(&validateRemote, "remote", "", "Ask a cmdgate server at host:port instead of deciding locally")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Output format (text|json)")
}

var validateCmd = &cobra.Command{
	Use:   "validate <command>",
	Short: "Decide whether a command would be allowed, without running it",
	Long: "Runs the full gate pipeline on a command line and prints the decision.\n" +
		"Pass the line as one quoted argument to keep pipes and operators.\n" +
		"Exit code 77 indicates the command is blocked.",
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	line, err := commandLine(args)
	if err != nil {
		return err
	}

	var d gate.Decision
	if validateRemote != "" {
		c, err := client.New(validateRemote)
		if err != nil {
			return err
		}
		defer c.Close()
		d = c.Check(cmd.Context(), line)
	} else {
		d, err = checkLocal(cmd.Context(), line)
		if err != nil {
			return err
		}
	}

	if err := printDecision(cmd.OutOrStdout(), d, validateFormat); err != nil {
		return err
	}
	if !d.Allowed {
		return &exitError{code: ExitBlocked}
	}
	return nil
}

func checkLocal(ctx context.Context, line string) (gate.Decision, error) {
	cfg := store.Config()
	auditLog, err := openAudit(cfg)
	if err != nil {
		return gate.Decision{}, err
	}
	if auditLog != nil {
		defer auditLog.Close()
	}
	g, err := newGate(cfg, auditLog)
	if err != nil {
		return gate.Decision{}, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return g.Check(ctx, line), nil
}

func printDecision(w io.Writer, d gate.Decision, format string) error {
	if format == "json" {
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	verdict := "ALLOW"
	if !d.Allowed {
		verdict = "DENY"
	}
	fmt.Fprintf(w, "%s  %s  [%s mode, stage %s", verdict, d.Command, d.Mode, d.Stage)
	if d.Validator != "" {
		fmt.Fprintf(w, ", %s", d.Validator)
	}
	fmt.Fprintln(w, "]")
	if d.Reason != "" {
		fmt.Fprintf(w, "  %s\n", d.Reason)
	}
	return nil
}
