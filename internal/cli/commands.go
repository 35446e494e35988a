package cli

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/mode"
	"github.com/ppiankov/cmdgate/internal/policy"
)

var (
	commandsMode   string
	commandsFormat string
)

func init() {
	rootCmd.AddCommand(commandsCmd)
	commandsCmd.Flags().StringVar(&commandsMode, "mode", "", "Mode to list (normal|strict; default: current mode)")
	commandsCmd.Flags().StringVarP(&commandsFormat, "format", "f", "text", "Output format (text|json)")
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "List permitted and validated commands",
	RunE:  runCommands,
}

func runCommands(cmd *cobra.Command, args []string) error {
	cfg := store.Config()
	g, err := newGate(cfg, nil)
	if err != nil {
		return err
	}

	m := g.Mode()
	if commandsMode != "" {
		m = mode.ParseName(commandsMode)
	}

	allowed := make([]string, 0, 128)
	for name := range g.AllowedCommands(m) {
		allowed = append(allowed, name)
	}
	sort.Strings(allowed)
	validated := g.ValidatedCommands(m)

	w := cmd.OutOrStdout()
	if commandsFormat == "json" {
		out, err := json.MarshalIndent(struct {
			Mode      mode.Mode                     `json:"mode"`
			Allowed   []string                      `json:"allowed"`
			Validated map[string]policy.ValidatorID `json:"validated"`
		}{m, allowed, validated}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(out))
		return nil
	}

	fmt.Fprintf(w, "Mode: %s\n\n", m)
	fmt.Fprintf(w, "Allowed (%d):\n", len(allowed))
	fmt.Fprintf(w, "  %s\n\n", strings.Join(allowed, " "))

	names := make([]string, 0, len(validated))
	for name := range validated {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(w, "Validated:")
	for _, name := range names {
		fmt.Fprintf(w, "  %-10s %s\n", name, validated[name])
	}
	return nil
}
