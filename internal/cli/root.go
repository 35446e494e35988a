// Package cli implements the cmdgate command-line interface.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/cmdgate/internal/config"
)

// ExitBlocked is the process exit code when the gate denies a command.
const ExitBlocked = 77

var (
	configPath string
	strictFlag bool
	logLevel   string

	store  *config.Store
	logger = slog.Default()
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to config YAML (default: ~/.cmdgate/config.yaml)")
	pf.BoolVar(&strictFlag, "strict", false, "Force strict mode, overriding SECURITY_STRICT_MODE and the config file")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
}

var rootCmd = &cobra.Command{
	Use:   "cmdgate",
	Short: "Pre-execution security gate for agent shell commands",
	Long: "Decides whether a shell command issued by an automated agent may run.\n" +
		"Commands are classified by name, then sensitive ones (rm, chmod, kill,\n" +
		"and curl/wget in strict mode) are checked argument by argument.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// setup loads configuration and installs the process logger.
func setup(cmd *cobra.Command, args []string) error {
	if cmd.Annotations["skipConfig"] == "true" {
		return nil
	}

	s, err := config.Load(configPath)
	if err != nil {
		return err
	}
	pf := cmd.Root().PersistentFlags()
	if err := s.BindFlags(map[string]*pflag.Flag{
		config.StrictModeKey: pf.Lookup("strict"),
		"log.level":          pf.Lookup("log-level"),
	}); err != nil {
		return err
	}
	if err := s.Reload(); err != nil {
		return err
	}

	store = s
	logger = newLogger(s.Config().Log.Level, cmd.ErrOrStderr())
	slog.SetDefault(logger)
	return nil
}

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
