package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdgate/internal/server"
)

var servePort int

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVar(&servePort, "port", 0, "gRPC listen port (default: server.port from config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gRPC gate server",
	Long: "Runs cmdgate as a central gate over gRPC (cmdgate.v1.GateService).\n" +
		"Agents connect as clients for remote decisions and fail closed when\n" +
		"the server is unreachable. The config file is hot-reloaded.",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := store.Config()
	port := cfg.Server.Port
	if servePort > 0 {
		port = servePort
	}

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
	srv, err := server.New(server.Config{Port: port, Gate: g, Logger: logger})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Server.Reload {
		reload := func() error {
			if err := store.Reload(); err != nil {
				return err
			}
			next, err := newGate(store.Config(), auditLog)
			if err != nil {
				return err
			}
			srv.SetGate(next)
			return nil
		}
		reloader, err := server.NewReloader(reload, []string{store.Path()}, logger)
		if err != nil {
			logger.Warn("hot-reload disabled", "error", err)
		} else if reloader.Watching() > 0 {
			go reloader.Run(ctx)
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case <-sigCh:
			logger.Info("shutting down gate server")
			cancel()
			srv.GracefulStop()
		case <-ctx.Done():
		}
	}()

	logger.Info("cmdgate server starting", "port", port, "mode", g.Mode().String(), "config", store.Path())
	return srv.Serve()
}
