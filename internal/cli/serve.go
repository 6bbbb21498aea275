package cli

import (
	"context"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/todos/internal/config"
	"github.com/roach88/todos/internal/logger"
	"github.com/roach88/todos/internal/server"
	"github.com/roach88/todos/internal/store"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Port int

	// Listen opens the listener (for testing). If nil, defaults to net.Listen.
	Listen func(network, address string) (net.Listener, error)

	// IDs overrides the request id generator (for testing).
	// If nil, defaults to server.UUIDv7Generator.
	IDs server.IDGenerator
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return newServeCommand(&ServeOptions{RootOptions: rootOpts})
}

func newServeCommand(opts *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Long: `Start the todo HTTP API.

The database is opened on the first request and created if it does not
exist. The server shuts down gracefully on SIGINT or SIGTERM.

Example:
  todos serve --port 3001 --db ./todos.db
  PORT=8080 todos serve --driver sqlite`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Port, "port", "p", config.DefaultPort, "TCP port to listen on")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))

	cfg, err := loadConfig(opts.RootOptions, cmd)
	if err != nil {
		return err
	}
	slog.Debug("config resolved", "port", cfg.Port, "db", cfg.Database, "driver", cfg.Driver)

	log := logger.New(logger.DefaultID, logger.WithOutput(cmd.OutOrStdout(), cmd.ErrOrStderr()))
	st := store.New(cfg.StoreConfig())
	defer func() {
		if closeErr := st.Close(log); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	listen := opts.Listen
	if listen == nil {
		listen = net.Listen
	}
	ln, err := listen("tcp", cfg.Addr())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := server.New(server.Config{
		Store:  st,
		Logger: log,
		IDs:    opts.IDs,
	})

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	log.Log("Server started on port:", listenPort(ln, cfg.Port))

	if err := srv.Serve(ctx, ln); err != nil {
		return WrapExitError(ExitFailure, "server error", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// listenPort reports the port ln is bound to, falling back to the
// configured one for non-TCP listeners.
func listenPort(ln net.Listener, configured int) int {
	if addr, ok := ln.Addr().(*net.TCPAddr); ok {
		return addr.Port
	}
	return configured
}
