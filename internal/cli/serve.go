package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/FireRat666/Banter-Reversi/internal/relay"
)

// shutdownGrace bounds how long serve waits for open requests on exit.
const shutdownGrace = 5 * time.Second

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr     string
	RelayLog string

	// ready, when set, receives the bound address once the listener is up.
	ready func(addr string)
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Host a shared property space over websocket",
		Long: `Start the property relay.

Clients connect to /ws?space=NAME and share every public property of that
space. Each client receives a snapshot on connect and a "changed" message
whenever another client writes. /healthz and /metrics report liveness and
counters.

Examples:
  reversi serve
  reversi serve --addr 127.0.0.1:9000 --relay-log ./relay.log --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().StringVar(&opts.RelayLog, "relay-log", "", "write relay logs to a rolling file")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	addr := opts.Config.Relay.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	logPath := opts.Config.Relay.LogFile
	if opts.RelayLog != "" {
		logPath = opts.RelayLog
	}

	log := relay.NewLogger(logPath, opts.Verbose)
	defer func() { _ = log.Sync() }()

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to listen", err)
	}

	srv := relay.NewServer(log)
	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.Serve(ln) }()

	bound := ln.Addr().String()
	log.Infow("relay listening", "addr", bound)
	fmt.Fprintf(cmd.OutOrStdout(), "Relay listening on %s\n", bound)
	if opts.ready != nil {
		opts.ready(bound)
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return WrapExitError(ExitFailure, "relay error", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Infow("relay shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("shutdown incomplete", "error", err)
		_ = httpSrv.Close()
	}
	return nil
}
