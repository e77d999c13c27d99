package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
	"github.com/FireRat666/Banter-Reversi/internal/render"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	HideUI bool
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play in the terminal",
		Long: `Open the shared game in a terminal board.

Arrow keys or the mouse select a square, Enter or a click places a piece,
r resets the game and q quits. Moves by other clients appear as soon as
the store reports them.

Logs would corrupt the screen, so they are discarded unless --log-file is
set.

Examples:
  reversi play --db ./reversi.db
  reversi play --store relay --url ws://localhost:8080/ws?space=lobby --instance table-1`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.HideUI, "hide-ui", false, "hide the reset control")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command) error {
	if opts.Config.LogFile == "" {
		opts.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
		slog.SetDefault(opts.logger)
	}
	hide := opts.Config.HideUI || opts.HideUI

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	term := render.NewTerminal(render.TerminalOptions{
		Title:     fmt.Sprintf("Reversi: %s", opts.Config.InstanceName()),
		HideReset: hide,
	})
	s, err := opts.openSession(ctx, term)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.coord.WaitForInitialState(ctx); err != nil && !coordinator.IsDeserializationFailure(err) {
		return WrapExitError(ExitCommandError, "failed to join game", err)
	}

	runCtx, stop := context.WithCancel(ctx)
	defer stop()
	done := make(chan error, 1)
	go func() { done <- s.coord.Run(runCtx) }()

	err = term.Run(ctx, s.coord)
	stop()
	if runErr := <-done; runErr != nil && !errors.Is(runErr, context.Canceled) {
		opts.Logger().Error("coordinator stopped", "error", runErr)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "terminal error", err)
	}
	return nil
}
