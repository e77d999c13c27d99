package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
)

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "move <row> <col>",
		Short: "Play one move for the side to move",
		Long: `Load the shared game, play one move for the side to move and publish
the result. A missing game is started first.

Exit codes:
  0 - Move played
  1 - Move rejected (illegal move or game over)
  2 - Command error

Examples:
  reversi move 2 3 --db ./reversi.db
  reversi move 2 3 --instance table-1 --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid row %q", args[0]))
			}
			col, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid column %q", args[1]))
			}
			return runAction(rootOpts, cmd, func(s *session) error {
				return s.coord.HandleLocalMove(cmd.Context(), row, col)
			})
		},
	}
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restart the shared game",
		Long: `Reset the shared game to the opening position and publish it. Allowed
on a finished game.

Examples:
  reversi reset --db ./reversi.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(rootOpts, cmd, func(s *session) error {
				return s.coord.HandleReset(cmd.Context())
			})
		},
	}
}

// runAction joins the shared game, performs action and waits for the
// result to be stored.
func runAction(opts *RootOptions, cmd *cobra.Command, action func(*session) error) error {
	ctx := cmd.Context()
	s, err := opts.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.coord.WaitForInitialState(ctx); err != nil {
		if coordinator.IsNotReady(err) {
			return WrapExitError(ExitCommandError, "store not ready", err)
		}
		return WrapExitError(ExitFailure, "failed to load game", err)
	}

	if err := action(s); err != nil {
		if coordinator.IsInvalidMove(err) || coordinator.IsGameOver(err) {
			return WrapExitError(ExitFailure, "move rejected", err)
		}
		return WrapExitError(ExitCommandError, "action failed", err)
	}
	st, err := s.awaitPublished(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "publish failed", err)
	}
	return writeGame(opts, cmd, newGameView(opts.Config.InstanceName(), s.coord.Key(), st))
}
