package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/FireRat666/Banter-Reversi/internal/game"
	"github.com/FireRat666/Banter-Reversi/internal/render"
)

// GameView is the JSON payload of show, move and reset.
type GameView struct {
	Instance   string         `json:"instance"`
	Key        string         `json:"key"`
	State      game.GameState `json:"state"`
	ValidMoves []game.Pos     `json:"valid_moves"`
	Status     string         `json:"status"`
}

func newGameView(instance, key string, st game.GameState) GameView {
	rs := render.Derive(st)
	moves := rs.ValidMoves()
	if moves == nil {
		moves = []game.Pos{}
	}
	return GameView{
		Instance:   instance,
		Key:        key,
		State:      st,
		ValidMoves: moves,
		Status:     render.Status(rs),
	}
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored game",
		Long: `Print the game stored for the configured instance.

Exit codes:
  0 - Game printed
  1 - No game stored, or the stored game is malformed
  2 - Command error (store unavailable, bad configuration)

Examples:
  reversi show --db ./reversi.db
  reversi show --store relay --url ws://localhost:8080/ws?space=lobby --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShow(rootOpts, cmd)
		},
	}
}

func runShow(opts *RootOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()
	s, err := opts.openSession(ctx, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.awaitIdentity(ctx, opts.Config.Sync.ReadyTimeout, opts.Config.Sync.PollInterval); err != nil {
		return WrapExitError(ExitCommandError, "store not ready", err)
	}

	key := s.coord.Key()
	v, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read game", err)
	}
	if !ok {
		return NewExitError(ExitFailure, fmt.Sprintf("no game stored under %s", key))
	}
	st, err := game.Decode(v.Data)
	if err != nil {
		return WrapExitError(ExitFailure, "stored game is malformed", err)
	}

	return writeGame(opts, cmd, newGameView(opts.Config.InstanceName(), key, st))
}

func writeGame(opts *RootOptions, cmd *cobra.Command, view GameView) error {
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return f.Success(view)
	}
	f.VerboseLog("instance %s (key %s)", view.Instance, view.Key)
	fmt.Fprint(cmd.OutOrStdout(), render.Format(render.Derive(view.State)))
	return nil
}
