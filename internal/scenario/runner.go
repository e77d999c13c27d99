package scenario

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/FireRat666/Banter-Reversi/internal/coordinator"
	"github.com/FireRat666/Banter-Reversi/internal/game"
	"github.com/FireRat666/Banter-Reversi/internal/property"
	"github.com/FireRat666/Banter-Reversi/internal/render"
)

const instance = "scenario"

// Result is the outcome of one scenario run.
type Result struct {
	Name   string         `json:"name"`
	Pass   bool           `json:"pass"`
	Errors []string       `json:"errors,omitempty"`
	Final  game.GameState `json:"final"`
}

func (r *Result) failf(format string, args ...any) {
	r.Pass = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Option configures Run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes coordinator logs. By default they are discarded.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) { c.logger = l }
}

type peer struct {
	name  string
	store *property.Peer
	coord *coordinator.Coordinator
}

// Run plays s on a fresh in-process space. Expectation mismatches are
// reported in the Result; the error return is reserved for failures of the
// run itself.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	space := property.NewSpace()
	var peers []*peer
	for _, name := range s.peers() {
		store := space.Join(name)
		defer store.Close()
		peers = append(peers, &peer{
			name:  name,
			store: store,
			coord: coordinator.New(game.New(), store, nil,
				coordinator.WithInstance(instance),
				coordinator.WithPollInterval(time.Millisecond),
				coordinator.WithLogger(cfg.logger.With("peer", name)),
			),
		})
	}
	key := peers[0].coord.Key()

	if s.Board != nil {
		start, err := s.start()
		if err != nil {
			return nil, err
		}
		data, err := game.Encode(start)
		if err != nil {
			return nil, err
		}
		if err := peers[0].store.SetPublic(ctx, key, data); err != nil {
			return nil, fmt.Errorf("seed board: %w", err)
		}
	}
	for _, p := range peers {
		if err := p.coord.WaitForInitialState(ctx); err != nil {
			return nil, fmt.Errorf("peer %s: %w", p.name, err)
		}
	}

	result := &Result{Name: s.Name, Pass: true}
	for i, step := range s.Steps {
		actor := peers[0]
		for _, p := range peers {
			if p.name == step.Peer {
				actor = p
			}
		}

		if step.Player != "" {
			want, _ := game.ParsePlayer(step.Player)
			if got := actor.coord.RenderState().CurrentPlayer; got != want {
				result.failf("steps[%d]: expected %s to move, got %s", i, want, got)
			}
		}

		var err error
		if step.Reset {
			err = actor.coord.HandleReset(ctx)
		} else {
			err = actor.coord.HandleLocalMove(ctx, step.Move[0], step.Move[1])
		}
		got, err := outcome(err)
		if err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		want := step.Outcome
		if want == "" {
			want = OutcomeOK
		}
		if got != want {
			result.failf("steps[%d]: expected outcome %s, got %s", i, want, got)
		}

		for _, p := range peers {
			if p == actor {
				continue
			}
			if err := p.coord.HandleRemoteChange(ctx, []string{key}); err != nil {
				result.failf("steps[%d]: peer %s: %v", i, p.name, err)
			}
		}
	}

	final := peers[0].coord.RenderState()
	for _, p := range peers[1:] {
		if p.coord.RenderState() != final {
			result.failf("peer %s diverged from %s", p.name, peers[0].name)
		}
	}

	v, ok, err := peers[0].store.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.New("no game state stored")
	}
	result.Final, err = game.Decode(v.Data)
	if err != nil {
		return nil, err
	}
	if render.Derive(result.Final) != final {
		result.failf("stored state differs from rendered state")
	}

	s.Expect.check(result, final)
	return result, nil
}

func (s *Scenario) start() (game.GameState, error) {
	board, err := game.ParseBoard(s.Board...)
	if err != nil {
		return game.GameState{}, err
	}
	player := game.Black
	if s.Player != "" {
		if player, err = game.ParsePlayer(s.Player); err != nil {
			return game.GameState{}, err
		}
	}
	return game.GameState{Board: board, CurrentPlayer: player}, nil
}

// outcome classifies a handler error. Errors that are not rejections are
// returned as is.
func outcome(err error) (string, error) {
	switch {
	case err == nil:
		return OutcomeOK, nil
	case game.IsInvalidCoordinate(err):
		return OutcomeInvalidCoordinate, nil
	case coordinator.IsInvalidMove(err):
		return OutcomeInvalidMove, nil
	case coordinator.IsGameOver(err):
		return OutcomeGameOver, nil
	case coordinator.IsBusy(err):
		return OutcomeBusy, nil
	default:
		return "", err
	}
}

func (e *Expect) check(r *Result, final render.State) {
	st := r.Final
	if e.Board != nil {
		want := game.MustParseBoard(e.Board...)
		if st.Board != want {
			r.failf("board mismatch:\nwant:\n%s\ngot:\n%s", want.String(), st.Board.String())
		}
	}
	if e.CurrentPlayer != "" {
		want, _ := game.ParsePlayer(e.CurrentPlayer)
		if st.CurrentPlayer != want {
			r.failf("currentPlayer: expected %s, got %s", want, st.CurrentPlayer)
		}
	}
	if e.Winner != "" {
		want, _ := game.ParseWinner(e.Winner)
		if st.Winner != want {
			r.failf("winner: expected %s, got %s", want, st.Winner)
		}
	}
	if e.GameOver != nil && st.GameOver != *e.GameOver {
		r.failf("gameOver: expected %t, got %t", *e.GameOver, st.GameOver)
	}
	if e.Black != nil && final.Black != *e.Black {
		r.failf("black: expected %d, got %d", *e.Black, final.Black)
	}
	if e.White != nil && final.White != *e.White {
		r.failf("white: expected %d, got %d", *e.White, final.White)
	}
	if e.ValidMoves != nil {
		want := make([]game.Pos, 0, len(e.ValidMoves))
		for _, m := range e.ValidMoves {
			want = append(want, game.Pos{Row: m[0], Col: m[1]})
		}
		got := final.ValidMoves()
		if !slices.Equal(want, got) {
			r.failf("validMoves: expected %v, got %v", want, got)
		}
	}
}
