// Package scenario replays scripted games through the sync coordinator.
//
// A scenario names one or more peers sharing an in-process space, an
// optional starting position, a list of steps (moves or resets, each
// performed by one peer and then delivered to the others) and the expected
// final position. Every peer must end on the same state.
package scenario

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FireRat666/Banter-Reversi/internal/game"
)

// Scenario is a scripted game.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Peers lists the participants. Defaults to a single "local" peer.
	Peers []string `yaml:"peers,omitempty"`

	// Board is the starting position in game.ParseBoard format. When
	// absent the first peer starts a fresh game.
	Board []string `yaml:"board,omitempty"`

	// Player moves first on Board. Defaults to black.
	Player string `yaml:"player,omitempty"`

	// Steps are performed in order.
	Steps []Step `yaml:"steps"`

	// Expect describes the final state.
	Expect Expect `yaml:"expect"`
}

// Step is one action by one peer.
type Step struct {
	// Peer performs the step. Defaults to the first peer.
	Peer string `yaml:"peer,omitempty"`

	// Move is a [row, col] placement.
	Move []int `yaml:"move,omitempty"`

	// Reset restarts the game instead of moving.
	Reset bool `yaml:"reset,omitempty"`

	// Player, when set, must be the side to move before the step.
	Player string `yaml:"player,omitempty"`

	// Outcome is the expected result: ok (default), invalid_move,
	// invalid_coordinate or game_over.
	Outcome string `yaml:"outcome,omitempty"`
}

// Expect is a subset match on the final state. Unset fields are not
// checked.
type Expect struct {
	Board         []string `yaml:"board,omitempty"`
	CurrentPlayer string   `yaml:"currentPlayer,omitempty"`
	Winner        string   `yaml:"winner,omitempty"`
	GameOver      *bool    `yaml:"gameOver,omitempty"`
	Black         *int     `yaml:"black,omitempty"`
	White         *int     `yaml:"white,omitempty"`
	ValidMoves    [][]int  `yaml:"validMoves,omitempty"`
}

// Step outcomes.
const (
	OutcomeOK                = "ok"
	OutcomeInvalidMove       = "invalid_move"
	OutcomeInvalidCoordinate = "invalid_coordinate"
	OutcomeGameOver          = "game_over"
	OutcomeBusy              = "busy"
)

const defaultPeer = "local"

// Load reads and validates a scenario file. Unknown fields are rejected.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var s Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &s, nil
}

func (s *Scenario) peers() []string {
	if len(s.Peers) == 0 {
		return []string{defaultPeer}
	}
	return s.Peers
}

func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	known := make(map[string]bool)
	for _, p := range s.peers() {
		if p == "" {
			return fmt.Errorf("peers: empty peer name")
		}
		if known[p] {
			return fmt.Errorf("peers: duplicate peer %q", p)
		}
		known[p] = true
	}

	if s.Board != nil {
		if _, err := game.ParseBoard(s.Board...); err != nil {
			return fmt.Errorf("board: %w", err)
		}
	}
	if s.Player != "" {
		if _, err := game.ParsePlayer(s.Player); err != nil {
			return fmt.Errorf("player: %w", err)
		}
	}

	for i, step := range s.Steps {
		if step.Peer != "" && !known[step.Peer] {
			return fmt.Errorf("steps[%d]: unknown peer %q", i, step.Peer)
		}
		if step.Reset == (step.Move != nil) {
			return fmt.Errorf("steps[%d]: exactly one of move or reset is required", i)
		}
		if step.Move != nil && len(step.Move) != 2 {
			return fmt.Errorf("steps[%d]: move must be [row, col]", i)
		}
		if step.Player != "" {
			if _, err := game.ParsePlayer(step.Player); err != nil {
				return fmt.Errorf("steps[%d].player: %w", i, err)
			}
		}
		switch step.Outcome {
		case "", OutcomeOK, OutcomeInvalidMove, OutcomeInvalidCoordinate, OutcomeGameOver, OutcomeBusy:
		default:
			return fmt.Errorf("steps[%d]: unknown outcome %q", i, step.Outcome)
		}
	}

	return s.Expect.validate()
}

func (e *Expect) validate() error {
	if e.Board != nil {
		if _, err := game.ParseBoard(e.Board...); err != nil {
			return fmt.Errorf("expect.board: %w", err)
		}
	}
	if e.CurrentPlayer != "" {
		if _, err := game.ParsePlayer(e.CurrentPlayer); err != nil {
			return fmt.Errorf("expect.currentPlayer: %w", err)
		}
	}
	if _, err := game.ParseWinner(e.Winner); err != nil {
		return fmt.Errorf("expect.winner: %w", err)
	}
	for i, m := range e.ValidMoves {
		if len(m) != 2 {
			return fmt.Errorf("expect.validMoves[%d]: must be [row, col]", i)
		}
	}
	return nil
}
