package game

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// wireState mirrors the JSON layout shared with every peer.
type wireState struct {
	Board         [][]int         `json:"board"`
	CurrentPlayer int             `json:"currentPlayer"`
	Winner        json.RawMessage `json:"winner"`
	GameOver      bool            `json:"gameOver"`
}

// MarshalJSON encodes the state in the shared wire format.
func (s GameState) MarshalJSON() ([]byte, error) {
	board := make([][]int, Size)
	for r := 0; r < Size; r++ {
		board[r] = make([]int, Size)
		for c := 0; c < Size; c++ {
			board[r][c] = int(s.Board[r][c])
		}
	}
	winner, err := s.Winner.MarshalJSON()
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireState{
		Board:         board,
		CurrentPlayer: int(s.CurrentPlayer),
		Winner:        winner,
		GameOver:      s.GameOver,
	})
}

// UnmarshalJSON decodes the shared wire format. Only the shape is checked
// (8x8 cells in 0..2, a real player, a known winner); game legality is not.
func (s *GameState) UnmarshalJSON(data []byte) error {
	var w wireState
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if len(w.Board) != Size {
		return fmt.Errorf("board: want %d rows, got %d", Size, len(w.Board))
	}
	var out GameState
	for r, row := range w.Board {
		if len(row) != Size {
			return fmt.Errorf("board row %d: want %d cells, got %d", r, Size, len(row))
		}
		for c, v := range row {
			cell := Cell(v)
			if cell != Empty && !cell.IsPlayer() {
				return fmt.Errorf("board[%d][%d]: invalid cell %d", r, c, v)
			}
			out.Board[r][c] = cell
		}
	}
	out.CurrentPlayer = Cell(w.CurrentPlayer)
	if !out.CurrentPlayer.IsPlayer() {
		return fmt.Errorf("currentPlayer: invalid value %d", w.CurrentPlayer)
	}
	if len(w.Winner) > 0 {
		if err := out.Winner.UnmarshalJSON(w.Winner); err != nil {
			return err
		}
	}
	out.GameOver = w.GameOver
	*s = out
	return nil
}

// Encode serializes the state for publication.
func Encode(s GameState) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}
	return string(b), nil
}

// Decode parses a published state.
func Decode(data string) (GameState, error) {
	var s GameState
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return GameState{}, fmt.Errorf("decode state: %w", err)
	}
	return s, nil
}

// MarshalJSON encodes the winner as 1, 2, "draw" or null.
func (w Winner) MarshalJSON() ([]byte, error) {
	switch w {
	case WinnerNone:
		return []byte("null"), nil
	case WinnerBlack:
		return []byte("1"), nil
	case WinnerWhite:
		return []byte("2"), nil
	case WinnerDraw:
		return []byte(`"draw"`), nil
	}
	return nil, fmt.Errorf("winner: invalid value %d", int(w))
}

// UnmarshalJSON accepts 1, 2, "draw" or null.
func (w *Winner) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "null":
		*w = WinnerNone
	case "1":
		*w = WinnerBlack
	case "2":
		*w = WinnerWhite
	case `"draw"`:
		*w = WinnerDraw
	default:
		return fmt.Errorf("winner: invalid value %s", data)
	}
	return nil
}
