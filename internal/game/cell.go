package game

import "fmt"

// Size is the board edge length.
const Size = 8

// Cell is the occupant of a board square. The numeric values are the
// wire encoding and must not change.
type Cell int

const (
	Empty Cell = 0
	Black Cell = 1
	White Cell = 2
)

// Opponent returns the other colour. Empty has no opponent and returns Empty.
func (c Cell) Opponent() Cell {
	switch c {
	case Black:
		return White
	case White:
		return Black
	default:
		return Empty
	}
}

// IsPlayer reports whether c is Black or White.
func (c Cell) IsPlayer() bool {
	return c == Black || c == White
}

func (c Cell) String() string {
	switch c {
	case Empty:
		return "empty"
	case Black:
		return "black"
	case White:
		return "white"
	default:
		return fmt.Sprintf("cell(%d)", int(c))
	}
}

// ParsePlayer converts "black"/"white" (or "1"/"2") to a Cell.
func ParsePlayer(s string) (Cell, error) {
	switch s {
	case "black", "Black", "BLACK", "1", "X", "x":
		return Black, nil
	case "white", "White", "WHITE", "2", "O", "o":
		return White, nil
	}
	return Empty, fmt.Errorf("unknown player %q", s)
}

// Winner is the outcome of a finished game.
type Winner int

const (
	WinnerNone Winner = iota
	WinnerBlack
	WinnerWhite
	WinnerDraw
)

func (w Winner) String() string {
	switch w {
	case WinnerNone:
		return "none"
	case WinnerBlack:
		return "black"
	case WinnerWhite:
		return "white"
	case WinnerDraw:
		return "draw"
	default:
		return fmt.Sprintf("winner(%d)", int(w))
	}
}

// Color returns the winning colour, or Empty for a draw or an unfinished game.
func (w Winner) Color() Cell {
	switch w {
	case WinnerBlack:
		return Black
	case WinnerWhite:
		return White
	default:
		return Empty
	}
}

// ParseWinner accepts the String() forms.
func ParseWinner(s string) (Winner, error) {
	switch s {
	case "", "none":
		return WinnerNone, nil
	case "black":
		return WinnerBlack, nil
	case "white":
		return WinnerWhite, nil
	case "draw":
		return WinnerDraw, nil
	}
	return WinnerNone, fmt.Errorf("unknown winner %q", s)
}

// Pos is a (row, col) board coordinate.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Pos) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// InBounds reports whether (row, col) lies on the board.
func InBounds(row, col int) bool {
	return row >= 0 && row < Size && col >= 0 && col < Size
}
