package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/FireRat666/Banter-Reversi/internal/game"
)

// Symbols used by Format.
const (
	SymbolEmpty = '.'
	SymbolBlack = 'X'
	SymbolWhite = 'O'
	SymbolValid = '*'
)

// Format draws s as an ASCII board followed by a status line:
//
//	    0 1 2 3 4 5 6 7
//	  +-----------------+
//	0 | . . . . . . . . |
//	...
//	  +-----------------+
//	Black (X) to move. Black 2, White 2
func Format(s State) string {
	var b strings.Builder
	b.WriteString("    0 1 2 3 4 5 6 7\n")
	b.WriteString("  +-----------------+\n")
	for r := 0; r < game.Size; r++ {
		fmt.Fprintf(&b, "%d |", r)
		for c := 0; c < game.Size; c++ {
			b.WriteByte(' ')
			b.WriteByte(symbol(s.Cells[r][c]))
		}
		b.WriteString(" |\n")
	}
	b.WriteString("  +-----------------+\n")
	b.WriteString(Status(s))
	b.WriteByte('\n')
	return b.String()
}

// Status is the one-line summary under the board.
func Status(s State) string {
	if s.GameOver {
		outcome := "draw"
		if s.Winner != game.WinnerDraw {
			outcome = playerName(s.Winner.Color()) + " wins"
		}
		return fmt.Sprintf("Game over: %s. Black %d, White %d", outcome, s.Black, s.White)
	}
	return fmt.Sprintf("%s (%c) to move. Black %d, White %d",
		playerName(s.CurrentPlayer), pieceSymbol(s.CurrentPlayer), s.Black, s.White)
}

func symbol(v CellView) byte {
	if v.Occupant == game.Empty && v.HighlightValid {
		return SymbolValid
	}
	return pieceSymbol(v.Occupant)
}

func pieceSymbol(c game.Cell) byte {
	switch c {
	case game.Black:
		return SymbolBlack
	case game.White:
		return SymbolWhite
	default:
		return SymbolEmpty
	}
}

func playerName(c game.Cell) string {
	switch c {
	case game.Black:
		return "Black"
	case game.White:
		return "White"
	default:
		return "Nobody"
	}
}

// Text writes every update to w. It is safe for concurrent use.
type Text struct {
	mu sync.Mutex
	w  io.Writer
}

// NewText creates a Text consumer.
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

// Update implements Consumer.
func (t *Text) Update(s State) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = io.WriteString(t.w, Format(s))
}
