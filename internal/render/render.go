// Package render derives the per-cell view handed to rendering
// collaborators and ships two of them: a plain-text formatter and a
// termbox terminal UI.
package render

import "github.com/FireRat666/Banter-Reversi/internal/game"

// CellView is what a renderer needs to draw one square.
type CellView struct {
	Occupant       game.Cell `json:"occupant"`
	HighlightValid bool      `json:"highlightValid"`
	IsWinnerCell   bool      `json:"isWinnerCell"`
}

// State is the derived view of a game. Renderers never see the raw engine.
type State struct {
	Cells         [game.Size][game.Size]CellView `json:"cells"`
	CurrentPlayer game.Cell                      `json:"currentPlayer"`
	GameOver      bool                           `json:"gameOver"`
	Winner        game.Winner                    `json:"winner"`
	Black         int                            `json:"black"`
	White         int                            `json:"white"`
}

// Derive computes the view of st. Empty cells in the active player's
// legal-move set are highlighted while the game runs; once it is over the
// winner's pieces are flagged instead.
func Derive(st game.GameState) State {
	out := State{
		CurrentPlayer: st.CurrentPlayer,
		GameOver:      st.GameOver,
		Winner:        st.Winner,
	}
	out.Black, out.White, _ = st.Board.Count()

	winner := st.Winner.Color()
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			occupant := st.Board[r][c]
			view := CellView{Occupant: occupant}
			if st.GameOver {
				view.IsWinnerCell = winner != game.Empty && occupant == winner
			} else if occupant == game.Empty {
				view.HighlightValid = len(st.Board.Captures(r, c, st.CurrentPlayer)) > 0
			}
			out.Cells[r][c] = view
		}
	}
	return out
}

// ValidMoves lists the highlighted cells in row-major order.
func (s State) ValidMoves() []game.Pos {
	var moves []game.Pos
	for r := 0; r < game.Size; r++ {
		for c := 0; c < game.Size; c++ {
			if s.Cells[r][c].HighlightValid {
				moves = append(moves, game.Pos{Row: r, Col: c})
			}
		}
	}
	return moves
}

// Consumer receives render states. Update must not block: the caller holds
// the sync lock while emitting.
type Consumer interface {
	Update(State)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(State)

// Update implements Consumer.
func (f ConsumerFunc) Update(s State) { f(s) }

// Discard drops every update.
var Discard Consumer = ConsumerFunc(func(State) {})

// Input is where renderers deliver user intent.
type Input interface {
	Click(row, col int)
	Reset()
}
