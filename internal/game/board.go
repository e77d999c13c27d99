package game

import (
	"fmt"
	"strings"
)

// Board is an 8x8 row-major grid. It is a value type: assigning or
// returning a Board copies every cell.
type Board [Size][Size]Cell

// directions lists the eight ray directions in a fixed order so capture
// sets come back in a deterministic order.
var directions = [8][2]int{
	{-1, -1}, {-1, 0}, {-1, 1},
	{0, -1}, {0, 1},
	{1, -1}, {1, 0}, {1, 1},
}

// OpeningBoard returns the standard starting position.
func OpeningBoard() Board {
	var b Board
	b[3][3] = White
	b[3][4] = Black
	b[4][3] = Black
	b[4][4] = White
	return b
}

// Captures returns the cells player would flip by placing at (row, col).
// The result is empty when the cell is occupied or no ray qualifies.
// Coordinates must already be in range.
func (b Board) Captures(row, col int, player Cell) []Pos {
	if b[row][col] != Empty || !player.IsPlayer() {
		return nil
	}
	opponent := player.Opponent()

	var captures []Pos
	for _, d := range directions {
		r, c := row+d[0], col+d[1]
		var run []Pos
		for InBounds(r, c) && b[r][c] == opponent {
			run = append(run, Pos{Row: r, Col: c})
			r += d[0]
			c += d[1]
		}
		// A ray counts only when it is closed by the mover's own piece.
		if len(run) > 0 && InBounds(r, c) && b[r][c] == player {
			captures = append(captures, run...)
		}
	}
	return captures
}

// HasMove reports whether player has at least one legal placement.
func (b Board) HasMove(player Cell) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if len(b.Captures(r, c, player)) > 0 {
				return true
			}
		}
	}
	return false
}

// ValidMoves lists every legal placement for player in row-major order.
func (b Board) ValidMoves(player Cell) []Pos {
	var moves []Pos
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if len(b.Captures(r, c, player)) > 0 {
				moves = append(moves, Pos{Row: r, Col: c})
			}
		}
	}
	return moves
}

// Count tallies the occupants of the board.
func (b Board) Count() (black, white, empty int) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			switch b[r][c] {
			case Black:
				black++
			case White:
				white++
			default:
				empty++
			}
		}
	}
	return black, white, empty
}

// Full reports whether no empty cell remains.
func (b Board) Full() bool {
	_, _, empty := b.Count()
	return empty == 0
}

// Swapped returns a copy with every Black and White exchanged.
func (b Board) Swapped() Board {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			b[r][c] = b[r][c].Opponent()
		}
	}
	return b
}

// ParseBoard builds a Board from eight rows of eight characters.
// '.' or '-' is empty, 'B'/'X' black and 'W'/'O' white; spaces are ignored.
func ParseBoard(rows ...string) (Board, error) {
	var b Board
	if len(rows) != Size {
		return b, fmt.Errorf("parse board: want %d rows, got %d", Size, len(rows))
	}
	for r, line := range rows {
		line = strings.ReplaceAll(line, " ", "")
		if len(line) != Size {
			return b, fmt.Errorf("parse board: row %d: want %d cells, got %d", r, Size, len(line))
		}
		for c := 0; c < Size; c++ {
			switch line[c] {
			case '.', '-':
				b[r][c] = Empty
			case 'B', 'b', 'X', 'x':
				b[r][c] = Black
			case 'W', 'w', 'O', 'o':
				b[r][c] = White
			default:
				return b, fmt.Errorf("parse board: row %d col %d: unknown cell %q", r, c, line[c])
			}
		}
	}
	return b, nil
}

// MustParseBoard is ParseBoard for fixtures; it panics on error.
func MustParseBoard(rows ...string) Board {
	b, err := ParseBoard(rows...)
	if err != nil {
		panic(err)
	}
	return b
}

// Rows renders the board in the ParseBoard format.
func (b Board) Rows() []string {
	rows := make([]string, Size)
	for r := 0; r < Size; r++ {
		var sb strings.Builder
		for c := 0; c < Size; c++ {
			switch b[r][c] {
			case Black:
				sb.WriteByte('B')
			case White:
				sb.WriteByte('W')
			default:
				sb.WriteByte('.')
			}
		}
		rows[r] = sb.String()
	}
	return rows
}

func (b Board) String() string {
	return strings.Join(b.Rows(), "\n")
}
