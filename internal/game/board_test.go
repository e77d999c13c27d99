package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBoard_RoundTrip(t *testing.T) {
	b := OpeningBoard()
	parsed, err := ParseBoard(b.Rows()...)
	require.NoError(t, err)
	assert.Equal(t, b, parsed)
}

func TestParseBoard_Errors(t *testing.T) {
	_, err := ParseBoard("........")
	assert.Error(t, err)

	rows := OpeningBoard().Rows()
	rows[2] = "......."
	_, err = ParseBoard(rows...)
	assert.Error(t, err)

	rows = OpeningBoard().Rows()
	rows[5] = "...Z...."
	_, err = ParseBoard(rows...)
	assert.Error(t, err)
}

func TestParseBoard_AcceptsSpacedRows(t *testing.T) {
	b, err := ParseBoard(
		". . . . . . . .",
		". . . . . . . .",
		". . . . . . . .",
		". . . O X . . .",
		". . . X O . . .",
		". . . . . . . .",
		". . . . . . . .",
		". . . . . . . .",
	)
	require.NoError(t, err)
	assert.Equal(t, OpeningBoard(), b)
}

func TestBoard_ValidMovesOpening(t *testing.T) {
	b := OpeningBoard()
	assert.Equal(t, []Pos{{2, 3}, {3, 2}, {4, 5}, {5, 4}}, b.ValidMoves(Black))
	assert.Equal(t, []Pos{{2, 4}, {3, 5}, {4, 2}, {5, 3}}, b.ValidMoves(White))
}

func TestBoard_Swapped(t *testing.T) {
	b := OpeningBoard()
	s := b.Swapped()
	assert.Equal(t, Black, s[3][3])
	assert.Equal(t, White, s[3][4])
	assert.Equal(t, Empty, s[0][0])
	assert.Equal(t, White, b[3][3], "Swapped must not modify the receiver")
}

func TestCell_Opponent(t *testing.T) {
	assert.Equal(t, White, Black.Opponent())
	assert.Equal(t, Black, White.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
}

func TestParsePlayerAndWinner(t *testing.T) {
	p, err := ParsePlayer("white")
	require.NoError(t, err)
	assert.Equal(t, White, p)
	_, err = ParsePlayer("green")
	assert.Error(t, err)

	w, err := ParseWinner("draw")
	require.NoError(t, err)
	assert.Equal(t, WinnerDraw, w)
	assert.Equal(t, Black, WinnerBlack.Color())
	assert.Equal(t, Empty, WinnerDraw.Color())
}

// Board methods work on non-addressable values such as call results.
func TestBoard_MethodsOnReturnedValue(t *testing.T) {
	assert.Len(t, OpeningBoard().Captures(2, 3, Black), 1)
	assert.True(t, OpeningBoard().HasMove(White))
	assert.Len(t, OpeningBoard().ValidMoves(Black), 4)

	black, white, empty := OpeningBoard().Count()
	assert.Equal(t, [3]int{2, 2, 60}, [3]int{black, white, empty})
	assert.False(t, OpeningBoard().Full())
	assert.Equal(t, "...WB...", OpeningBoard().Rows()[3])
	assert.Equal(t, OpeningBoard(), OpeningBoard().Swapped().Swapped())
}
