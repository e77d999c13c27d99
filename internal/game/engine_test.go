package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// loadBoard creates an engine positioned on the given board.
func loadBoard(t *testing.T, player Cell, rows ...string) *Engine {
	t.Helper()
	b, err := ParseBoard(rows...)
	require.NoError(t, err)
	e := New()
	e.LoadState(GameState{Board: b, CurrentPlayer: player})
	return e
}

func TestNew_OpeningPosition(t *testing.T) {
	e := New()

	assert.Equal(t, White, mustCell(t, e, 3, 3))
	assert.Equal(t, Black, mustCell(t, e, 3, 4))
	assert.Equal(t, Black, mustCell(t, e, 4, 3))
	assert.Equal(t, White, mustCell(t, e, 4, 4))

	black, white, empty := e.Counts()
	assert.Equal(t, 2, black)
	assert.Equal(t, 2, white)
	assert.Equal(t, 60, empty)

	assert.Equal(t, Black, e.CurrentPlayer())
	assert.Equal(t, WinnerNone, e.Winner())
	assert.False(t, e.GameOver())
}

func TestApplyMove_OpeningCapture(t *testing.T) {
	e := New()

	require.True(t, e.ApplyMove(2, 3))

	assert.Equal(t, Black, mustCell(t, e, 2, 3))
	assert.Equal(t, Black, mustCell(t, e, 3, 3), "(3,3) should be flipped")
	black, white, _ := e.Counts()
	assert.Equal(t, 4, black)
	assert.Equal(t, 1, white)
	assert.Equal(t, White, e.CurrentPlayer())
	assert.False(t, e.ExtraTurn())
}

func TestApplyMove_RejectedLeavesStateUntouched(t *testing.T) {
	e := New()
	before := e.State()

	assert.False(t, e.ApplyMove(0, 0), "corner captures nothing")
	assert.False(t, e.ApplyMove(3, 3), "occupied cell")
	assert.Equal(t, before, e.State())
}

func TestTryMove_ErrorCodes(t *testing.T) {
	e := New()

	err := e.TryMove(0, 0)
	require.Error(t, err)
	assert.True(t, IsInvalidMove(err))

	err = e.TryMove(8, 0)
	require.Error(t, err)
	assert.True(t, IsInvalidCoordinate(err))

	err = e.TryMove(-1, 3)
	assert.True(t, IsInvalidCoordinate(err))

	e.LoadState(GameState{Board: OpeningBoard(), CurrentPlayer: Black, Winner: WinnerDraw, GameOver: true})
	err = e.TryMove(2, 3)
	require.Error(t, err)
	assert.True(t, IsGameOver(err))
}

func TestComputeCaptures(t *testing.T) {
	e := New()

	caps, err := e.ComputeCaptures(2, 3, Black)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{Row: 3, Col: 3}}, caps)

	caps, err = e.ComputeCaptures(3, 3, Black)
	require.NoError(t, err)
	assert.Empty(t, caps, "occupied target yields no captures")

	caps, err = e.ComputeCaptures(0, 0, White)
	require.NoError(t, err)
	assert.Empty(t, caps)

	_, err = e.ComputeCaptures(0, 8, Black)
	assert.True(t, IsInvalidCoordinate(err))

	_, err = e.ComputeCaptures(0, 0, Empty)
	var ge *Error
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, ErrCodeInvalidPlayer, ge.Code)
}

func TestComputeCaptures_MultipleRays(t *testing.T) {
	e := loadBoard(t, Black,
		"B.B.B...",
		".WWW....",
		"BW.WB...",
		".WWW....",
		"B.B.B...",
		"........",
		"........",
		"........",
	)

	caps, err := e.ComputeCaptures(2, 2, Black)
	require.NoError(t, err)
	assert.Len(t, caps, 8, "all eight rays close on black")
	assert.ElementsMatch(t, []Pos{
		{1, 1}, {1, 2}, {1, 3},
		{2, 1}, {2, 3},
		{3, 1}, {3, 2}, {3, 3},
	}, caps)
}

func TestComputeCaptures_RayNeedsClosingPiece(t *testing.T) {
	e := loadBoard(t, Black,
		"BWW.....",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		".......W",
	)

	caps, err := e.ComputeCaptures(0, 3, Black)
	require.NoError(t, err)
	assert.Equal(t, []Pos{{0, 2}, {0, 1}}, caps)

	// Run ending at the edge contributes nothing.
	caps, err = e.ComputeCaptures(7, 6, Black)
	require.NoError(t, err)
	assert.Empty(t, caps)
}

func TestCaptures_ColourSwapSymmetry(t *testing.T) {
	boards := []Board{OpeningBoard()}

	e := New()
	for i := 0; i < 20 && !e.GameOver(); i++ {
		moves := e.ValidMoves(e.CurrentPlayer())
		require.NotEmpty(t, moves)
		require.True(t, e.ApplyMove(moves[len(moves)/2].Row, moves[len(moves)/2].Col))
		boards = append(boards, e.State().Board)
	}

	for i, b := range boards {
		swapped := b.Swapped()
		for r := 0; r < Size; r++ {
			for c := 0; c < Size; c++ {
				assert.Equal(t, b.Captures(r, c, Black), swapped.Captures(r, c, White),
					"board %d cell (%d,%d)", i, r, c)
				assert.Equal(t, b.Captures(r, c, White), swapped.Captures(r, c, Black),
					"board %d cell (%d,%d)", i, r, c)
			}
		}
	}
}

func TestAdvanceTurn_ForcedExtraTurn(t *testing.T) {
	e := loadBoard(t, Black,
		"BW......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"BW......",
	)

	require.True(t, e.ApplyMove(7, 2))

	assert.Equal(t, Black, e.CurrentPlayer(), "white has no reply, black moves again")
	assert.True(t, e.ExtraTurn())
	assert.False(t, e.GameOver())
	assert.False(t, e.HasAnyValidMove(White))
	assert.True(t, e.HasAnyValidMove(Black))
}

func TestAdvanceTurn_NeitherCanMoveEndsGame(t *testing.T) {
	e := loadBoard(t, Black,
		"BW......",
		"........",
		"........",
		"........",
		"........",
		"........",
		"........",
		"B.......",
	)

	require.True(t, e.ApplyMove(0, 2))

	assert.True(t, e.GameOver())
	assert.Equal(t, WinnerBlack, e.Winner())
	assert.False(t, e.ExtraTurn())
	assert.False(t, e.ApplyMove(1, 1), "no moves after game over")
}

func TestAdvanceTurn_FullBoardBlackWins(t *testing.T) {
	e := loadBoard(t, Black,
		".WBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"BWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
	)

	require.True(t, e.ApplyMove(0, 0))

	black, white, empty := e.Counts()
	assert.Equal(t, 33, black)
	assert.Equal(t, 31, white)
	assert.Equal(t, 0, empty)
	assert.True(t, e.GameOver())
	assert.Equal(t, WinnerBlack, e.Winner())
}

func TestAdvanceTurn_FullBoardDraw(t *testing.T) {
	e := loadBoard(t, Black,
		".WBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"WWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
	)

	require.True(t, e.ApplyMove(0, 0))

	assert.True(t, e.GameOver())
	assert.Equal(t, WinnerDraw, e.Winner())
}

func TestAdvanceTurn_FullBoardWhiteWins(t *testing.T) {
	b := MustParseBoard(
		".WBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"BBBBBBBB",
		"BWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
		"WWWWWWWW",
	).Swapped()
	e := New()
	e.LoadState(GameState{Board: b, CurrentPlayer: White})

	require.True(t, e.ApplyMove(0, 0))

	assert.True(t, e.GameOver())
	assert.Equal(t, WinnerWhite, e.Winner())
}

func TestPlaythrough_Invariants(t *testing.T) {
	e := New()
	_, _, prevEmpty := e.Counts()

	for moves := 0; !e.GameOver(); moves++ {
		require.Less(t, moves, 60, "a game has at most 60 moves")

		player := e.CurrentPlayer()
		valid := e.ValidMoves(player)
		require.NotEmpty(t, valid, "active player must have a move while the game runs")
		require.True(t, e.ApplyMove(valid[0].Row, valid[0].Col))

		black, white, empty := e.Counts()
		assert.Equal(t, 64, black+white+empty)
		assert.Equal(t, prevEmpty-1, empty, "each move fills exactly one cell")
		prevEmpty = empty

		st := e.State()
		assert.Equal(t, st.GameOver, st.Winner != WinnerNone)
	}
}

func TestAdvanceTurn_Alternation(t *testing.T) {
	e := New()
	require.True(t, e.ApplyMove(2, 3))
	assert.Equal(t, White, e.CurrentPlayer())
	require.True(t, e.ApplyMove(2, 2))
	assert.Equal(t, Black, e.CurrentPlayer())
}

func TestStateLoadState_RoundTrip(t *testing.T) {
	src := New()
	require.True(t, src.ApplyMove(2, 3))
	require.True(t, src.ApplyMove(2, 2))

	snap := src.State()
	dst := New()
	dst.LoadState(snap)

	assert.Equal(t, snap, dst.State())
	assert.Equal(t, src.CurrentPlayer(), dst.CurrentPlayer())
	assert.Equal(t, src.Winner(), dst.Winner())
	assert.Equal(t, src.GameOver(), dst.GameOver())
}

func TestState_IsACopy(t *testing.T) {
	e := New()
	snap := e.State()
	snap.Board[0][0] = Black

	assert.Equal(t, Empty, mustCell(t, e, 0, 0))
}

func TestReset(t *testing.T) {
	e := New()
	require.True(t, e.ApplyMove(2, 3))
	e.Reset()

	assert.Equal(t, NewState(), e.State())
	assert.False(t, e.ExtraTurn())
}

func mustCell(t *testing.T, e *Engine, row, col int) Cell {
	t.Helper()
	c, err := e.Cell(row, col)
	require.NoError(t, err)
	return c
}
