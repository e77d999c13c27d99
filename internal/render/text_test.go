package render

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FireRat666/Banter-Reversi/internal/game"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestFormat_Golden(t *testing.T) {
	afterMove := game.New()
	require.True(t, afterMove.ApplyMove(2, 3))

	finished := game.GameState{
		Board: game.MustParseBoard(
			"BBBBBBBB",
			"BBBBBBBB",
			"BBBBBBBB",
			"BBBBBBBB",
			"BWWWWWWW",
			"WWWWWWWW",
			"WWWWWWWW",
			"WWWWWWWW",
		),
		CurrentPlayer: game.Black,
		Winner:        game.WinnerBlack,
		GameOver:      true,
	}

	draw := game.NewState()
	draw.GameOver = true
	draw.Winner = game.WinnerDraw

	tests := []struct {
		name  string
		state game.GameState
	}{
		{"opening", game.NewState()},
		{"after_first_move", afterMove.State()},
		{"black_wins", finished},
		{"draw", draw},
	}

	g := newGoldie(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g.Assert(t, tt.name, []byte(Format(Derive(tt.state))))
		})
	}
}

func TestStatus(t *testing.T) {
	st := game.NewState()
	assert.Equal(t, "Black (X) to move. Black 2, White 2", Status(Derive(st)))

	st.CurrentPlayer = game.White
	assert.Equal(t, "White (O) to move. Black 2, White 2", Status(Derive(st)))

	st.GameOver = true
	st.Winner = game.WinnerWhite
	assert.Equal(t, "Game over: White wins. Black 2, White 2", Status(Derive(st)))
}

func TestText_WritesEachUpdate(t *testing.T) {
	var buf bytes.Buffer
	txt := NewText(&buf)

	txt.Update(Derive(game.NewState()))
	txt.Update(Derive(game.NewState()))

	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("to move")))
}
