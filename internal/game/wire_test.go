package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_OpeningWireFormat(t *testing.T) {
	data, err := Encode(NewState())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))

	assert.Equal(t, float64(1), raw["currentPlayer"])
	assert.Nil(t, raw["winner"])
	assert.Equal(t, false, raw["gameOver"])

	board, ok := raw["board"].([]any)
	require.True(t, ok)
	require.Len(t, board, Size)
	row3, ok := board[3].([]any)
	require.True(t, ok)
	assert.Equal(t, []any{0.0, 0.0, 0.0, 2.0, 1.0, 0.0, 0.0, 0.0}, row3)
}

func TestEncodeDecode_Idempotent(t *testing.T) {
	e := New()
	require.True(t, e.ApplyMove(2, 3))
	require.True(t, e.ApplyMove(2, 2))

	data, err := Encode(e.State())
	require.NoError(t, err)
	got, err := Decode(data)
	require.NoError(t, err)

	fresh := New()
	fresh.LoadState(got)
	assert.Equal(t, e.State(), fresh.State())
}

func TestWinner_JSON(t *testing.T) {
	tests := []struct {
		winner Winner
		json   string
	}{
		{WinnerNone, "null"},
		{WinnerBlack, "1"},
		{WinnerWhite, "2"},
		{WinnerDraw, `"draw"`},
	}

	for _, tt := range tests {
		t.Run(tt.winner.String(), func(t *testing.T) {
			b, err := json.Marshal(tt.winner)
			require.NoError(t, err)
			assert.Equal(t, tt.json, string(b))

			var w Winner
			require.NoError(t, json.Unmarshal([]byte(tt.json), &w))
			assert.Equal(t, tt.winner, w)
		})
	}
}

func TestDecode_FinishedGame(t *testing.T) {
	st := NewState()
	st.GameOver = true
	st.Winner = WinnerDraw

	data, err := Encode(st)
	require.NoError(t, err)
	assert.Contains(t, data, `"winner":"draw"`)
	assert.Contains(t, data, `"gameOver":true`)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestDecode_MissingWinnerIsNone(t *testing.T) {
	data, err := Encode(NewState())
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal([]byte(data), &raw))
	delete(raw, "winner")
	trimmed, err := json.Marshal(raw)
	require.NoError(t, err)

	got, err := Decode(string(trimmed))
	require.NoError(t, err)
	assert.Equal(t, WinnerNone, got.Winner)
}

func TestDecode_Malformed(t *testing.T) {
	row := `[0,0,0,0,0,0,0,0]`
	board := "[" + row + "," + row + "," + row + "," + row + "," + row + "," + row + "," + row + "," + row + "]"

	tests := []struct {
		name string
		data string
	}{
		{"not json", "{not json"},
		{"empty object", "{}"},
		{"short board", `{"board":[` + row + `],"currentPlayer":1,"winner":null,"gameOver":false}`},
		{"short row", `{"board":[[0],` + row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `],"currentPlayer":1,"winner":null,"gameOver":false}`},
		{"bad cell", `{"board":[[0,0,0,0,0,0,0,3],` + row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `,` + row + `],"currentPlayer":1,"winner":null,"gameOver":false}`},
		{"bad player", `{"board":` + board + `,"currentPlayer":0,"winner":null,"gameOver":false}`},
		{"bad winner", `{"board":` + board + `,"currentPlayer":2,"winner":"black","gameOver":true}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data)
			assert.Error(t, err)
		})
	}
}
