package property

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInstanceKey(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{"plain", "https://example.com/room", "https://example.com/room"},
		{"query stripped", "https://example.com/room?user=1&x=2", "https://example.com/room"},
		{"fragment stripped", "https://example.com/room#top", "https://example.com/room"},
		{"whitespace trimmed", "  https://example.com/room?x  ", "https://example.com/room"},
		{"nfc normalized", "https://example.com/cafe\u0301", "https://example.com/caf\u00e9"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InstanceKey(tt.location))
		})
	}
}

func TestPropertyKey(t *testing.T) {
	assert.Equal(t, "reversi_game_https://example.com/room", PropertyKey("https://example.com/room"))
}
