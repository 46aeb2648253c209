package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"copy", Copy},
		{"MOVE", Move},
		{" symlink ", Symlink},
		{"Hardlink", Hardlink},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseMode("teleport")
	assert.Error(t, err)
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "copy", Copy.String())
	assert.Equal(t, "move", Move.String())
	assert.Equal(t, "symlink", Symlink.String())
	assert.Equal(t, "hardlink", Hardlink.String())
	assert.Equal(t, "Mode(7)", Mode(7).String())
	assert.Equal(t, "Mode(-1)", Mode(-1).String())
}

func TestMode_Valid(t *testing.T) {
	for _, m := range []Mode{Copy, Move, Symlink, Hardlink} {
		assert.True(t, m.Valid())
	}
	assert.False(t, Mode(-1).Valid())
	assert.False(t, Mode(4).Valid())
}

func TestMode_KeepsSource(t *testing.T) {
	assert.True(t, Copy.KeepsSource())
	assert.False(t, Move.KeepsSource())
	assert.True(t, Symlink.KeepsSource())
	assert.True(t, Hardlink.KeepsSource())
}
