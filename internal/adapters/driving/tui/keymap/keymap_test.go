package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.Contains(t, km.Quit.Keys(), "q")
	assert.Contains(t, km.Quit.Keys(), "ctrl+c")
	assert.Equal(t, []string{"enter"}, km.Advance.Keys())
	assert.Equal(t, []string{"esc"}, km.Retreat.Keys())
	assert.Equal(t, []string{"ctrl+r"}, km.Restart.Keys())
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("tab", km.Next))
	assert.True(t, Matches("down", km.Next))
	assert.True(t, Matches("shift+tab", km.Prev))
	assert.False(t, Matches("x", km.Quit))
}

func TestHelpSets(t *testing.T) {
	km := DefaultKeyMap()

	assert.Len(t, km.ShortHelp(), 4)
	assert.Len(t, km.ResultsHelp(), 3)
	assert.Len(t, km.FullHelp(), 3)
	for _, b := range km.ShortHelp() {
		assert.NotEmpty(t, b.Help().Desc)
	}
}
