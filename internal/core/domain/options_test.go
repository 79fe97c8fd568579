package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOptionsIndex(t *testing.T) {
	grid := Grid{
		{"Texas", "Ohio", ""},
		{"Dallas", "Columbus", "orphan"},
		{" Austin ", "", ""},
		{"", "Dayton", nil},
	}

	index := BuildOptionsIndex(grid)

	assert.Equal(t, []string{"Texas", "Ohio"}, index.Categories)
	assert.Equal(t, []string{"Dallas", "Austin"}, index.OptionsFor("Texas"))
	assert.Equal(t, []string{"Columbus", "Dayton"}, index.OptionsFor("Ohio"))
	assert.False(t, index.Has(""), "blank header columns are skipped")
}

// TestBuildOptionsIndex_Empty tests that an empty range yields an empty index
func TestBuildOptionsIndex_Empty(t *testing.T) {
	index := BuildOptionsIndex(Grid{})

	assert.True(t, index.IsEmpty())
	assert.Equal(t, 0, index.Len())
	assert.Nil(t, index.OptionsFor("Texas"))
}

func TestBuildOptionsIndex_HeaderOnly(t *testing.T) {
	index := BuildOptionsIndex(Grid{{"Texas"}})

	require.Equal(t, 1, index.Len())
	assert.Empty(t, index.OptionsFor("Texas"))
}

// TestBuildOptionsIndex_DuplicateHeader tests that a repeated label keeps its
// first position and takes the later column's options
func TestBuildOptionsIndex_DuplicateHeader(t *testing.T) {
	grid := Grid{
		{"Texas", "Ohio", "Texas"},
		{"Dallas", "Columbus", "Houston"},
	}

	index := BuildOptionsIndex(grid)

	assert.Equal(t, []string{"Texas", "Ohio"}, index.Categories)
	assert.Equal(t, []string{"Houston"}, index.OptionsFor("Texas"))
}

func TestBuildOptionsIndex_NumericCells(t *testing.T) {
	index := BuildOptionsIndex(Grid{{2024.0}, {1.5}})

	assert.Equal(t, []string{"2024"}, index.Categories)
	assert.Equal(t, []string{"1.5"}, index.OptionsFor("2024"))
}

func TestOptionsIndex_Contains(t *testing.T) {
	index := BuildOptionsIndex(Grid{{"Texas"}, {"Dallas"}})

	assert.True(t, index.Contains("Texas", "Dallas"))
	assert.False(t, index.Contains("Texas", "Austin"))
	assert.False(t, index.Contains("Ohio", "Dallas"))
}

// TestBuildOptionsIndex_BlankInteriorCells tests that blank interior cells
// are skipped rather than kept as empty strings
func TestBuildOptionsIndex_BlankInteriorCells(t *testing.T) {
	grid := Grid{
		{"Alpha", "Beta"},
		{"x", "p"},
		{"y", ""},
		{"", "q"},
	}

	index := BuildOptionsIndex(grid)

	assert.Equal(t, map[string][]string{"Alpha": {"x", "y"}, "Beta": {"p", "q"}}, index.Options)
}
