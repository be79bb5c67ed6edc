package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var gridCols = []TableColumn{
	{Header: "#", Width: 3, Align: lipgloss.Right},
	{Header: "Name", Width: 10},
	{Header: "City", Width: 8},
	{Header: "Value", Width: 10, Align: lipgloss.Right},
}

func TestTableGridRendersHeaderAndRows(t *testing.T) {
	rows := [][]string{
		{"1", "Alpha", "Austin", "$1,000"},
		{"2", "Beta", "Dallas", ""},
	}
	out := TableGrid(gridCols, rows, 60, NoFocus)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "Name")
	assert.Contains(t, lines[2], "Alpha")
	assert.Contains(t, lines[2], "$1,000")
	assert.Contains(t, lines[3], "Dallas")
	for _, line := range lines {
		assert.Equal(t, 60, lipgloss.Width(line))
	}
}

func TestTableGridMarksSelectionAndPending(t *testing.T) {
	rows := [][]string{{"1", "Alpha", "Austin", "$1,000"}}
	state := GridState{
		ActiveRow: 0,
		ActiveCol: 1,
		Selected:  map[int]bool{0: true},
		Pending:   map[[2]int]bool{{0, 3}: true},
	}
	out := TableGrid(gridCols, rows, 60, state)
	line := strings.Split(out, "\n")[2]
	assert.True(t, strings.HasPrefix(SanitizeText(line), selectMarker))
	assert.Contains(t, line, pendingMarker)
}

func TestTableGridEmpty(t *testing.T) {
	assert.Equal(t, "", TableGrid(gridCols, nil, 0, NoFocus))
	assert.Equal(t, strings.Repeat(" ", 10), TableGrid(nil, nil, 10, NoFocus))
}

func TestColumnWindowKeepsFocusVisible(t *testing.T) {
	// 3+10+8+10 plus three separators is 34.
	start, end := ColumnWindow(gridCols, 34, 1, -1)
	assert.Equal(t, 0, start)
	assert.Equal(t, 4, end)

	start, end = ColumnWindow(gridCols, 20, 1, 0)
	assert.Equal(t, 0, start)
	assert.Equal(t, 2, end)

	start, end = ColumnWindow(gridCols, 20, 1, 3)
	assert.Equal(t, 2, start)
	assert.Equal(t, 4, end)
}

func TestTableGridScrollsToActiveColumn(t *testing.T) {
	rows := [][]string{{"1", "Alpha", "Austin", "$1,000"}}
	state := GridState{ActiveRow: 0, ActiveCol: 3}
	out := TableGrid(gridCols, rows, 22, state)
	assert.Contains(t, out, "Value")
	assert.NotContains(t, out, "Name")
}
