package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestHintIncludesKeyAndDesc(t *testing.T) {
	out := Hint("ctrl+z", "Undo")
	assert.Contains(t, out, "Undo")
	assert.Contains(t, out, "ctrl+z")
}

func TestStatusBarRendersHints(t *testing.T) {
	out := StatusBar([]string{Hint("ctrl+c", "Quit"), Hint("ctrl+n", "Add")}, 0)
	assert.Contains(t, out, "Quit")
	assert.Contains(t, out, "Add")
}

func TestWrapSegmentsWrapsWhenNarrow(t *testing.T) {
	segments := []string{"123456", "abcdef", "ghijkl"}
	rows := wrapSegments(segments, 10)
	assert.Len(t, rows, 3)
	for _, row := range rows {
		assert.LessOrEqual(t, lipgloss.Width(row), 10)
	}
}

func TestStatusLineJoinsAndSkipsEmpty(t *testing.T) {
	out := StatusLine([]string{"3 rows", "", "page 1/1"}, 0)
	assert.Contains(t, out, "3 rows · page 1/1")
	assert.False(t, strings.Contains(out, "·  ·"))
}
