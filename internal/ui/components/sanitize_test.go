package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeOneLineStripsOscAndNewlines(t *testing.T) {
	input := "\x1b]8;;https://evil\x07click\x1b]8;;\x07\nline\tmore"
	out := SanitizeOneLine(input)

	assert.False(t, strings.Contains(out, "\x1b"))
	assert.False(t, strings.Contains(out, "\n"))
	assert.False(t, strings.Contains(out, "\t"))
	assert.Equal(t, "click line more", out)
}

func TestSanitizeTextRemovesBidiControls(t *testing.T) {
	input := "Plant\u202egpj.exe"
	out := SanitizeText(input)

	assert.NotContains(t, out, "\u202e")
	assert.Equal(t, "Plantgpj.exe", out)
}

func TestSanitizeTextKeepsColorFreeText(t *testing.T) {
	assert.Equal(t, "Alpha", SanitizeText("\x1b[31mAlpha\x1b[0m"))
	assert.Equal(t, "", SanitizeText(""))
}
