package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmDialogIncludesTitleMessageAndHints(t *testing.T) {
	out := ConfirmDialog("Delete", "Delete 2 locations?")
	clean := SanitizeText(out)

	assert.Contains(t, clean, "Delete")
	assert.Contains(t, clean, "Delete 2 locations?")
	assert.Contains(t, clean, "y: confirm | n: cancel")
}
