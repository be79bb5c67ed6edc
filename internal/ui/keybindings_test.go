package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestIsQuit(t *testing.T) {
	assert.True(t, isQuit(tea.KeyMsg{Type: tea.KeyCtrlC}))
	assert.True(t, isQuit(tea.KeyMsg{Type: tea.KeyCtrlQ}))
	assert.False(t, isQuit(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}}))
}

func TestIsEnter(t *testing.T) {
	assert.True(t, isEnter(tea.KeyMsg{Type: tea.KeyEnter}))
	assert.False(t, isEnter(tea.KeyMsg{Type: tea.KeySpace}))
}

func TestIsSpace(t *testing.T) {
	assert.True(t, isSpace(tea.KeyMsg{Type: tea.KeySpace}))
	assert.False(t, isSpace(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestIsBack(t *testing.T) {
	assert.True(t, isBack(tea.KeyMsg{Type: tea.KeyEsc}))
	assert.False(t, isBack(tea.KeyMsg{Type: tea.KeyEnter}))
}

func TestArrowKeys(t *testing.T) {
	assert.True(t, isDown(tea.KeyMsg{Type: tea.KeyDown}))
	assert.False(t, isDown(tea.KeyMsg{Type: tea.KeyUp}))
	assert.True(t, isUp(tea.KeyMsg{Type: tea.KeyUp}))
	assert.False(t, isUp(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}}))
	assert.True(t, isLeft(tea.KeyMsg{Type: tea.KeyLeft}))
	assert.True(t, isRight(tea.KeyMsg{Type: tea.KeyRight}))
}

func TestTabKeys(t *testing.T) {
	assert.True(t, isTabKey(tea.KeyMsg{Type: tea.KeyTab}))
	assert.False(t, isTabKey(tea.KeyMsg{Type: tea.KeyShiftTab}))
	assert.True(t, isShiftTab(tea.KeyMsg{Type: tea.KeyShiftTab}))
}

func TestIsPrintable(t *testing.T) {
	assert.True(t, isPrintable(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}}))
	assert.False(t, isPrintable(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'a'}, Alt: true}))
	assert.False(t, isPrintable(tea.KeyMsg{Type: tea.KeyCtrlN}))
	assert.True(t, isBackspace(tea.KeyMsg{Type: tea.KeyBackspace}))
	assert.True(t, isDelete(tea.KeyMsg{Type: tea.KeyDelete}))
}
