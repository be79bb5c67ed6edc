package ui

import tea "github.com/charmbracelet/bubbletea"

// --- Key Constants ---

func isKey(msg tea.KeyMsg, keys ...string) bool {
	for _, k := range keys {
		if msg.String() == k {
			return true
		}
	}
	return false
}

// Printable keys start cell edits, so quitting needs a control chord.
func isQuit(msg tea.KeyMsg) bool {
	return isKey(msg, "ctrl+c", "ctrl+q")
}

func isBack(msg tea.KeyMsg) bool {
	if msg.Type == tea.KeyEsc {
		return true
	}
	return isKey(msg, "esc", "escape", "ctrl+[")
}

func isUp(msg tea.KeyMsg) bool {
	return isKey(msg, "up")
}

func isDown(msg tea.KeyMsg) bool {
	return isKey(msg, "down")
}

func isLeft(msg tea.KeyMsg) bool {
	return isKey(msg, "left")
}

func isRight(msg tea.KeyMsg) bool {
	return isKey(msg, "right")
}

func isEnter(msg tea.KeyMsg) bool {
	return isKey(msg, "enter", "return")
}

func isSpace(msg tea.KeyMsg) bool {
	return isKey(msg, " ")
}

func isTabKey(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyTab
}

func isShiftTab(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyShiftTab
}

func isBackspace(msg tea.KeyMsg) bool {
	return isKey(msg, "backspace")
}

func isDelete(msg tea.KeyMsg) bool {
	return isKey(msg, "delete")
}

// isPrintable reports a plain rune key that should be typed into a cell.
func isPrintable(msg tea.KeyMsg) bool {
	return msg.Type == tea.KeyRunes && !msg.Alt && len(msg.Runes) > 0
}
