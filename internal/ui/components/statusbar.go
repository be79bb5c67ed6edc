package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	hintDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ba0bf"))
	keyCapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#16161d")).
			Background(lipgloss.Color("#888ba4")).
			Bold(true).
			Padding(0, 1)
	segmentStyle = lipgloss.NewStyle().
			Padding(0, 1).
			MarginRight(1)
	statusLineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d7d9da")).
			PaddingLeft(2)
	statusBarBorder = lipgloss.NewStyle().
			BorderTop(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#273540")).
			PaddingLeft(2)
)

// StatusLine renders one line of dataset facts ("42 rows · page 1/2"),
// clamped to width.
func StatusLine(parts []string, width int) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = SanitizeOneLine(p); p != "" {
			kept = append(kept, p)
		}
	}
	line := strings.Join(kept, " · ")
	if width > 4 {
		line = ClampTextWidth(line, width-2)
	}
	return statusLineStyle.Render(line)
}

// StatusBar renders the key hints under a rule, wrapped to width.
func StatusBar(hints []string, width int) string {
	segments := make([]string, 0, len(hints))
	for _, h := range hints {
		segments = append(segments, segmentStyle.Render(h))
	}
	if width <= 0 {
		return statusBarBorder.Render(lipgloss.JoinHorizontal(lipgloss.Top, segments...))
	}
	rows := wrapSegments(segments, width-2)
	if len(rows) == 0 {
		return ""
	}
	return statusBarBorder.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// Hint formats a single keybind hint like "Undo ctrl+z".
func Hint(key, desc string) string {
	return hintDescStyle.Render(desc+" ") + keyCapStyle.Render(key)
}

func wrapSegments(segments []string, width int) []string {
	if width <= 0 {
		return []string{lipgloss.JoinHorizontal(lipgloss.Top, segments...)}
	}
	rows := make([]string, 0, 2)
	var current []string
	currentWidth := 0
	for _, seg := range segments {
		segWidth := lipgloss.Width(seg)
		if currentWidth > 0 && currentWidth+segWidth > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
			current = []string{seg}
			currentWidth = segWidth
			continue
		}
		current = append(current, seg)
		currentWidth += segWidth
	}
	if len(current) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, current...))
	}
	return rows
}
