package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a single column for TableGrid.
//
// Width is the visual width of the column content (excluding separators).
// Align controls how cell text is aligned within the column.
type TableColumn struct {
	Header string
	Width  int
	Align  lipgloss.Position
}

// GridState is the per-render highlight state of a TableGrid. Row and
// column indexes address the rows and columns passed to TableGrid; -1
// disables the highlight.
type GridState struct {
	ActiveRow int
	ActiveCol int
	Editing   bool
	// Selected marks whole rows in the gutter.
	Selected map[int]bool
	// Pending marks cells whose save has not been confirmed.
	Pending map[[2]int]bool
}

// NoFocus is a GridState without any highlight.
var NoFocus = GridState{ActiveRow: -1, ActiveCol: -1}

const (
	gutterWidth   = 2
	pendingMarker = "•"
	selectMarker  = "▌"
)

var gridLineStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#273540"))

var gridActiveRowStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#d7d9da")).
	Background(lipgloss.Color("#1f2530"))

var gridActiveSepStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#273540")).
	Background(lipgloss.Color("#1f2530"))

var gridFocusCellStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#16161d")).
	Background(lipgloss.Color("#7f57b4")).
	Bold(true)

var gridEditCellStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#d7d9da")).
	Background(lipgloss.Color("#436b77")).
	Underline(true)

var gridSelectedMarkStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#d1606b")).
	Bold(true)

var gridPendingStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#c78854"))

// TableGrid renders rows under a header using the rounded border glyphs
// of the box components. Columns that do not fit tableWidth scroll so the
// active column stays visible.
func TableGrid(columns []TableColumn, rows [][]string, tableWidth int, state GridState) string {
	if tableWidth <= 0 {
		return ""
	}
	if len(columns) == 0 {
		return padRight("", tableWidth)
	}

	border := lipgloss.RoundedBorder()
	v, h, cross := border.Left, border.Top, border.Middle

	start, end := ColumnWindow(columns, tableWidth-gutterWidth, lipgloss.Width(v), state.ActiveCol)
	cols := fitGridColumns(columns[start:end], v, tableWidth)

	out := make([]string, 0, len(rows)+2)
	out = append(out, renderHeader(cols, v, tableWidth))
	out = append(out, renderGridRule(cols, cross, h, tableWidth))
	for i, row := range rows {
		cells := row
		if start < len(cells) {
			cells = cells[start:]
		} else {
			cells = nil
		}
		out = append(out, renderGridRow(cols, cells, v, tableWidth, i, start, state))
	}
	return strings.Join(out, "\n")
}

// ColumnWindow returns the [start, end) range of columns shown in width
// cells. The window starts at the first column unless that would hide
// focus, in which case it ends at focus.
func ColumnWindow(columns []TableColumn, width, sepWidth, focus int) (int, int) {
	if len(columns) == 0 {
		return 0, 0
	}
	fits := func(from, to int) bool {
		sum := 0
		for i := from; i < to; i++ {
			sum += maxInt(columns[i].Width, 1)
		}
		return sum+(to-from-1)*sepWidth <= width
	}
	end := 1
	for end < len(columns) && fits(0, end+1) {
		end++
	}
	if focus < end {
		return 0, end
	}
	if focus >= len(columns) {
		focus = len(columns) - 1
	}
	start := focus
	for start > 0 && fits(start-1, focus+1) {
		start--
	}
	return start, focus + 1
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func fitGridColumns(columns []TableColumn, sep string, tableWidth int) []TableColumn {
	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)

	sepW := maxInt(lipgloss.Width(sep), 1)
	contentWidth := maxInt(tableWidth-gutterWidth, len(fitted))

	sum := 0
	for i := range fitted {
		fitted[i].Width = maxInt(fitted[i].Width, 1)
		sum += fitted[i].Width
	}
	// n columns => n-1 separators (only between columns, no outer border).
	expected := sum + (len(fitted)-1)*sepW
	if delta := contentWidth - expected; len(fitted) > 0 && delta > 0 {
		fitted[len(fitted)-1].Width += delta
	}
	return fitted
}

func renderHeader(columns []TableColumn, sep string, tableWidth int) string {
	style := boxLabelStyle.Bold(true).Inline(true)
	sepStyled := gridLineStyle.Inline(true).Render(sep)

	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for i, col := range columns {
		if i > 0 {
			b.WriteString(sepStyled)
		}
		b.WriteString(style.Render(renderGridCell(col.Header, col.Width, col.Align)))
	}
	return padRight(b.String(), tableWidth)
}

func renderGridRow(columns []TableColumn, cells []string, sep string, tableWidth, rowIdx, colOffset int, state GridState) string {
	active := rowIdx == state.ActiveRow

	sepStyle := gridLineStyle
	if active {
		sepStyle = gridActiveSepStyle
	}
	sepStyled := sepStyle.Inline(true).Render(sep)

	var b strings.Builder
	if state.Selected[rowIdx] {
		b.WriteString(gridSelectedMarkStyle.Render(selectMarker) + " ")
	} else {
		b.WriteString(strings.Repeat(" ", gutterWidth))
	}
	for i, col := range columns {
		if i > 0 {
			b.WriteString(sepStyled)
		}
		text := ""
		if i < len(cells) {
			text = cells[i]
		}
		colIdx := i + colOffset
		pending := state.Pending[[2]int{rowIdx, colIdx}]

		var rendered string
		if pending && col.Width > 1 {
			rendered = renderGridCell(text, col.Width-1, col.Align) + gridPendingStyle.Render(pendingMarker)
		} else {
			rendered = renderGridCell(text, col.Width, col.Align)
		}
		switch {
		case active && colIdx == state.ActiveCol && state.Editing:
			rendered = gridEditCellStyle.Inline(true).Render(rendered)
		case active && colIdx == state.ActiveCol:
			rendered = gridFocusCellStyle.Inline(true).Render(rendered)
		case active:
			rendered = gridActiveRowStyle.Inline(true).Render(rendered)
		}
		b.WriteString(rendered)
	}
	return padRight(b.String(), tableWidth)
}

func renderGridRule(columns []TableColumn, cross, horiz string, tableWidth int) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(" ", gutterWidth))
	for i, col := range columns {
		b.WriteString(strings.Repeat(horiz, maxInt(col.Width, 1)))
		if i < len(columns)-1 {
			b.WriteString(cross)
		}
	}
	return gridLineStyle.Inline(true).Render(padRight(b.String(), tableWidth))
}

func renderGridCell(text string, width int, align lipgloss.Position) string {
	if width <= 0 {
		return ""
	}
	clamped := ClampTextWidth(text, width)
	pad := width - lipgloss.Width(clamped)
	if pad <= 0 {
		return clamped
	}
	switch align {
	case lipgloss.Right:
		return strings.Repeat(" ", pad) + clamped
	case lipgloss.Center:
		left := pad / 2
		return strings.Repeat(" ", left) + clamped + strings.Repeat(" ", pad-left)
	default:
		return clamped + strings.Repeat(" ", pad)
	}
}
