package grid

import (
	"strings"
)

// RawRow is one pasted line mapped to column keys. Values are the raw cell
// text; cells missing from a short line are absent.
type RawRow map[string]string

// PasteResult is the outcome of parsing clipboard text.
type PasteResult struct {
	Rows []RawRow
	// Headers holds the detected header cells, or nil when every line was
	// treated as data.
	Headers []string
}

// ParsePaste turns tab-separated clipboard text into rows keyed by column.
//
// The first line is a header when there is more than one line and it has
// more than two cells. Header cells are matched to column labels, keys and
// aliases; unmatched header columns are dropped. Without a header, cells
// map positionally onto the editable columns in grid order.
func ParsePaste(text string, columns []Column) PasteResult {
	lines := splitLines(text)
	if len(lines) == 0 {
		return PasteResult{}
	}

	cells := make([][]string, len(lines))
	for i, line := range lines {
		cells[i] = strings.Split(line, "\t")
	}

	if len(cells) > 1 && len(cells[0]) > 2 {
		if mapping, ok := matchHeader(cells[0], columns); ok {
			headers := make([]string, len(cells[0]))
			for i, h := range cells[0] {
				headers[i] = cleanHeader(h)
			}
			return PasteResult{
				Rows:    mapRows(cells[1:], mapping),
				Headers: headers,
			}
		}
	}

	editable := EditableColumns(columns)
	mapping := make([]string, len(editable))
	for i, c := range editable {
		mapping[i] = c.Key
	}
	return PasteResult{Rows: mapRows(cells, mapping)}
}

// splitLines normalizes line endings and drops blank lines.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}

// matchHeader maps header positions to column keys. Positions that match
// no column map to "". ok is false when nothing matched at all.
func matchHeader(header []string, columns []Column) ([]string, bool) {
	lookup := make(map[string]string)
	for _, c := range columns {
		if c.ReadOnly {
			continue
		}
		for _, name := range c.headerNames() {
			if _, taken := lookup[name]; !taken && name != "" {
				lookup[name] = c.Key
			}
		}
	}

	mapping := make([]string, len(header))
	used := make(map[string]bool)
	matched := false
	for i, h := range header {
		key, ok := lookup[normalizeHeader(h)]
		if !ok || used[key] {
			continue
		}
		mapping[i] = key
		used[key] = true
		matched = true
	}
	return mapping, matched
}

func mapRows(lines [][]string, mapping []string) []RawRow {
	rows := make([]RawRow, 0, len(lines))
	for _, cells := range lines {
		row := make(RawRow)
		for i, key := range mapping {
			if key == "" || i >= len(cells) {
				continue
			}
			row[key] = cells[i]
		}
		rows = append(rows, row)
	}
	return rows
}

func cleanHeader(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)
	return strings.TrimSpace(s)
}

func normalizeHeader(s string) string {
	return strings.ToLower(cleanHeader(s))
}

// FormatTSV renders rows as tab-separated display text, the inverse of
// ParsePaste for the given columns.
func FormatTSV(rows []Row, columns []Column, withHeader bool) string {
	var b strings.Builder
	if withHeader {
		for i, c := range columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			b.WriteString(c.Label)
		}
		b.WriteByte('\n')
	}
	for _, row := range rows {
		for i, c := range columns {
			if i > 0 {
				b.WriteByte('\t')
			}
			text := ToDisplay(row.Values[c.Key], c)
			text = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ").Replace(text)
			b.WriteString(text)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
