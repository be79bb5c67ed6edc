package grid

import "strings"

// ColumnType tags how a column's values are stored, displayed and edited.
type ColumnType string

const (
	TypeText     ColumnType = "text"
	TypeNumber   ColumnType = "number"
	TypeCurrency ColumnType = "currency"
	TypeDate     ColumnType = "date"
	TypeSelect   ColumnType = "select"
)

// FormatDecimal2 renders number columns with two fraction digits.
const FormatDecimal2 = "decimal2"

// Option is one choice of a select column.
type Option struct {
	Value string
	Label string
}

// Column describes one field of the dataset. Columns are static for the
// lifetime of a controller.
type Column struct {
	Key     string
	Label   string
	Type    ColumnType
	Options []Option
	Width   int
	Format  string

	// Aliases are extra header spellings accepted by the paste parser.
	Aliases []string

	Required   bool
	ReadOnly   bool
	Searchable bool

	// Sequence columns hold a generated sequential number; duplicates and
	// new rows get max+1.
	Sequence bool
	// Unique columns are cleared on duplicate.
	Unique bool
}

// optionLabel returns the label for a stored select value.
func (c Column) optionLabel(value string) (string, bool) {
	for _, opt := range c.Options {
		if opt.Value == value {
			return opt.Label, true
		}
	}
	return "", false
}

// matchOption resolves free text against option values and labels.
func (c Column) matchOption(input string) (string, bool) {
	for _, opt := range c.Options {
		if strings.EqualFold(opt.Value, input) || strings.EqualFold(opt.Label, input) {
			return opt.Value, true
		}
	}
	return "", false
}

// headerNames lists every spelling that identifies this column in a pasted
// header row, normalized for comparison.
func (c Column) headerNames() []string {
	names := []string{
		normalizeHeader(c.Label),
		normalizeHeader(c.Key),
		normalizeHeader(strings.ReplaceAll(c.Key, "_", " ")),
	}
	for _, alias := range c.Aliases {
		names = append(names, normalizeHeader(alias))
	}
	return names
}

// ColumnIndex returns the position of the column with key, or -1.
func ColumnIndex(columns []Column, key string) int {
	for i, c := range columns {
		if c.Key == key {
			return i
		}
	}
	return -1
}

// EditableColumns returns the columns a user can type into, in grid order.
func EditableColumns(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		if !c.ReadOnly {
			out = append(out, c)
		}
	}
	return out
}
