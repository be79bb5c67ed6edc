package grid

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var numberPrinter = message.NewPrinter(language.English)

// numericNoise is stripped from number and currency input before parsing.
var numericNoise = strings.NewReplacer(
	",", "",
	"$", "",
	"€", "",
	"£", "",
	"¥", "",
	" ", "",
	"\u00a0", "",
)

// ToDisplay renders a stored value the way the grid shows it. Nil always
// renders as the empty string.
func ToDisplay(raw any, col Column) string {
	if raw == nil {
		return ""
	}
	switch col.Type {
	case TypeCurrency:
		f, ok := toFloat(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		neg := f < 0
		s := "$" + groupNumber(math.Abs(f), 0)
		if neg {
			s = "-" + s
		}
		return s
	case TypeNumber:
		f, ok := toFloat(raw)
		if !ok {
			return fmt.Sprint(raw)
		}
		decimals := -1
		if col.Format == FormatDecimal2 {
			decimals = 2
		}
		if f < 0 {
			return "-" + groupNumber(-f, decimals)
		}
		return groupNumber(f, decimals)
	case TypeSelect:
		s := stringValue(raw)
		if label, ok := col.optionLabel(s); ok {
			return label
		}
		return s
	default:
		return stringValue(raw)
	}
}

// ToStored converts edit text into the stored value for col. Empty input
// and numbers that cannot be parsed clear the field (nil) instead of
// failing.
func ToStored(edit string, col Column) any {
	text := strings.TrimSpace(edit)
	if text == "" {
		return nil
	}
	switch col.Type {
	case TypeNumber, TypeCurrency:
		cleaned := numericNoise.Replace(text)
		// Accounting style negatives: (1,234)
		if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
			cleaned = "-" + strings.Trim(cleaned, "()")
		}
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	case TypeSelect:
		if value, ok := col.matchOption(text); ok {
			return value
		}
		return text
	default:
		return text
	}
}

// EditText is the initial edit buffer for a stored value. Numbers are
// shown without grouping so they round-trip through ToStored.
func EditText(raw any, col Column) string {
	if raw == nil {
		return ""
	}
	switch col.Type {
	case TypeNumber, TypeCurrency:
		if f, ok := toFloat(raw); ok {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
	}
	return ToDisplay(raw, col)
}

// Equal reports whether two stored values are the same after
// normalization.
func Equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	if okA && okB {
		return fa == fb
	}
	if okA != okB {
		return false
	}
	return stringValue(a) == stringValue(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func stringValue(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	}
	return fmt.Sprint(v)
}

// groupDigits inserts thousands separators into a plain digit string, for
// values past the int64 range.
func groupDigits(whole string) string {
	head := len(whole) % 3
	if head == 0 {
		head = 3
	}
	var b strings.Builder
	b.WriteString(whole[:head])
	for i := head; i < len(whole); i += 3 {
		b.WriteByte(',')
		b.WriteString(whole[i : i+3])
	}
	return b.String()
}

// groupNumber formats a non-negative number with English digit grouping.
// decimals < 0 keeps the shortest exact fraction.
func groupNumber(f float64, decimals int) string {
	var digits string
	if decimals < 0 {
		digits = strconv.FormatFloat(f, 'f', -1, 64)
	} else {
		digits = strconv.FormatFloat(f, 'f', decimals, 64)
	}
	whole, frac, _ := strings.Cut(digits, ".")
	var out string
	if n, err := strconv.ParseInt(whole, 10, 64); err == nil {
		out = numberPrinter.Sprintf("%d", n)
	} else {
		out = groupDigits(whole)
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}
