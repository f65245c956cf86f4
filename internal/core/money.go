// Package core provides amount parsing and formatting utilities.
//
// Amounts are plain float64 values. Two coercions are offered because the
// budget and expense inputs read their values differently: the budget input
// reads the number-input value (empty means NaN) while the expense amount is
// coerced like a generic string-to-number conversion (empty means 0).
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// ParseNumberInput returns the numeric value of a number input.
//
// Empty, malformed or infinite input yields NaN. Only the dot is a decimal
// separator; a comma makes the input malformed.
//
// Examples:
//
//	ParseNumberInput("150.5") -> 150.5
//	ParseNumberInput("")      -> NaN
//	ParseNumberInput("abc")   -> NaN
func ParseNumberInput(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN()
	}
	f, ok := parseDecimal(s)
	if !ok || math.IsInf(f, 0) {
		return math.NaN()
	}
	return f
}

// CoerceNumber converts a raw field value to a number.
//
// Blank input yields 0, "Infinity" and "-Infinity" yield the infinities,
// 0x-prefixed input is read as hexadecimal and anything else that is not a
// decimal number yields NaN.
func CoerceNumber(s string) float64 {
	s = strings.TrimSpace(s)
	switch s {
	case "":
		return 0
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, ok := parseDecimal(s)
	if !ok {
		return math.NaN()
	}
	return f
}

// parseDecimal accepts plain decimal notation with an optional sign and
// exponent. Grouping commas are rejected rather than guessed at.
func parseDecimal(s string) (float64, bool) {
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
		case r == '.', r == '-', r == '+', r == 'e', r == 'E':
		default:
			return 0, false
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// FormatAmount formats an amount as US dollars, e.g. "$1,234.50".
func FormatAmount(v float64) string {
	switch {
	case math.IsNaN(v):
		return "$NaN"
	case math.IsInf(v, 1):
		return "$∞"
	case math.IsInf(v, -1):
		return "-$∞"
	}
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Percentage returns part as a percentage of total, rounded to two decimals.
// A non-positive total yields 0.
func Percentage(part, total float64) float64 {
	if total <= 0 || math.IsNaN(part) || math.IsNaN(total) {
		return 0
	}
	return math.Round(part/total*10000) / 100
}
