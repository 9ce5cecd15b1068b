package util

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var magnitudes = map[byte]decimal.Decimal{
	'K': decimal.New(1, 3),
	'M': decimal.New(1, 6),
	'B': decimal.New(1, 9),
	'T': decimal.New(1, 12),
}

// ParseValue parses economic-calendar figures such as "3.1%", "250K", "-1.2B",
// "1,234.5" or "$0.25". Empty cells, placeholders ("-", "N/A") and figures outside
// the float64 range are not values.
func ParseValue(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", "%", "", "$", "", "€", "", "£", "", "¥", "", " ", "", "\u00a0", "", "\u2212", "-").Replace(s)
	if s == "" || s == "-" || strings.EqualFold(s, "n/a") || strings.EqualFold(s, "na") {
		return 0, false
	}

	mult := decimal.New(1, 0)
	if m, ok := magnitudes[strings.ToUpper(s[len(s)-1:])[0]]; ok {
		mult = m
		s = s[:len(s)-1]
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, false
	}
	f, _ := d.Mul(mult).Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// ParseValuePtr is ParseValue returning nil for missing values.
func ParseValuePtr(s string) *float64 {
	if v, ok := ParseValue(s); ok {
		return &v
	}
	return nil
}
