package util

import (
	"strconv"
	"strings"
	"time"
)

// layouts accepted by ParseTime, tried in order after RFC3339.
var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02 15:04:05",
	"2006/01/02 15:04",
	"01-02-2006 15:04",
	"01-02-2006",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
}

// ParseTime tries RFC3339, the calendar layouts above, and unix seconds/millis.
// Returns (t, true) if any worked. Layouts without a zone are read as UTC.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
		if ts > 1e11 { // ms
			return time.UnixMilli(ts).UTC(), true
		}
		return time.Unix(ts, 0).UTC(), true
	}
	return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
	if t, ok := ParseTime(s); ok {
		return t
	}
	return def
}

// DaysBetween returns the age of t relative to now in fractional days, e.g. 7.5 for
// seven and a half days. Negative ages clamp to 0.
func DaysBetween(t, now time.Time) float64 {
	d := now.Sub(t).Hours() / 24
	if d < 0 {
		return 0
	}
	return d
}
