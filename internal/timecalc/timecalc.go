package timecalc

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ClockLayout is the time-of-day layout used for entrance and exit times.
const ClockLayout = "15:04"

var secondsPerHour = decimal.NewFromInt(3600)

// ParseClock parses an HH:MM time-of-day on the zero reference date.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(ClockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time of day %q: expected HH:MM", s)
	}
	return t, nil
}

// HoursBetween returns the hours from entrance to exit, rounded half-up to
// two decimals. Empty, unparsable or non-increasing pairs yield zero.
func HoursBetween(entrance, exit string) decimal.Decimal {
	if entrance == "" || exit == "" {
		return decimal.Zero
	}
	in, err := ParseClock(entrance)
	if err != nil {
		return decimal.Zero
	}
	out, err := ParseClock(exit)
	if err != nil {
		return decimal.Zero
	}
	if !out.After(in) {
		return decimal.Zero
	}
	secs := int64(out.Sub(in) / time.Second)
	return decimal.NewFromInt(secs).Div(secondsPerHour).Round(2)
}

// FormatHours renders hours with exactly two decimals, e.g. "8.50".
func FormatHours(h decimal.Decimal) string {
	return h.StringFixed(2)
}

// FormatDuration formats hours as a human-readable string like "8h 30m" or "45m".
func FormatDuration(h decimal.Decimal) string {
	minutes := h.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	hh := minutes / 60
	mm := minutes % 60
	if hh > 0 {
		return fmt.Sprintf("%dh %dm", hh, mm)
	}
	return fmt.Sprintf("%dm", mm)
}

// MonthKey returns the YYYY-MM bucket of t.
func MonthKey(t time.Time) string {
	return t.Format("2006-01")
}

// ParseMonth parses a YYYY-MM string.
func ParseMonth(s string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: expected YYYY-MM", s)
	}
	return t.Year(), t.Month(), nil
}

// InMonth reports whether t falls in the given calendar year and month.
func InMonth(t time.Time, year int, month time.Month) bool {
	y, m, _ := t.Date()
	return y == year && m == month
}
