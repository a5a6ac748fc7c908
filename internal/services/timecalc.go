package services

import (
	"fmt"
	"strings"
	"time"
)

// billingQuantum is the rounding increment for time entries, in minutes.
const billingQuantum = 15

// isoLayouts are the timestamp shapes accepted from clients, most specific
// first. Values with an explicit offset use the RFC3339 layouts; naive values
// get the configured timezone attached.
var isoLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseISO parses an ISO-8601 timestamp string. Naive stamps are interpreted
// in loc. Returns a zero time for empty input.
func ParseISO(ts string, loc *time.Location) (time.Time, error) {
	cleaned := strings.TrimSpace(ts)
	if cleaned == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, cleaned); err == nil {
		return t, nil
	}
	for _, layout := range isoLayouts[1:] {
		if t, err := time.ParseInLocation(layout, cleaned, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp %q", ts)
}

// ComputeMinutes returns whole non-negative minutes between start and end.
// A missing or unparseable endpoint yields zero, matching an open ticket.
func ComputeMinutes(startISO string, endISO *string, loc *time.Location) int {
	if endISO == nil || strings.TrimSpace(*endISO) == "" {
		return 0
	}
	start, err := ParseISO(startISO, loc)
	if err != nil || start.IsZero() {
		return 0
	}
	end, err := ParseISO(*endISO, loc)
	if err != nil || end.IsZero() {
		return 0
	}
	minutes := int(end.Sub(start).Minutes())
	if minutes < 0 {
		return 0
	}
	return minutes
}

// RoundMinutes applies the billing rounding rule: anything under five minutes
// rounds down to zero, everything else rounds up to the next quantum.
// Returns the rounded minutes and the rounded hours formatted to two places.
func RoundMinutes(mins int) (int, string) {
	if mins < 0 {
		mins = 0
	}
	var rounded int
	if mins < 5 {
		rounded = 0
	} else {
		rounded = ((mins + billingQuantum - 1) / billingQuantum) * billingQuantum
	}
	return rounded, fmt.Sprintf("%.2f", float64(rounded)/60.0)
}

// utcNowISO is the created_at format used across all stores.
func utcNowISO() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05") + "Z"
}
