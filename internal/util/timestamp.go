package util

import "time"

// StampLayout renders UTC instants as fixed-width strings whose
// lexicographic order matches chronological order. That property is
// what lets the reconciler compare updated_at values with plain string
// comparison.
const StampLayout = "2006-01-02T15:04:05.000Z07:00"

// FormatStamp renders t as a sortable UTC timestamp string.
func FormatStamp(t time.Time) string {
	return t.UTC().Format(StampLayout)
}

// NowStamp returns the current instant as a sortable timestamp string.
func NowStamp() string {
	return FormatStamp(time.Now())
}

// ParseStamp parses a timestamp string produced by FormatStamp. It also
// accepts plain RFC 3339, which imported rows commonly carry.
func ParseStamp(s string) (time.Time, error) {
	if t, err := time.Parse(StampLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
