package parser

import (
	"fmt"
	"regexp"
	"time"
)

// yearSkew is how far past the file's modification time an inferred
// year-less timestamp may land before it is considered ambiguous.
const yearSkew = 24 * time.Hour

// TimestampRule extracts and parses one timestamp format from a log line.
// The first capture group of Pattern holds the timestamp text.
type TimestampRule struct {
	Name    string
	Pattern *regexp.Regexp
	Layout  string
	// NoYear marks layouts without a year; the year is taken from the file's
	// modification time.
	NoYear bool
}

// NewTimestampRule compiles a timestamp rule from its textual form.
func NewTimestampRule(name, pattern, layout string, noYear bool) (TimestampRule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return TimestampRule{}, fmt.Errorf("timestamp rule %q: invalid pattern: %w", name, err)
	}
	if re.NumSubexp() < 1 {
		return TimestampRule{}, fmt.Errorf("timestamp rule %q: pattern needs a capture group", name)
	}
	if layout == "" {
		return TimestampRule{}, fmt.Errorf("timestamp rule %q: layout is required", name)
	}
	return TimestampRule{Name: name, Pattern: re, Layout: layout, NoYear: noYear}, nil
}

// DefaultTimestampRules returns the built-in formats in priority order.
func DefaultTimestampRules() []TimestampRule {
	return []TimestampRule{
		{
			Name:    "rfc3339",
			Pattern: regexp.MustCompile(`(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?(?:Z|[+-]\d{2}:\d{2}))`),
			Layout:  time.RFC3339Nano,
		},
		{
			Name:    "datetime-millis",
			Pattern: regexp.MustCompile(`(\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\.\d+)`),
			Layout:  "2006-01-02 15:04:05.999999999",
		},
		{
			Name:    "syslog",
			Pattern: regexp.MustCompile(`^([A-Z][a-z]{2} [ \d]\d \d{2}:\d{2}:\d{2})`),
			Layout:  "Jan _2 15:04:05",
			NoYear:  true,
		},
	}
}

// match reports whether the rule's pattern occurs in line and, if so, the
// parsed time. ok is false when the text matched but could not be turned
// into a trustworthy instant.
func (r TimestampRule) match(line string, modTime time.Time) (ts time.Time, matched, ok bool) {
	m := r.Pattern.FindStringSubmatch(line)
	if len(m) < 2 || m[1] == "" {
		return time.Time{}, false, false
	}

	ts, err := time.ParseInLocation(r.Layout, m[1], time.UTC)
	if err != nil {
		return time.Time{}, true, false
	}
	if !r.NoYear {
		return ts.UTC(), true, true
	}

	// Year-less formats are only trusted when a modification time anchors them.
	if modTime.IsZero() {
		return time.Time{}, true, false
	}
	month, day := ts.Month(), ts.Day()
	ts = time.Date(modTime.Year(), month, day, ts.Hour(), ts.Minute(), ts.Second(), ts.Nanosecond(), time.UTC)
	if ts.Month() != month || ts.Day() != day {
		// Feb 29 outside a leap year.
		return time.Time{}, true, false
	}
	if ts.After(modTime.Add(yearSkew)) {
		// Probably last year's line in a file written after new year; don't guess.
		return time.Time{}, true, false
	}
	return ts, true, true
}
