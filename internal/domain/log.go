package domain

import (
	"strings"
	"time"
)

// Severity is the inferred importance of a log entry
type Severity string

const (
	SeverityUnknown Severity = "UNKNOWN"
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARN"
	SeverityError   Severity = "ERROR"
)

// ParseSeverity maps a level word found in a log line to a Severity.
// Unrecognised words map to SeverityUnknown.
func ParseSeverity(word string) Severity {
	switch strings.ToLower(strings.TrimSpace(word)) {
	case "fatal", "panic", "crit", "critical", "error", "err", "e", "f":
		return SeverityError
	case "warn", "warning", "w":
		return SeverityWarning
	case "info", "notice", "debug", "trace", "i", "d":
		return SeverityInfo
	default:
		return SeverityUnknown
	}
}

// ResourceFile is one log file discovered in a bundle
type ResourceFile struct {
	ID       int       `json:"id"`
	Path     string    `json:"path"`     // absolute path
	Rel      string    `json:"rel"`      // path relative to the bundle root, slash separated
	Resource string    `json:"resource"` // resource identity derived from the path
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"mod_time"`
}

// Origin is the stable position of an entry: file ID, then 1-based line number
type Origin struct {
	File int `json:"file"`
	Line int `json:"line"`
}

// Less orders origins by file, then line.
func (o Origin) Less(other Origin) bool {
	if o.File != other.File {
		return o.File < other.File
	}
	return o.Line < other.Line
}

// LogEntry is one logical log record read from a resource file
type LogEntry struct {
	// Timestamp is the time parsed from the line itself; nil when the line carries none.
	Timestamp *time.Time `json:"timestamp,omitempty"`
	// Effective is the time used for ordering. Continuations inherit their anchor's
	// timestamp, or the zero time when no anchor precedes them in the file.
	Effective    time.Time     `json:"effective"`
	Severity     Severity      `json:"severity"`
	Source       *ResourceFile `json:"-"`
	Raw          string        `json:"raw"`
	Continuation bool          `json:"continuation,omitempty"`
	Origin       Origin        `json:"origin"`
}

// Before reports whether e sorts before other in timeline order.
func (e *LogEntry) Before(other *LogEntry) bool {
	if !e.Effective.Equal(other.Effective) {
		return e.Effective.Before(other.Effective)
	}
	return e.Origin.Less(other.Origin)
}

// SourcePath returns the bundle-relative path of the entry's file, or "" when unknown.
func (e *LogEntry) SourcePath() string {
	if e.Source == nil {
		return ""
	}
	return e.Source.Rel
}
