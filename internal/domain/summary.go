package domain

import "time"

// LogSummary aggregates entry counts for a view of the timeline
type LogSummary struct {
	Type          string `json:"type"`          // Always "summary"
	SchemaVersion int    `json:"schemaVersion"` // Schema version for compatibility

	// Time window of timestamped entries
	WindowStart *time.Time `json:"windowStart,omitempty"`
	WindowEnd   *time.Time `json:"windowEnd,omitempty"`

	// Counts
	TotalCount        int `json:"totalCount"`
	InfoCount         int `json:"infoCount"`
	WarningCount      int `json:"warningCount"`
	ErrorCount        int `json:"errorCount"`
	UnknownCount      int `json:"unknownCount"`
	ContinuationCount int `json:"continuationCount"`

	HasErrors bool     `json:"hasErrors"`
	TopErrors []string `json:"topErrors,omitempty"`

	// Bundle scope
	Files   int `json:"files"`
	Skipped int `json:"skipped,omitempty"`

	// Paging of the emitted entries
	Offset   int `json:"offset,omitempty"`
	Returned int `json:"returned"`
}

// NewLogSummary creates a new empty summary
func NewLogSummary() *LogSummary {
	return &LogSummary{
		Type: "summary",
	}
}

// Add counts one entry.
func (s *LogSummary) Add(e *LogEntry) {
	s.TotalCount++
	switch e.Severity {
	case SeverityInfo:
		s.InfoCount++
	case SeverityWarning:
		s.WarningCount++
	case SeverityError:
		s.ErrorCount++
		s.HasErrors = true
	default:
		s.UnknownCount++
	}
	if e.Continuation {
		s.ContinuationCount++
	}
	if e.Timestamp != nil {
		if s.WindowStart == nil || e.Timestamp.Before(*s.WindowStart) {
			s.WindowStart = e.Timestamp
		}
		if s.WindowEnd == nil || e.Timestamp.After(*s.WindowEnd) {
			s.WindowEnd = e.Timestamp
		}
	}
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`           // Always "error"
	SchemaVersion int    `json:"schemaVersion"`  // Schema version for compatibility
	Code          string `json:"code"`           // Machine-readable error code
	Message       string `json:"message"`        // Human-readable message
	Hint          string `json:"hint,omitempty"` // Suggested next step
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:    "error",
		Code:    code,
		Message: message,
	}
}
