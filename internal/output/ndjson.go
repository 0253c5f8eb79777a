package output

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/vburojevic/sbsearch/internal/domain"
)

// NDJSONWriter writes log entries as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep logs unescaped and avoid extra allocations
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// OutputEntry is the NDJSON form of a timeline entry
type OutputEntry struct {
	Type          string        `json:"type"` // Always "log"
	SchemaVersion int           `json:"schemaVersion"`
	Index         int           `json:"index"`               // Position in the timeline
	Timestamp     string        `json:"timestamp,omitempty"` // Empty for continuations
	Effective     string        `json:"effective"`
	Severity      string        `json:"severity"`
	File          string        `json:"file"`
	Resource      string        `json:"resource,omitempty"`
	Line          int           `json:"line"`
	Continuation  bool          `json:"continuation,omitempty"`
	Raw           string        `json:"raw"`
	Spans         []domain.Span `json:"spans,omitempty"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Type          string `json:"type"` // Always "info"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
	Bundle        string `json:"bundle,omitempty"`
	Mode          string `json:"mode,omitempty"`
	Files         int    `json:"files,omitempty"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Code          string `json:"code,omitempty"`
	Message       string `json:"message"`
}

// FileOutput describes one discovered resource file
type FileOutput struct {
	Type          string    `json:"type"` // Always "file"
	SchemaVersion int       `json:"schemaVersion"`
	ID            int       `json:"id"`
	Path          string    `json:"path"`
	Resource      string    `json:"resource"`
	Size          int64     `json:"size"`
	ModTime       time.Time `json:"modTime"`
}

// SkippedOutput describes a file left out of the scan
type SkippedOutput struct {
	Type          string `json:"type"` // Always "skipped"
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
	Reason        string `json:"reason"`
}

// MetadataOutput describes runtime/tool metadata
type MetadataOutput struct {
	Type          string `json:"type"` // Always "version"
	SchemaVersion int    `json:"schemaVersion"`
	Version       string `json:"version"`
	Commit        string `json:"commit"`
}

// NewOutputEntry converts a timeline entry for output
func NewOutputEntry(index int, entry *domain.LogEntry, spans []domain.Span) OutputEntry {
	out := OutputEntry{
		Type:          "log",
		SchemaVersion: SchemaVersion,
		Index:         index,
		Effective:     entry.Effective.Format(time.RFC3339Nano),
		Severity:      string(entry.Severity),
		File:          entry.SourcePath(),
		Line:          entry.Origin.Line,
		Continuation:  entry.Continuation,
		Raw:           entry.Raw,
		Spans:         spans,
	}
	if entry.Timestamp != nil {
		out.Timestamp = entry.Timestamp.Format(time.RFC3339Nano)
	}
	if entry.Source != nil {
		out.Resource = entry.Source.Resource
	}
	return out
}

// Write outputs a single log entry as NDJSON
func (w *NDJSONWriter) Write(index int, entry *domain.LogEntry, spans []domain.Span) error {
	return w.encoder.Encode(NewOutputEntry(index, entry, spans))
}

// WriteFile outputs a discovered file
func (w *NDJSONWriter) WriteFile(f *domain.ResourceFile) error {
	return w.encoder.Encode(&FileOutput{
		Type:          "file",
		SchemaVersion: SchemaVersion,
		ID:            f.ID,
		Path:          f.Rel,
		Resource:      f.Resource,
		Size:          f.Size,
		ModTime:       f.ModTime,
	})
}

// WriteSkipped outputs a skipped file
func (w *NDJSONWriter) WriteSkipped(path, reason string) error {
	return w.encoder.Encode(&SkippedOutput{
		Type:          "skipped",
		SchemaVersion: SchemaVersion,
		Path:          path,
		Reason:        reason,
	})
}

// WriteSummary outputs a summary marker
func (w *NDJSONWriter) WriteSummary(summary *domain.LogSummary) error {
	summary.SchemaVersion = SchemaVersion
	return w.encoder.Encode(summary)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message, bundle, mode string, files int) error {
	return w.encoder.Encode(&InfoOutput{
		Type:          "info",
		SchemaVersion: SchemaVersion,
		Message:       message,
		Bundle:        bundle,
		Mode:          mode,
		Files:         files,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(code, message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Code:          code,
		Message:       message,
	})
}

// WriteMetadata outputs version metadata
func (w *NDJSONWriter) WriteMetadata(version, commit string) error {
	return w.encoder.Encode(&MetadataOutput{
		Type:          "version",
		SchemaVersion: SchemaVersion,
		Version:       version,
		Commit:        commit,
	})
}

// TextWriter writes log entries as formatted text
type TextWriter struct {
	w io.Writer
	// Plain disables styling, e.g. when stdout is not a terminal.
	Plain bool
}

// NewTextWriter creates a new text writer
func NewTextWriter(w io.Writer) *TextWriter {
	return &TextWriter{w: w}
}

// Write outputs a single log entry, prefixed with its file, with matches highlighted
func (w *TextWriter) Write(_ int, entry *domain.LogEntry, spans []domain.Span) error {
	if w.Plain {
		_, err := fmt.Fprintf(w.w, "%s: %s\n", entry.SourcePath(), entry.Raw)
		return err
	}

	base := SeverityStyle(entry.Severity)
	if entry.Continuation {
		base = Styles.Continuation
	}
	line := Styles.Source.Render(entry.SourcePath()+":") + " " + Highlight(entry.Raw, spans, base) + "\n"
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteSummary outputs a styled summary
func (w *TextWriter) WriteSummary(summary *domain.LogSummary) error {
	header := Styles.Header.Render("Summary")
	line := "\n" + header + "\n"
	line += Styles.Label.Render("Entries: ") + Styles.Value.Render(humanize.Comma(int64(summary.TotalCount))) + " | "
	line += Styles.Label.Render("Shown: ") + Styles.Value.Render(humanize.Comma(int64(summary.Returned))) + " | "
	line += Styles.Label.Render("Files: ") + Styles.Value.Render(humanize.Comma(int64(summary.Files))) + " | "

	if summary.ErrorCount > 0 {
		line += Styles.Danger.Render("Errors: "+humanize.Comma(int64(summary.ErrorCount))) + " | "
	} else {
		line += Styles.Label.Render("Errors: ") + Styles.Value.Render("0") + " | "
	}
	line += Styles.Label.Render("Warnings: ") + Styles.Value.Render(humanize.Comma(int64(summary.WarningCount)))
	if summary.WindowStart != nil && summary.WindowEnd != nil {
		line += "\n" + Styles.Label.Render("Window: ") +
			Styles.Timestamp.Render(summary.WindowStart.Format(time.RFC3339)+" .. "+summary.WindowEnd.Format(time.RFC3339))
	}
	for _, msg := range summary.TopErrors {
		line += "\n  " + Styles.Error.Render("•") + " " + msg
	}
	line += "\n" + StatusText(summary.HasErrors) + "\n"

	_, err := io.WriteString(w.w, line)
	return err
}

// WriteError outputs a styled error
func (w *TextWriter) WriteError(code, message string) error {
	if w.Plain {
		_, err := fmt.Fprintf(w.w, "Error [%s]: %s\n", code, message)
		return err
	}
	errorLabel := Styles.Danger.Render("Error")
	codeStr := Styles.Warning.Render("[" + code + "]")
	line := errorLabel + " " + codeStr + ": " + message + "\n"
	_, err := io.WriteString(w.w, line)
	return err
}

// WriteWarning outputs a styled warning
func (w *TextWriter) WriteWarning(code, message string) error {
	if w.Plain {
		_, err := fmt.Fprintf(w.w, "Warning [%s]: %s\n", code, message)
		return err
	}
	line := Styles.Warning.Render("Warning") + " " + Styles.Label.Render("["+code+"]") + ": " + message + "\n"
	_, err := io.WriteString(w.w, line)
	return err
}
