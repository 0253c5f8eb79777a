package output

import (
	"io"

	"github.com/vburojevic/sbsearch/internal/domain"
)

// EntryWriter is implemented by both NDJSONWriter and TextWriter.
type EntryWriter interface {
	Write(index int, entry *domain.LogEntry, spans []domain.Span) error
	WriteSummary(summary *domain.LogSummary) error
}

// Emitter streams one page of a view and keeps the running summary.
type Emitter struct {
	w        EntryWriter
	summary  *domain.LogSummary
	analyzer *Analyzer
}

// topErrorLimit caps the recurring error shapes reported in the summary.
const topErrorLimit = 5

// NewEmitter picks the writer for format ("ndjson" or text).
func NewEmitter(w io.Writer, format string, plain bool) *Emitter {
	var ew EntryWriter
	if format == "ndjson" {
		ew = NewNDJSONWriter(w)
	} else {
		tw := NewTextWriter(w)
		tw.Plain = plain
		ew = tw
	}
	return &Emitter{w: ew, summary: domain.NewLogSummary(), analyzer: NewAnalyzer()}
}

func (e *Emitter) Summary() *domain.LogSummary { return e.summary }

// Count adds an entry to the summary without emitting it.
func (e *Emitter) Count(entry *domain.LogEntry) {
	e.summary.Add(entry)
	e.analyzer.Observe(entry)
}

// Emit writes the entry.
func (e *Emitter) Emit(index int, entry *domain.LogEntry, spans []domain.Span) error {
	e.summary.Returned++
	return e.w.Write(index, entry, spans)
}

// Close writes the summary.
func (e *Emitter) Close() error {
	e.summary.TopErrors = e.analyzer.TopErrors(topErrorLimit)
	return e.w.WriteSummary(e.summary)
}
