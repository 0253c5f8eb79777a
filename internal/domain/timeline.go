package domain

// Timeline is the globally ordered merge of all selected log files.
// It is built once and never mutated afterwards.
type Timeline struct {
	entries []LogEntry
	files   []*ResourceFile
}

// NewTimeline wraps entries that are already in timeline order.
func NewTimeline(entries []LogEntry, files []*ResourceFile) *Timeline {
	return &Timeline{entries: entries, files: files}
}

// Len returns the number of entries.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// At returns the entry at index i.
func (t *Timeline) At(i int) *LogEntry {
	return &t.entries[i]
}

// Files returns the resource files the timeline was built from.
func (t *Timeline) Files() []*ResourceFile {
	if t == nil {
		return nil
	}
	return t.files
}

// Span is a half-open byte range [Start, End) inside an entry's Raw text
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Query is a submitted search pattern. Superseded, never mutated.
type Query struct {
	Pattern       string `json:"pattern"`
	Regex         bool   `json:"regex,omitempty"`
	CaseSensitive bool   `json:"case_sensitive,omitempty"`
}

// Empty reports whether the query has no pattern.
func (q Query) Empty() bool { return q.Pattern == "" }

// MatchSet is the result of applying a Query to a Timeline: matching entry
// indices in timeline order with the highlight spans of each.
type MatchSet struct {
	Query   Query
	Indices []int
	Spans   [][]Span
}

// Len returns the number of matching entries.
func (m *MatchSet) Len() int {
	if m == nil {
		return 0
	}
	return len(m.Indices)
}
