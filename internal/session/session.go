// Package session holds the state of one interactive browsing session: the
// loaded timeline, the active query and its matches, and the cursor.
//
// A Session is owned by a single goroutine (the UI update loop). Search
// results computed elsewhere are handed to it through Apply.
package session

import (
	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/pager"
	"github.com/vburojevic/sbsearch/internal/search"
)

// Mode is the interaction mode of a session.
type Mode int

const (
	Browsing Mode = iota
	QueryEditing
	Filtered
)

func (m Mode) String() string {
	switch m {
	case Browsing:
		return "BROWSE"
	case QueryEditing:
		return "SEARCH"
	case Filtered:
		return "FILTER"
	default:
		return "UNKNOWN"
	}
}

// Searcher runs queries in the background. *search.Engine implements it.
type Searcher interface {
	Submit(tl *domain.Timeline, q domain.Query) (uint64, error)
	Cancel()
}

// Row is one rendered line of the current page.
type Row struct {
	Entry    *domain.LogEntry
	Index    int // position in the timeline
	Selected bool
	Spans    []domain.Span
}

// Page is the page containing the cursor.
type Page struct {
	pager.Window
	Rows []Row
}

// Session is the single owned state of an interactive session.
type Session struct {
	tl       *domain.Timeline
	searcher Searcher
	idx      *pager.Index

	mode    Mode
	query   domain.Query
	matches *domain.MatchSet

	pending    bool
	pendingGen uint64
	err        error
}

// New creates a session browsing the whole of tl.
func New(tl *domain.Timeline, searcher Searcher, pageSize int) *Session {
	return &Session{
		tl:       tl,
		searcher: searcher,
		idx:      pager.New(tl.Len(), pageSize),
	}
}

func (s *Session) Mode() Mode                 { return s.mode }
func (s *Session) Query() domain.Query        { return s.query }
func (s *Session) Matches() *domain.MatchSet  { return s.matches }
func (s *Session) Timeline() *domain.Timeline { return s.tl }
func (s *Session) Pending() bool              { return s.pending }
func (s *Session) Pager() *pager.Index        { return s.idx }

// Err returns the error of the last failed operation, cleared by the next
// successful one.
func (s *Session) Err() error { return s.err }

// BeginSearch enters query editing. The current view stays visible.
func (s *Session) BeginSearch() {
	if s.mode == QueryEditing {
		return
	}
	s.mode = QueryEditing
	s.err = nil
}

// Cancel leaves query editing and returns to browsing the full timeline,
// dropping any active or pending query.
func (s *Session) Cancel() {
	if s.mode != QueryEditing {
		return
	}
	s.reset()
}

// Clear drops the active filter and returns to browsing.
func (s *Session) Clear() {
	if s.mode != Filtered {
		return
	}
	s.reset()
}

func (s *Session) reset() {
	if s.pending {
		s.searcher.Cancel()
	}
	s.pending = false
	s.query = domain.Query{}
	s.mode = Browsing
	s.err = nil
	s.setMatches(nil)
}

// Submit starts a search for q. An empty pattern clears the filter. An
// invalid pattern is returned as an INVALID_QUERY error and leaves the
// session in query editing with the previous matches intact.
//
// Until Apply receives the result the session is Filtered and Pending, and
// the previous view stays on screen.
func (s *Session) Submit(q domain.Query) error {
	if q.Empty() {
		s.reset()
		return nil
	}

	gen, err := s.searcher.Submit(s.tl, q)
	if err != nil {
		s.err = err
		s.mode = QueryEditing
		return err
	}
	s.err = nil
	s.query = q
	s.mode = Filtered
	s.pending = true
	s.pendingGen = gen
	return nil
}

// Apply installs r if it answers the most recent submitted query. It
// reports whether the view changed.
func (s *Session) Apply(r search.Result) bool {
	if !s.pending || r.Generation != s.pendingGen {
		return false
	}
	s.pending = false
	if r.Err != nil {
		s.err = r.Err
		return false
	}
	s.setMatches(r.Matches)
	return true
}

// setMatches switches the view; the cursor goes back to the first row.
func (s *Session) setMatches(ms *domain.MatchSet) {
	s.matches = ms
	s.idx.Reset(s.viewLen())
}

func (s *Session) viewLen() int {
	if s.matches != nil {
		return s.matches.Len()
	}
	return s.tl.Len()
}

// timelineIndex maps a row of the view to a timeline index.
func (s *Session) timelineIndex(row int) int {
	if s.matches != nil {
		return s.matches.Indices[row]
	}
	return row
}

// Selected returns the entry under the cursor, or nil on an empty view.
func (s *Session) Selected() *domain.LogEntry {
	if s.viewLen() == 0 {
		return nil
	}
	return s.tl.At(s.timelineIndex(s.idx.Cursor()))
}

// PageWindow returns the rows of the page containing the cursor.
func (s *Session) PageWindow() Page {
	w := s.idx.Window()
	p := Page{Window: w, Rows: make([]Row, 0, w.End-w.Start)}
	for row := w.Start; row < w.End; row++ {
		i := s.timelineIndex(row)
		r := Row{Entry: s.tl.At(i), Index: i, Selected: row == w.Cursor}
		if s.matches != nil {
			r.Spans = s.matches.Spans[row]
		}
		p.Rows = append(p.Rows, r)
	}
	return p
}

// ExportCurrentView returns the raw lines of the active view in order.
func (s *Session) ExportCurrentView() []string {
	n := s.viewLen()
	lines := make([]string, n)
	for row := 0; row < n; row++ {
		lines[row] = s.tl.At(s.timelineIndex(row)).Raw
	}
	return lines
}
