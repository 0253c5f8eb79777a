package output

import (
	"regexp"
	"sort"
	"strings"

	"github.com/vburojevic/sbsearch/internal/domain"
)

var (
	uuidPattern = regexp.MustCompile(`[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}`)
	hexPattern  = regexp.MustCompile(`0x[0-9a-fA-F]+`)
	numPattern  = regexp.MustCompile(`\d+`)
)

// Analyzer groups error entries into recurring message shapes
type Analyzer struct {
	counts map[string]int
	first  map[string]int
}

// NewAnalyzer creates a new log analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{counts: map[string]int{}, first: map[string]int{}}
}

// Observe records e if it is an error.
func (a *Analyzer) Observe(e *domain.LogEntry) {
	if e.Severity != domain.SeverityError {
		return
	}
	msg := normalizeMessage(e.Raw)
	if _, ok := a.first[msg]; !ok {
		a.first[msg] = len(a.first)
	}
	a.counts[msg]++
}

// TopErrors returns up to limit normalized messages, most frequent first
func (a *Analyzer) TopErrors(limit int) []string {
	msgs := make([]string, 0, len(a.counts))
	for msg := range a.counts {
		msgs = append(msgs, msg)
	}
	sort.Slice(msgs, func(i, j int) bool {
		if a.counts[msgs[i]] != a.counts[msgs[j]] {
			return a.counts[msgs[i]] > a.counts[msgs[j]]
		}
		return a.first[msgs[i]] < a.first[msgs[j]]
	})
	if len(msgs) > limit {
		msgs = msgs[:limit]
	}
	return msgs
}

// normalizeMessage removes variable parts to group similar messages
func normalizeMessage(msg string) string {
	msg = uuidPattern.ReplaceAllString(msg, "<uuid>")
	msg = hexPattern.ReplaceAllString(msg, "<addr>")
	msg = numPattern.ReplaceAllString(msg, "<n>")

	// Truncate long messages
	if len(msg) > 100 {
		msg = msg[:100] + "..."
	}

	return strings.TrimSpace(msg)
}
