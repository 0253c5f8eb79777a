// Package search finds entries of a timeline matching a query.
package search

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/vburojevic/sbsearch/internal/domain"
)

// ctxCheckEvery is how many entries are scanned between context checks.
const ctxCheckEvery = 512

// Matcher is a compiled query. It is immutable and safe for concurrent use.
type Matcher struct {
	query  domain.Query
	needle string
	re     *regexp.Regexp
}

// Compile compiles q once for reuse across all entries. Case-sensitive literals
// use a plain substring search; everything else goes through regexp.
func Compile(q domain.Query) (*Matcher, error) {
	if q.Empty() {
		return nil, domain.NewError(domain.KindInvalidQuery, "", errors.New("empty pattern"))
	}

	m := &Matcher{query: q}
	if !q.Regex && q.CaseSensitive {
		m.needle = q.Pattern
		return m, nil
	}

	expr := q.Pattern
	if !q.Regex {
		expr = regexp.QuoteMeta(expr)
	}
	if !q.CaseSensitive {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, domain.NewError(domain.KindInvalidQuery, q.Pattern, err)
	}
	m.re = re
	return m, nil
}

// Query returns the query m was compiled from.
func (m *Matcher) Query() domain.Query { return m.query }

// Match returns the highlight spans of raw, or nil when raw does not match.
// A matching line always yields at least one span; zero-width regexp matches
// are only reported when nothing wider matched.
func (m *Matcher) Match(raw string) []domain.Span {
	if m.re == nil {
		return literalSpans(raw, m.needle)
	}

	locs := m.re.FindAllStringIndex(raw, -1)
	if locs == nil {
		return nil
	}
	spans := make([]domain.Span, 0, len(locs))
	for _, loc := range locs {
		if loc[1] > loc[0] {
			spans = append(spans, domain.Span{Start: loc[0], End: loc[1]})
		}
	}
	if len(spans) == 0 {
		spans = append(spans, domain.Span{Start: locs[0][0], End: locs[0][0]})
	}
	return spans
}

func literalSpans(raw, needle string) []domain.Span {
	var spans []domain.Span
	for off := 0; off <= len(raw); {
		i := strings.Index(raw[off:], needle)
		if i < 0 {
			break
		}
		start := off + i
		spans = append(spans, domain.Span{Start: start, End: start + len(needle)})
		off = start + len(needle)
	}
	return spans
}

// Scan applies m to every entry of tl in timeline order. It returns ctx.Err()
// if the context is cancelled mid-scan.
func Scan(ctx context.Context, tl *domain.Timeline, m *Matcher) (*domain.MatchSet, error) {
	ms := &domain.MatchSet{Query: m.query}
	n := tl.Len()
	for i := 0; i < n; i++ {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if spans := m.Match(tl.At(i).Raw); spans != nil {
			ms.Indices = append(ms.Indices, i)
			ms.Spans = append(ms.Spans, spans)
		}
	}
	return ms, nil
}
