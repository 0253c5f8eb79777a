package search

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/sbsearch/internal/domain"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTimeline(lines ...string) *domain.Timeline {
	entries := make([]domain.LogEntry, len(lines))
	for i, l := range lines {
		entries[i] = domain.LogEntry{Raw: l, Origin: domain.Origin{Line: i + 1}}
	}
	return domain.NewTimeline(entries, nil)
}

func bigTimeline(n int) *domain.Timeline {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("2025-12-08T10:00:00Z level=info msg=\"line %d of the bundle\"", i)
	}
	return newTimeline(lines...)
}

func TestCompile(t *testing.T) {
	t.Run("empty pattern", func(t *testing.T) {
		_, err := Compile(domain.Query{})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
	})

	t.Run("invalid regex", func(t *testing.T) {
		_, err := Compile(domain.Query{Pattern: "err(or", Regex: true})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		assert.Equal(t, domain.KindInvalidQuery, domain.KindOf(err))
	})

	t.Run("regex metacharacters are literal without regex mode", func(t *testing.T) {
		m, err := Compile(domain.Query{Pattern: "err(or"})
		require.NoError(t, err)
		assert.Equal(t, []domain.Span{{Start: 4, End: 10}}, m.Match("xxx err(or"))
	})
}

func TestMatcherMatch(t *testing.T) {
	tests := []struct {
		name  string
		query domain.Query
		raw   string
		want  []domain.Span
	}{
		{"case-insensitive literal", domain.Query{Pattern: "error"}, "ERROR: x error", []domain.Span{{Start: 0, End: 5}, {Start: 9, End: 14}}},
		{"case-sensitive literal", domain.Query{Pattern: "error", CaseSensitive: true}, "ERROR: x error", []domain.Span{{Start: 9, End: 14}}},
		{"non-overlapping literal", domain.Query{Pattern: "aa", CaseSensitive: true}, "aaaa", []domain.Span{{Start: 0, End: 2}, {Start: 2, End: 4}}},
		{"no match", domain.Query{Pattern: "warn"}, "all good", nil},
		{"regex", domain.Query{Pattern: `vm-\d+`, Regex: true}, "start vm-00 and vm-12", []domain.Span{{Start: 6, End: 11}, {Start: 16, End: 21}}},
		{"regex case-sensitive", domain.Query{Pattern: `Vm`, Regex: true, CaseSensitive: true}, "vm Vm", []domain.Span{{Start: 3, End: 5}}},
		{"zero-width regex still yields a span", domain.Query{Pattern: `^`, Regex: true}, "anything", []domain.Span{{Start: 0, End: 0}}},
		{"zero-width matches dropped next to wide ones", domain.Query{Pattern: `x*`, Regex: true}, "axx", []domain.Span{{Start: 1, End: 3}}},
		{"multibyte", domain.Query{Pattern: "café"}, "naïve CAFÉ", []domain.Span{{Start: 7, End: 12}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Match(tt.raw))
		})
	}
}

func TestScan(t *testing.T) {
	t.Run("example scenario", func(t *testing.T) {
		tl := newTimeline("starting", "  at frame 1", "error: boom")
		m, err := Compile(domain.Query{Pattern: "error"})
		require.NoError(t, err)

		ms, err := Scan(context.Background(), tl, m)
		require.NoError(t, err)
		assert.Equal(t, []int{2}, ms.Indices)
		assert.Equal(t, [][]domain.Span{{{Start: 0, End: 5}}}, ms.Spans)
		assert.Equal(t, "error", ms.Query.Pattern)
	})

	t.Run("every match has a span in timeline order", func(t *testing.T) {
		tl := bigTimeline(2000)
		m, err := Compile(domain.Query{Pattern: `line \d*7 `, Regex: true})
		require.NoError(t, err)

		ms, err := Scan(context.Background(), tl, m)
		require.NoError(t, err)
		require.Len(t, ms.Spans, len(ms.Indices))
		assert.Equal(t, 200, ms.Len())
		for i, idx := range ms.Indices {
			assert.NotEmpty(t, ms.Spans[i])
			if i > 0 {
				assert.Greater(t, idx, ms.Indices[i-1])
			}
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		m, err := Compile(domain.Query{Pattern: "line"})
		require.NoError(t, err)

		_, err = Scan(ctx, bigTimeline(10), m)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("empty timeline", func(t *testing.T) {
		m, err := Compile(domain.Query{Pattern: "x"})
		require.NoError(t, err)
		ms, err := Scan(context.Background(), domain.NewTimeline(nil, nil), m)
		require.NoError(t, err)
		assert.Equal(t, 0, ms.Len())
	})
}

func waitResult(t *testing.T, e *Engine) Result {
	t.Helper()
	select {
	case r := <-e.Results():
		return r
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for search result")
		return Result{}
	}
}

func TestEngine(t *testing.T) {
	t.Run("delivers the result of a single query", func(t *testing.T) {
		e := NewEngine(nil)
		defer e.Close()

		gen, err := e.Submit(newTimeline("a", "error b", "c"), domain.Query{Pattern: "error"})
		require.NoError(t, err)

		r := waitResult(t, e)
		assert.Equal(t, gen, r.Generation)
		assert.True(t, e.IsCurrent(r.Generation))
		assert.Equal(t, []int{1}, r.Matches.Indices)
	})

	t.Run("invalid query starts nothing and cancels nothing", func(t *testing.T) {
		e := NewEngine(nil)
		defer e.Close()

		gen, err := e.Submit(newTimeline("x"), domain.Query{Pattern: "x"})
		require.NoError(t, err)
		_, err = e.Submit(newTimeline("x"), domain.Query{Pattern: "(", Regex: true})
		assert.ErrorIs(t, err, domain.ErrInvalidQuery)
		assert.True(t, e.IsCurrent(gen))

		r := waitResult(t, e)
		assert.Equal(t, gen, r.Generation)
	})

	t.Run("newest query wins", func(t *testing.T) {
		e := NewEngine(nil)
		defer e.Close()

		tl := bigTimeline(50000)
		var last uint64
		for i := 0; i < 20; i++ {
			gen, err := e.Submit(tl, domain.Query{Pattern: fmt.Sprintf("line %d ", i)})
			require.NoError(t, err)
			assert.Greater(t, gen, last)
			last = gen
		}

		for {
			r := waitResult(t, e)
			if r.Generation == last {
				assert.Equal(t, "line 19 ", r.Matches.Query.Pattern)
				assert.Equal(t, []int{19}, r.Matches.Indices)
				break
			}
			assert.Less(t, r.Generation, last)
		}
		assert.False(t, e.IsCurrent(last-1))
	})

	t.Run("cancel drops the scan in flight", func(t *testing.T) {
		e := NewEngine(nil)
		gen, err := e.Submit(bigTimeline(50000), domain.Query{Pattern: "line"})
		require.NoError(t, err)
		e.Cancel()
		assert.False(t, e.IsCurrent(gen))
		e.Close()

		for r := range e.Results() {
			// Only a scan that finished before Cancel may have been delivered.
			assert.Equal(t, gen, r.Generation)
		}
	})

	t.Run("submit after close", func(t *testing.T) {
		e := NewEngine(nil)
		e.Close()
		e.Close()
		_, err := e.Submit(newTimeline("x"), domain.Query{Pattern: "x"})
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("close while a result is undelivered does not leak", func(t *testing.T) {
		e := NewEngine(nil)
		for i := 0; i < 3; i++ {
			_, err := e.Submit(newTimeline("x"), domain.Query{Pattern: "x"})
			require.NoError(t, err)
		}
		time.Sleep(10 * time.Millisecond)
		e.Close()
	})
}
