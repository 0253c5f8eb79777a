// Package timeline merges per-file log entries into one chronological stream.
package timeline

import (
	"container/heap"
	"context"
	"io"
	"sort"
	"time"

	"github.com/vburojevic/sbsearch/internal/domain"
)

// Source yields the entries of one file in non-decreasing timeline order.
// Next returns io.EOF when exhausted.
type Source interface {
	Next(ctx context.Context) (domain.LogEntry, error)
}

// SliceSource is a Source over entries already in memory.
type SliceSource struct {
	entries []domain.LogEntry
	pos     int
}

// NewSliceSource returns a Source over entries. The slice is not copied.
func NewSliceSource(entries []domain.LogEntry) *SliceSource {
	return &SliceSource{entries: entries}
}

func (s *SliceSource) Next(ctx context.Context) (domain.LogEntry, error) {
	if err := ctx.Err(); err != nil {
		return domain.LogEntry{}, err
	}
	if s.pos >= len(s.entries) {
		return domain.LogEntry{}, io.EOF
	}
	e := s.entries[s.pos]
	s.pos++
	return e, nil
}

// Normalize reorders the entries of a single file so that their effective
// times never decrease. Entries are grouped into blocks of one anchor and the
// continuations that follow it; blocks are stably sorted by anchor time, so
// continuations stay attached and equal times keep file order. Continuations
// before the first anchor form a leading block at the zero time.
func Normalize(entries []domain.LogEntry) []domain.LogEntry {
	if sorted(entries) {
		return entries
	}

	type block struct {
		at         time.Time
		start, end int
	}
	var blocks []block
	for i := range entries {
		if i == 0 || entries[i].Timestamp != nil {
			blocks = append(blocks, block{at: entries[i].Effective, start: i})
		}
		blocks[len(blocks)-1].end = i + 1
	}
	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].at.Before(blocks[j].at) })

	out := make([]domain.LogEntry, 0, len(entries))
	for _, b := range blocks {
		out = append(out, entries[b.start:b.end]...)
	}
	return out
}

func sorted(entries []domain.LogEntry) bool {
	for i := 1; i < len(entries); i++ {
		if entries[i].Effective.Before(entries[i-1].Effective) {
			return false
		}
	}
	return true
}

// MergedSource performs a k-way merge of several sources, keyed by
// (Effective, Origin.File, Origin.Line).
type MergedSource struct {
	sources []Source
	h       entryHeap
	started bool
}

// NewMergedSource creates a merge over sources.
func NewMergedSource(sources ...Source) *MergedSource {
	return &MergedSource{sources: sources}
}

func (m *MergedSource) init(ctx context.Context) error {
	m.started = true
	m.h = make(entryHeap, 0, len(m.sources))
	for i, src := range m.sources {
		e, err := src.Next(ctx)
		if err == io.EOF {
			continue
		}
		if err != nil {
			return err
		}
		m.h = append(m.h, head{entry: e, source: i})
	}
	heap.Init(&m.h)
	return nil
}

// Next returns the earliest remaining entry across all sources.
func (m *MergedSource) Next(ctx context.Context) (domain.LogEntry, error) {
	if !m.started {
		if err := m.init(ctx); err != nil {
			return domain.LogEntry{}, err
		}
	}
	if m.h.Len() == 0 {
		return domain.LogEntry{}, io.EOF
	}

	top := m.h[0]
	next, err := m.sources[top.source].Next(ctx)
	switch {
	case err == io.EOF:
		heap.Pop(&m.h)
	case err != nil:
		return domain.LogEntry{}, err
	default:
		m.h[0].entry = next
		heap.Fix(&m.h, 0)
	}
	return top.entry, nil
}

// Merge drains all sources into a single slice in timeline order.
func Merge(ctx context.Context, sources ...Source) ([]domain.LogEntry, error) {
	m := NewMergedSource(sources...)
	var out []domain.LogEntry
	for {
		e, err := m.Next(ctx)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

type head struct {
	entry  domain.LogEntry
	source int
}

type entryHeap []head

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].entry.Before(&h[j].entry) {
		return true
	}
	if h[j].entry.Before(&h[i].entry) {
		return false
	}
	return h[i].source < h[j].source
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(head)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
