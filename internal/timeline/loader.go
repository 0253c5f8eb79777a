package timeline

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/parser"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single log line. Longer lines fail the file.
const maxLineSize = 1024 * 1024

// ctxCheckLines is how often a reader looks at its context.
const ctxCheckLines = 1024

// Options configures a Loader.
type Options struct {
	// Workers bounds concurrent file parsing. Zero means runtime.NumCPU().
	Workers int
	// Keyword keeps only entries containing it, plus the continuations of
	// kept anchors. Empty keeps everything.
	Keyword string
	Parser  *parser.Parser
	Logger  *zap.Logger
}

// Loader parses resource files and merges them into a Timeline.
type Loader struct {
	workers int
	keyword string
	parser  *parser.Parser
	logger  *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	p := opts.Parser
	if p == nil {
		p = parser.NewDefault()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{workers: workers, keyword: opts.Keyword, parser: p, logger: logger}
}

// Result is a loaded timeline plus the files that could not be read.
type Result struct {
	Timeline *domain.Timeline
	// Skipped holds one FILE_READ_ERROR per unreadable file, in file order.
	Skipped []error
}

// Load parses files concurrently, one file per worker, and merges them.
// Unreadable files are reported in Result.Skipped rather than failing the load.
// Only context cancellation aborts it.
func (l *Loader) Load(ctx context.Context, files []domain.ResourceFile) (*Result, error) {
	refs := make([]*domain.ResourceFile, len(files))
	for i := range files {
		f := files[i]
		refs[i] = &f
	}

	slots := make([][]domain.LogEntry, len(refs))
	failures := make([]error, len(refs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, f := range refs {
		g.Go(func() error {
			entries, err := l.readFile(gctx, f)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.logger.Warn("skipping unreadable file", zap.String("path", f.Rel), zap.Error(err))
				failures[i] = domain.NewError(domain.KindFileRead, f.Rel, err)
				return nil
			}
			if l.keyword != "" {
				entries = prefilter(entries, l.keyword)
			}
			slots[i] = Normalize(entries)
			l.logger.Debug("parsed file", zap.String("path", f.Rel), zap.Int("entries", len(entries)))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sources := make([]Source, 0, len(slots))
	total := 0
	for _, entries := range slots {
		total += len(entries)
		sources = append(sources, NewSliceSource(entries))
	}
	merged, err := Merge(ctx, sources...)
	if err != nil {
		return nil, err
	}
	if merged == nil {
		merged = make([]domain.LogEntry, 0)
	}

	res := &Result{Timeline: domain.NewTimeline(merged, refs)}
	for _, err := range failures {
		if err != nil {
			res.Skipped = append(res.Skipped, err)
		}
	}
	l.logger.Info("timeline loaded",
		zap.Int("files", len(refs)),
		zap.Int("entries", total),
		zap.Int("skipped", len(res.Skipped)))
	return res, nil
}

func (l *Loader) readFile(ctx context.Context, f *domain.ResourceFile) ([]domain.LogEntry, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	fp := l.parser.ForFile(f)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var entries []domain.LogEntry
	for n := 0; scanner.Scan(); n++ {
		if n%ctxCheckLines == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		entries = append(entries, fp.Next(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("line %d: %w", len(entries)+1, err)
	}
	return entries, nil
}

// prefilter keeps entries containing keyword, and continuations whose anchor
// was kept. Entries are in file order.
func prefilter(entries []domain.LogEntry, keyword string) []domain.LogEntry {
	out := entries[:0:0]
	keepBlock := false
	for _, e := range entries {
		hit := strings.Contains(e.Raw, keyword)
		if !e.Continuation {
			keepBlock = hit
		}
		if hit || (e.Continuation && keepBlock) {
			out = append(out, e)
		}
	}
	return out
}
