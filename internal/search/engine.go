package search

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vburojevic/sbsearch/internal/domain"
	"go.uber.org/zap"
)

// ErrClosed is returned by Submit after Close.
var ErrClosed = errors.New("search engine closed")

// Result is the outcome of one submitted query.
type Result struct {
	Generation uint64
	Matches    *domain.MatchSet
	Err        error
}

// Engine runs at most one scan at a time. Submitting a query cancels the
// scan in flight; the newest query always wins.
type Engine struct {
	logger  *zap.Logger
	results chan Result

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
	wg     sync.WaitGroup
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{logger: logger, results: make(chan Result, 1)}
}

// Results delivers the result of each scan that was still current when it
// finished. It is closed by Close.
func (e *Engine) Results() <-chan Result { return e.results }

// Submit compiles q and starts scanning tl in the background, returning the
// generation of the new scan. An invalid query is returned immediately and
// leaves any scan in flight untouched.
func (e *Engine) Submit(tl *domain.Timeline, q domain.Query) (uint64, error) {
	m, err := Compile(q)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, ErrClosed
	}
	if e.cancel != nil {
		e.cancel()
	}
	e.gen++
	gen := e.gen
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	e.wg.Add(1)
	go e.run(ctx, gen, tl, m)
	return gen, nil
}

func (e *Engine) run(ctx context.Context, gen uint64, tl *domain.Timeline, m *Matcher) {
	defer e.wg.Done()

	start := time.Now()
	e.logger.Debug("search started", zap.Uint64("generation", gen), zap.String("pattern", m.query.Pattern))
	ms, err := Scan(ctx, tl, m)
	if err != nil || !e.IsCurrent(gen) {
		e.logger.Debug("search superseded", zap.Uint64("generation", gen))
		return
	}
	e.logger.Debug("search finished",
		zap.Uint64("generation", gen),
		zap.Int("matches", ms.Len()),
		zap.Duration("took", time.Since(start)))

	select {
	case e.results <- Result{Generation: gen, Matches: ms}:
	case <-ctx.Done():
	}
}

// IsCurrent reports whether gen is the newest submitted generation.
func (e *Engine) IsCurrent(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return gen == e.gen
}

// Cancel stops the scan in flight, if any, without starting a new one. Its
// result will never be delivered.
func (e *Engine) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
	e.gen++
}

// Close cancels any scan in flight, waits for it to exit and closes Results.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	if e.cancel != nil {
		e.cancel()
	}
	e.mu.Unlock()

	e.wg.Wait()
	close(e.results)
}
