package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/output"
	"github.com/vburojevic/sbsearch/internal/search"
)

// SearchCmd prints the entries of a bundle matching a query
type SearchCmd struct {
	BundleFlags

	Query         string `arg:"" optional:"" help:"Pattern to match; empty prints every entry"`
	Regex         bool   `default:"${config_regex}" negatable:"" help:"Treat the pattern as a regular expression"`
	CaseSensitive bool   `short:"c" default:"${config_case_sensitive}" negatable:"" help:"Match case-sensitively"`
	Offset        int    `default:"0" help:"Skip this many matching entries"`
	Limit         int    `short:"n" default:"0" help:"Print at most this many entries (0 = all)"`
	NoSummary     bool   `help:"Do not print the summary after the entries"`
}

// Run executes the search command
func (c *SearchCmd) Run(globals *Globals) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if c.Offset < 0 || c.Limit < 0 {
		return outputErrorCommon(globals, "INVALID_FLAGS", "--offset and --limit must not be negative")
	}

	q := domain.Query{Pattern: c.Query, Regex: c.Regex, CaseSensitive: c.CaseSensitive}
	var m *search.Matcher
	if !q.Empty() {
		var err error
		if m, err = search.Compile(q); err != nil {
			return outputError(globals, err)
		}
	}

	logger, closeLog, err := globals.Logger()
	if err != nil {
		return outputErrorCommon(globals, "LOG_FILE", err.Error())
	}
	defer closeLog()

	report, res, err := loadBundle(ctx, globals, c.BundleFlags, logger)
	if err != nil {
		return outputError(globals, err)
	}
	emitInfo(globals, c.BundleFlags, len(report.Files))
	for _, serr := range res.Skipped {
		emitWarning(globals, string(domain.KindFileRead), serr.Error())
	}

	tl := res.Timeline
	var ms *domain.MatchSet
	if m != nil {
		if ms, err = search.Scan(ctx, tl, m); err != nil {
			return outputError(globals, err)
		}
	}
	globals.Debug("Timeline has %d entries; query %q", tl.Len(), q.Pattern)

	plain := !isatty.IsTerminal(os.Stdout.Fd())
	if f, ok := globals.Stdout.(*os.File); !ok || f != os.Stdout {
		plain = true
	}
	em := output.NewEmitter(globals.Stdout, globals.Format, plain)
	summary := em.Summary()
	summary.Files = len(report.Files)
	summary.Skipped = len(report.Skipped) + len(res.Skipped)
	summary.Offset = c.Offset

	n := tl.Len()
	if ms != nil {
		n = ms.Len()
	}
	for row := 0; row < n; row++ {
		idx, spans := row, []domain.Span(nil)
		if ms != nil {
			idx, spans = ms.Indices[row], ms.Spans[row]
		}
		e := tl.At(idx)
		em.Count(e)
		if row < c.Offset || (c.Limit > 0 && row >= c.Offset+c.Limit) {
			continue
		}
		if err := em.Emit(idx, e, spans); err != nil {
			return err
		}
	}

	if c.NoSummary {
		return nil
	}
	return em.Close()
}
