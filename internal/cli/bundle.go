package cli

import (
	"context"

	"github.com/vburojevic/sbsearch/internal/bundle"
	"github.com/vburojevic/sbsearch/internal/config"
	"github.com/vburojevic/sbsearch/internal/parser"
	"github.com/vburojevic/sbsearch/internal/timeline"
	"go.uber.org/zap"
)

// BundleFlags selects a support bundle and the files read from it
type BundleFlags struct {
	Bundle   string `short:"s" aliases:"support-bundle-path" required:"" help:"Unpacked support bundle directory"`
	Resource string `short:"r" help:"Only read files whose path contains this resource name"`
	Keyword  string `short:"k" help:"Keep only entries containing this keyword (scans every file)"`
}

// Criteria returns the file selection of the flags. A keyword scans every file.
func (f BundleFlags) Criteria() bundle.Criteria {
	return bundle.Criteria{
		Resource: f.Resource,
		ScanAll:  f.Keyword != "" || f.Resource == "",
	}
}

func bundleConfig(globals *Globals) *config.Config {
	if globals.Config == nil {
		return config.Default()
	}
	return globals.Config
}

func newLocator(globals *Globals, root string, logger *zap.Logger) (*bundle.Locator, error) {
	cfg := bundleConfig(globals)
	return bundle.New(root, bundle.Options{
		Include:    cfg.Bundle.IncludeGlobs(),
		Exclude:    cfg.Bundle.Exclude,
		ProbeBytes: cfg.Bundle.ProbeBytes,
		Logger:     logger,
	})
}

func newLoader(globals *Globals, keyword string, logger *zap.Logger) (*timeline.Loader, error) {
	cfg := bundleConfig(globals)
	rules, err := cfg.TimestampRules()
	if err != nil {
		return nil, err
	}
	return timeline.NewLoader(timeline.Options{
		Workers: cfg.Parser.Workers,
		Keyword: keyword,
		Parser:  parser.New(rules, nil),
		Logger:  logger,
	}), nil
}

// loadBundle locates the selected files and merges them into a timeline.
func loadBundle(ctx context.Context, globals *Globals, f BundleFlags, logger *zap.Logger) (*bundle.Report, *timeline.Result, error) {
	loc, err := newLocator(globals, f.Bundle, logger)
	if err != nil {
		return nil, nil, err
	}
	loader, err := newLoader(globals, f.Keyword, logger)
	if err != nil {
		return nil, nil, err
	}

	globals.Debug("Scanning %s for %s", f.Bundle, f.Criteria())
	report, err := loc.Walk(ctx, f.Criteria())
	if err != nil {
		return report, nil, err
	}
	globals.Debug("Found %d files (%d skipped)", len(report.Files), len(report.Skipped))

	res, err := loader.Load(ctx, report.Files)
	if err != nil {
		return report, nil, err
	}
	return report, res, nil
}
