package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/vburojevic/sbsearch/internal/domain"
	"github.com/vburojevic/sbsearch/internal/search"
	"github.com/vburojevic/sbsearch/internal/session"
	"github.com/vburojevic/sbsearch/internal/timeline"
	"github.com/vburojevic/sbsearch/internal/tui"
	"go.uber.org/zap"
)

// UICmd launches the interactive bundle browser
type UICmd struct {
	BundleFlags

	Query         string `short:"q" help:"Filter applied as soon as the bundle is loaded"`
	Regex         bool   `default:"${config_regex}" negatable:"" help:"Treat queries as regular expressions"`
	CaseSensitive bool   `short:"c" default:"${config_case_sensitive}" negatable:"" help:"Match queries case-sensitively"`
	PageSize      int    `default:"${config_page_size}" help:"Entries per page"`
}

// Run executes the UI command
func (c *UICmd) Run(globals *Globals) error {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return outputErrorCommon(globals, "NOT_A_TERMINAL", "ui needs an interactive terminal",
			"Use `sbsearch search` to print entries to a pipe or file")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	logger, closeLog, err := globals.Logger()
	if err != nil {
		return outputErrorCommon(globals, "LOG_FILE", err.Error())
	}
	defer closeLog()

	// Fail fast on a bad bundle or query before taking over the terminal.
	if _, err := newLocator(globals, c.Bundle, logger); err != nil {
		return outputErrorCommon(globals, "INVALID_CONFIG", err.Error())
	}
	q := domain.Query{Pattern: c.Query, Regex: c.Regex, CaseSensitive: c.CaseSensitive}
	if !q.Empty() {
		if _, err := search.Compile(q); err != nil {
			return outputError(globals, err)
		}
	}

	engine := search.NewEngine(logger)
	defer engine.Close()

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("working directory: %w", err)
	}

	model := tui.New(ctx, tui.Options{
		Title:    c.Bundle,
		PageSize: c.PageSize,
		Query:    q,
		Engine:   engine,
		Exporter: session.NewExporter(wd),
		Logger:   logger,
		Load: func(ctx context.Context) (*timeline.Result, error) {
			_, res, err := loadBundle(ctx, globals, c.BundleFlags, logger)
			return res, err
		},
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	logger.Info("session closed", zap.String("bundle", c.Bundle))

	// A load failure is shown in the UI; report it again once the terminal is restored.
	if m, ok := final.(tui.Model); ok && m.Session() == nil && m.Err() != nil {
		return outputError(globals, m.Err())
	}
	return nil
}
