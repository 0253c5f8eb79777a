package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/vburojevic/sbsearch/internal/config"
	"github.com/vburojevic/sbsearch/internal/logging"
	"github.com/vburojevic/sbsearch/internal/output"
	"go.uber.org/zap"
)

// CLI is the root command structure for sbsearch
type CLI struct {
	// Global flags
	Format   string `short:"f" default:"${config_format}" enum:"ndjson,text" help:"Output format for non-interactive commands"`
	Verbose  bool   `short:"v" help:"Show debug output on stderr"`
	LogLevel string `short:"l" default:"${config_log_level}" help:"Write a diagnostic log at this level (debug, info, warn, error)"`
	LogFile  string `default:"${config_log_file}" help:"Diagnostic log file"`

	// Commands
	UI      UICmd      `cmd:"" default:"withargs" help:"Browse a support bundle interactively"`
	Search  SearchCmd  `cmd:"" help:"Print matching log entries in timeline order"`
	Files   FilesCmd   `cmd:"" help:"List the log files found in a support bundle"`
	Config  ConfigCmd  `cmd:"" help:"Show or manage configuration"`
	Version VersionCmd `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format   string
	Verbose  bool
	LogLevel string
	LogFile  string
	Stdout   io.Writer
	Stderr   io.Writer
	Config   *config.Config
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:   cli.Format,
		Verbose:  cli.Verbose,
		LogLevel: cli.LogLevel,
		LogFile:  cli.LogFile,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Config:   cfg,
	}
	if g.Format == "" {
		g.Format = "text"
	}

	if cfg != nil {
		// If verbose wasn't set via CLI, use config value
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}
	return g
}

// Debug prints a debug message if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose {
		fmt.Fprintf(g.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

// Logger opens the diagnostic log. Without a level it is a no-op logger.
func (g *Globals) Logger() (*zap.Logger, func() error, error) {
	path := g.LogFile
	if path == "" {
		path = logging.DefaultFile
	}
	return logging.New(path, g.LogLevel)
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteMetadata(Version, Commit)
	}
	_, err := io.WriteString(globals.Stdout, "sbsearch version "+Version+" ("+Commit+")\n")
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
)
