package cli

import (
	"encoding/json"
	"fmt"

	"github.com/vburojevic/sbsearch/internal/config"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := bundleConfig(globals)

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type":      "config",
			"format":    cfg.Format,
			"verbose":   cfg.Verbose,
			"log_level": cfg.LogLevel,
			"log_file":  cfg.LogFile,
			"ui":        map[string]interface{}{"page_size": cfg.UI.PageSize},
			"search": map[string]interface{}{
				"regex":          cfg.Search.Regex,
				"case_sensitive": cfg.Search.CaseSensitive,
			},
			"bundle": map[string]interface{}{
				"layout":      cfg.Bundle.Layout,
				"include":     cfg.Bundle.Include,
				"exclude":     cfg.Bundle.Exclude,
				"probe_bytes": cfg.Bundle.ProbeBytes,
			},
			"parser": map[string]interface{}{
				"workers":    cfg.Parser.Workers,
				"timestamps": len(cfg.Parser.Timestamps),
			},
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:    %s\n", cfg.Format)
	fmt.Fprintf(globals.Stdout, "  verbose:   %v\n", cfg.Verbose)
	fmt.Fprintf(globals.Stdout, "  log_level: %s\n", cfg.LogLevel)
	fmt.Fprintf(globals.Stdout, "  log_file:  %s\n", cfg.LogFile)
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  ui.page_size:          %d\n", cfg.UI.PageSize)
	fmt.Fprintf(globals.Stdout, "  search.regex:          %v\n", cfg.Search.Regex)
	fmt.Fprintf(globals.Stdout, "  search.case_sensitive: %v\n", cfg.Search.CaseSensitive)
	fmt.Fprintf(globals.Stdout, "  bundle.layout:         %s\n", cfg.Bundle.Layout)
	fmt.Fprintf(globals.Stdout, "  bundle.probe_bytes:    %d\n", cfg.Bundle.ProbeBytes)
	fmt.Fprintf(globals.Stdout, "  parser.workers:        %d\n", cfg.Parser.Workers)

	if len(cfg.Bundle.Include) > 0 {
		fmt.Fprintf(globals.Stdout, "  bundle.include: %v\n", cfg.Bundle.Include)
	}
	if len(cfg.Bundle.Exclude) > 0 {
		fmt.Fprintf(globals.Stdout, "  bundle.exclude: %v\n", cfg.Bundle.Exclude)
	}
	for _, ts := range cfg.Parser.Timestamps {
		fmt.Fprintf(globals.Stdout, "  parser.timestamps: %s %q\n", ts.Name, ts.Layout)
	}

	if path := config.ConfigFile(); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := config.ConfigFile()

	if globals.Format == "ndjson" {
		output := map[string]interface{}{
			"type": "config_path",
			"path": path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(output)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ./.sbsearch.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.sbsearch.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/sbsearch/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	fmt.Fprint(globals.Stdout, config.Sample)
	return nil
}
