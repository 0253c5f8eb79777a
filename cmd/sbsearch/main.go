package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/vburojevic/sbsearch/internal/cli"
	"github.com/vburojevic/sbsearch/internal/config"
)

const quickStart = `sbsearch - search and browse support bundle logs

START HERE:
  sbsearch -s ./supportbundle_2025-12-30 -k error

Flags:
  -s    Unpacked support bundle directory
  -k    Keyword; only entries containing it are loaded
  -r    Resource name; only files whose path contains it are read

Other useful commands:
  sbsearch files -s <bundle>            List the log files that would be read
  sbsearch search -s <bundle> <query>   Print matching entries without the UI
  sbsearch config generate              Print a sample configuration file
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":         cfg.Format,
		"config_log_level":      cfg.LogLevel,
		"config_log_file":       cfg.LogFile,
		"config_page_size":      strconv.Itoa(cfg.UI.PageSize),
		"config_regex":          strconv.FormatBool(cfg.Search.Regex),
		"config_case_sensitive": strconv.FormatBool(cfg.Search.CaseSensitive),
	}

	ctx := kong.Parse(&c,
		kong.Name("sbsearch"),
		kong.Description("Search and browse the logs of an unpacked support bundle as one chronological stream"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	globals := cli.NewGlobalsWithConfig(&c, cfg)
	if err := ctx.Run(globals); err != nil {
		os.Exit(1)
	}
}
