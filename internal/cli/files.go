package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/sbsearch/internal/bundle"
	"github.com/vburojevic/sbsearch/internal/output"
)

// FilesCmd lists the log files a search would read
type FilesCmd struct {
	Bundle   string `short:"s" aliases:"support-bundle-path" required:"" help:"Unpacked support bundle directory"`
	Resource string `short:"r" help:"Only list files whose path contains this resource name"`
	Skipped  bool   `help:"Also list binary, archive and unreadable files"`
}

// Run executes the files command
func (c *FilesCmd) Run(globals *Globals) error {
	ctx := context.Background()

	logger, closeLog, err := globals.Logger()
	if err != nil {
		return outputErrorCommon(globals, "LOG_FILE", err.Error())
	}
	defer closeLog()

	loc, err := newLocator(globals, c.Bundle, logger)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_CONFIG", err.Error())
	}
	crit := bundle.Criteria{Resource: c.Resource, ScanAll: c.Resource == ""}
	report, err := loc.Walk(ctx, crit)
	if err != nil && report == nil {
		return outputError(globals, err)
	}

	if globals.Format == "ndjson" {
		emitInfo(globals, BundleFlags{Bundle: c.Bundle, Resource: c.Resource}, len(report.Files))
		if werr := c.outputNDJSON(globals, report); werr != nil {
			return werr
		}
	} else if werr := c.outputText(globals, report); werr != nil {
		return werr
	}
	if err != nil {
		return outputError(globals, err)
	}
	return nil
}

func (c *FilesCmd) outputNDJSON(globals *Globals, report *bundle.Report) error {
	w := output.NewNDJSONWriter(globals.Stdout)
	for i := range report.Files {
		if err := w.WriteFile(&report.Files[i]); err != nil {
			return err
		}
	}
	if c.Skipped {
		for _, s := range report.Skipped {
			if err := w.WriteSkipped(s.Rel, string(s.Reason)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (c *FilesCmd) outputText(globals *Globals, report *bundle.Report) error {
	if len(report.Files) > 0 {
		table := tablewriter.NewWriter(globals.Stdout)
		table.Header("ID", "Path", "Resource", "Size", "Modified")
		var total int64
		for _, f := range report.Files {
			total += f.Size
			if err := table.Append([]string{
				strconv.Itoa(f.ID),
				f.Rel,
				f.Resource,
				humanize.IBytes(uint64(f.Size)),
				humanize.Time(f.ModTime),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Fprintf(globals.Stdout, "\n%s file(s), %s\n", humanize.Comma(int64(len(report.Files))), humanize.IBytes(uint64(total)))
	}

	if len(report.Skipped) == 0 {
		return nil
	}
	if !c.Skipped {
		fmt.Fprintf(globals.Stdout, "%d file(s) skipped (use --skipped to list)\n", len(report.Skipped))
		return nil
	}
	fmt.Fprintln(globals.Stdout, "\nSkipped:")
	for _, s := range report.Skipped {
		fmt.Fprintf(globals.Stdout, "  %-12s %s\n", s.Reason, s.Rel)
	}
	return nil
}
