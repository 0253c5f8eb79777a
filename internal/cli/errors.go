package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/vburojevic/sbsearch/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so scripts always get machine-readable failures.
func outputErrorCommon(globals *Globals, code, message string, hint ...string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(code, message, hint...)
	} else if globals != nil {
		stderrWriter(globals).WriteError(code, message)
		if len(hint) > 0 && hint[0] != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint[0])
		}
	}
	return errors.New(message)
}

// outputError emits err with the code and hint of its kind.
func outputError(globals *Globals, err error) error {
	ce := newCLIError(err)
	outputErrorCommon(globals, ce.Code, ce.Message, ce.Hint)
	return err
}

// emitWarning reports a non-fatal problem without interrupting output.
func emitWarning(globals *Globals, code, msg string) {
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteWarning(code, msg)
		return
	}
	stderrWriter(globals).WriteWarning(code, msg)
}

// emitInfo announces what a command is about to read. Text output stays quiet.
func emitInfo(globals *Globals, f BundleFlags, files int) {
	if globals.Format != "ndjson" {
		return
	}
	mode := "all"
	if !f.Criteria().ScanAll {
		mode = "resource"
	}
	output.NewNDJSONWriter(globals.Stdout).WriteInfo("bundle loaded", f.Bundle, mode, files)
}

func stderrWriter(globals *Globals) *output.TextWriter {
	w := output.NewTextWriter(globals.Stderr)
	f, ok := globals.Stderr.(*os.File)
	w.Plain = !ok || !isatty.IsTerminal(f.Fd())
	return w
}
