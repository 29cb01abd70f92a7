// Copyright © 2024 The symref authors

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/luthersystems/symref/diagnostic"
	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/refs"
	"github.com/luthersystems/symref/search"
)

func colorMode() diagnostic.ColorMode {
	switch colorFlag {
	case "always":
		return diagnostic.ColorAlways
	case "never":
		return diagnostic.ColorNever
	default:
		return diagnostic.ColorAuto
	}
}

// newRenderer builds a renderer over the file contents the search already
// read, falling back to the filesystem for paths outside the cache.
func newRenderer(sources map[string][]byte) *diagnostic.Renderer {
	r := &diagnostic.Renderer{Color: colorMode()}
	if sources != nil {
		r.SourceReader = func(name string) ([]byte, error) {
			if src, ok := sources[name]; ok {
				return src, nil
			}
			return os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
		}
	}
	return r
}

// resultDiagnostics converts search results to renderable diagnostics:
// one note per matched file carrying a span per match, and one warning per
// file skipped as malformed.
func resultDiagnostics(kind refs.Kind, target string, results []search.Result, sources map[string][]byte) []diagnostic.Diagnostic {
	var diags []diagnostic.Diagnostic
	for _, res := range results {
		if res.Err != nil {
			diags = append(diags, diagnostic.Diagnostic{
				Severity: diagnostic.SeverityWarning,
				Message:  fmt.Sprintf("skipped malformed file %s", res.Path),
				Notes:    []string{res.Err.Error()},
			})
			continue
		}
		text := string(sources[res.Path])
		d := diagnostic.Diagnostic{
			Severity: diagnostic.SeverityNote,
			Message:  fmt.Sprintf("%d %s reference(s) to %s in %s", len(res.Matches), kind, target, res.Path),
		}
		for _, m := range res.Matches {
			d.Spans = append(d.Spans, diagnostic.SpanAt(res.Path, text, m.Span.Start, m.Span.End))
		}
		diags = append(diags, d)
	}
	return diags
}

// searchErrorDiagnostic shapes a fatal search failure for display.
func searchErrorDiagnostic(err error) diagnostic.Diagnostic {
	var mfe *search.MalformedFileError
	if !errors.As(err, &mfe) {
		return diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Message:  err.Error(),
		}
	}
	msg := fmt.Sprintf("search aborted: malformed input in %s", mfe.Path)
	if off := offsetOf(err); off >= 0 {
		msg = fmt.Sprintf("%s at offset %d", msg, off)
	}
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Message:  msg,
	}
	var lerr *token.LocationError
	if errors.As(err, &lerr) && lerr.Source != nil {
		d.Spans = append(d.Spans, diagnostic.Span{
			File:  lerr.Source.File,
			Line:  lerr.Source.Line,
			Col:   lerr.Source.Col,
			Label: lerr.Err.Error(),
		})
	}
	return d
}
