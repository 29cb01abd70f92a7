// Copyright © 2024 The symref authors

// Package search runs reference searches across many files, feeding each
// file through the reader and the walker while reporting progress and
// honoring cancellation.  The per-file work is pure; this package owns
// ordering, error policy, and instrumentation.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/luthersystems/symref/parser/rdparser"
	"github.com/luthersystems/symref/refs"
	"github.com/luthersystems/symref/sexpr"
)

// File is one input to a search: a path used for reporting and the full
// source text already read from it.
type File struct {
	Path string
	Text string
}

// Result holds the matches found in one file.  Files with no matches do
// not produce a Result.  When malformed files are being skipped rather
// than aborting the search, a skipped file produces a Result whose Err
// field records why and whose Matches is empty.
type Result struct {
	Path    string
	Matches []refs.Match
	Err     error
}

// Progress receives periodic notification during a search: the number of
// files processed so far and the total number of files.  It is called from
// the searching goroutine and must not block.
type Progress func(done, total int)

// MalformedFileError aborts a search when a file cannot be parsed.  It
// wraps the underlying parse error, which carries the offset.
type MalformedFileError struct {
	Path string
	Err  error
}

func (e *MalformedFileError) Error() string {
	return fmt.Sprintf("malformed input in %s: %v", e.Path, e.Err)
}

func (e *MalformedFileError) Unwrap() error {
	return e.Err
}

const progressInterval = 10

type config struct {
	progress      Progress
	skipMalformed bool
	annotators    []Annotator
}

// Option configures a search.
type Option func(*config)

// WithProgress installs a progress callback, invoked after every tenth
// file and once more when the search completes.
func WithProgress(fn Progress) Option {
	return func(c *config) { c.progress = fn }
}

// WithSkipMalformed records files that fail to parse in their Result and
// continues, instead of aborting the whole search on the first one.
func WithSkipMalformed() Option {
	return func(c *config) { c.skipMalformed = true }
}

// WithAnnotator attaches a tracing annotator to the search.  Annotators
// may be stacked.
func WithAnnotator(a Annotator) Option {
	return func(c *config) { c.annotators = append(c.annotators, a) }
}

// Scanner scratch shared across the files of a search, and across
// concurrent searches.  The per-file parse holds a buffer only while it
// runs.
var scratch = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, 8192)
		return &buf
	},
}

// Search finds references to target of the given kind in every file, in
// input order.  Cancellation is checked between files.  A file that fails
// to parse aborts the search with a *MalformedFileError unless
// WithSkipMalformed was given.
func Search(ctx context.Context, target string, kind refs.Kind, files []File, opts ...Option) ([]Result, error) {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	ctx, end := beginSearch(ctx, c.annotators, target, kind, len(files))
	total := 0
	defer func() { end(total) }()

	var results []Result
	for i, f := range files {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		matches, err := searchFile(target, kind, f)
		if err != nil {
			if !c.skipMalformed {
				return nil, &MalformedFileError{Path: f.Path, Err: err}
			}
			results = append(results, Result{Path: f.Path, Err: err})
		} else if len(matches) > 0 {
			results = append(results, Result{Path: f.Path, Matches: matches})
			total += len(matches)
		}
		annotateFile(ctx, c.annotators, f.Path, len(matches))
		if c.progress != nil && ((i+1)%progressInterval == 0 || i+1 == len(files)) {
			c.progress(i+1, len(files))
		}
	}
	if c.progress != nil && len(files) == 0 {
		// The completion notification fires even with nothing to search
		// so sinks can clear their status line.
		c.progress(0, 0)
	}
	return results, nil
}

func searchFile(target string, kind refs.Kind, f File) ([]refs.Match, error) {
	buf := scratch.Get().(*[]byte)
	defer scratch.Put(buf)
	forms, err := rdparser.ReadAllBuf(f.Path, f.Text, *buf)
	if err != nil {
		return nil, err
	}
	var matches []refs.Match
	for i := range forms {
		pf := &forms[i]
		if !pf.Mentions(target) {
			continue
		}
		if kind == refs.KindSymbol {
			// Every occurrence counts, so the symbol table answers
			// directly without walking the form.
			for _, span := range pf.Occurrences(target) {
				matches = append(matches, refs.Match{Span: span, Form: sexpr.Symbol(target)})
			}
			continue
		}
		matches = append(matches, refs.Walk(f.Text, pf, target, kind)...)
	}
	return matches, nil
}

func beginSearch(ctx context.Context, as []Annotator, target string, kind refs.Kind, nfiles int) (context.Context, func(int)) {
	ends := make([]func(int), 0, len(as))
	for _, a := range as {
		var end func(int)
		ctx, end = a.Begin(ctx, target, kind, nfiles)
		ends = append(ends, end)
	}
	return ctx, func(matches int) {
		// Unwind in reverse so each annotator's span closes inside its
		// parent's.
		for i := len(ends) - 1; i >= 0; i-- {
			ends[i](matches)
		}
	}
}

func annotateFile(ctx context.Context, as []Annotator, path string, matches int) {
	for _, a := range as {
		a.File(ctx, path, matches)
	}
}
