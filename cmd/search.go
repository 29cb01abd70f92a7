// Copyright © 2024 The symref authors

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/refs"
	"github.com/luthersystems/symref/search"
	"github.com/spf13/cobra"
)

var (
	searchJSON     bool
	searchSkip     bool
	searchExcludes []string
	searchQuiet    bool
)

// searchCommands binds one subcommand per classifier kind. All of them
// share runSearch; only the kind differs.
var searchCommands = []*cobra.Command{
	newKindCommand(refs.KindFunction, "Find calls to a function",
		"Find calls to NAME: (NAME ...), (funcall 'NAME ...), (apply 'NAME ...).\n"+
			"Definition headers and let bindings are not reported."),
	newKindCommand(refs.KindMacro, "Find uses of a macro",
		"Find uses of the macro NAME: forms written (NAME ...)."),
	newKindCommand(refs.KindSpecialForm, "Find uses of a special form",
		"Find uses of the special form NAME: forms written (NAME ...)."),
	newKindCommand(refs.KindVariable, "Find references to a variable",
		"Find references to the variable NAME: bare occurrences of the symbol\n"+
			"that are not call heads. Symbols being bound by let count as references."),
	newKindCommand(refs.KindSymbol, "Find every occurrence of a symbol",
		"Find every occurrence of the symbol NAME regardless of the role it\n"+
			"plays where it appears."),
}

func newKindCommand(kind refs.Kind, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:   kind.String() + " NAME [path...]",
		Short: short,
		Long:  long + searchUsageTrailer,
		Args:  cobra.MinimumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			runSearch(cmd, kind, args[0], args[1:])
		},
	}
}

const searchUsageTrailer = `

Paths may be files, glob patterns, or dir/... for a recursive search. With
no paths, ./... is searched.`

func init() {
	for _, c := range searchCommands {
		c.Flags().BoolVar(&searchJSON, "json", false, "Output matches as JSON")
		c.Flags().BoolVar(&searchSkip, "skip-malformed", false, "Skip files that fail to parse instead of aborting")
		c.Flags().BoolVarP(&searchQuiet, "quiet", "q", false, "Suppress the progress line on stderr")
		c.Flags().StringArrayVar(&searchExcludes, "exclude", nil, "Exclude files or directories matching a glob pattern (repeatable)")
		rootCmd.AddCommand(c)
	}
}

func runSearch(cmd *cobra.Command, kind refs.Kind, target string, paths []string) {
	if len(paths) == 0 {
		paths = []string{"./..."}
	}
	expanded, err := expandArgs(paths, searchExcludes)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	files := make([]search.File, 0, len(expanded))
	sources := make(map[string][]byte, len(expanded))
	for _, path := range expanded {
		src, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(2)
		}
		files = append(files, search.File{Path: path, Text: string(src)})
		sources[path] = src
	}

	opts := []search.Option{
		search.WithAnnotator(search.NewOpenTelemetryAnnotator()),
		search.WithAnnotator(search.NewOpenCensusAnnotator()),
	}
	if searchSkip {
		opts = append(opts, search.WithSkipMalformed())
	}
	if !searchQuiet {
		opts = append(opts, search.WithProgress(stderrProgress()))
	}

	results, err := search.Search(cmd.Context(), target, kind, files, opts...)
	if err != nil {
		renderSearchError(err)
		os.Exit(2)
	}

	if searchJSON {
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "skipped malformed file %s: %v\n", res.Path, res.Err)
			}
		}
		if err := writeMatchesJSON(os.Stdout, kind, results, sources); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
	} else {
		renderResults(kind, target, results, sources)
	}

	for _, res := range results {
		if len(res.Matches) > 0 {
			return
		}
	}
	os.Exit(1)
}

// stderrProgress returns a progress callback that maintains a single
// status line on stderr, cleared by the final notification. Nothing is
// printed when stderr is not a terminal.
func stderrProgress() search.Progress {
	if !isTerminal(os.Stderr) {
		return func(done, total int) {}
	}
	return func(done, total int) {
		if done < total {
			fmt.Fprintf(os.Stderr, "\rsearching %d/%d files...", done, total)
		} else {
			fmt.Fprintf(os.Stderr, "\r%*s\r", len(fmt.Sprintf("searching %d/%d files...", total, total)), "")
		}
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func renderSearchError(err error) {
	d := searchErrorDiagnostic(err)
	if rerr := newRenderer(nil).Render(os.Stderr, d); rerr != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

func renderResults(kind refs.Kind, target string, results []search.Result, sources map[string][]byte) {
	r := newRenderer(sources)
	diags := resultDiagnostics(kind, target, results, sources)
	if err := r.RenderAll(os.Stdout, diags); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	total := 0
	matched := 0
	for _, res := range results {
		if len(res.Matches) > 0 {
			total += len(res.Matches)
			matched++
		}
	}
	if len(diags) > 0 {
		fmt.Println()
	}
	fmt.Printf("%d %s reference(s) to %s in %d file(s)\n", total, kind, target, matched)
}

// offsetOf extracts the byte offset from a search error for display,
// falling back to -1 when the failure carries no location.
func offsetOf(err error) int {
	var lerr *token.LocationError
	if errors.As(err, &lerr) && lerr.Source != nil {
		return lerr.Source.Pos
	}
	return -1
}
