// Copyright © 2024 The symref authors

package cmd

import (
	"encoding/json"
	"io"

	"github.com/luthersystems/symref/diagnostic"
	"github.com/luthersystems/symref/refs"
	"github.com/luthersystems/symref/search"
)

// jsonMatch is the machine-readable form of one match: both byte offsets
// and the line/column of the match start, plus the matched source text.
type jsonMatch struct {
	Path  string `json:"path"`
	Line  int    `json:"line"`
	Col   int    `json:"col"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Kind  string `json:"kind"`
	Text  string `json:"text"`
}

// writeMatchesJSON writes all matches as an indented JSON array. Skipped
// malformed files are omitted; they are reported on stderr.
func writeMatchesJSON(w io.Writer, kind refs.Kind, results []search.Result, sources map[string][]byte) error {
	out := []jsonMatch{}
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		text := string(sources[res.Path])
		for _, m := range res.Matches {
			span := diagnostic.SpanAt(res.Path, text, m.Span.Start, m.Span.End)
			out = append(out, jsonMatch{
				Path:  res.Path,
				Line:  span.Line,
				Col:   span.Col,
				Start: m.Span.Start,
				End:   m.Span.End,
				Kind:  kind.String(),
				Text:  m.Span.Text(text),
			})
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
