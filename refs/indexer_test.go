// Copyright © 2024 The symref authors

package refs

import (
	"testing"

	"github.com/luthersystems/symref/parser/rdparser"
	"github.com/luthersystems/symref/sexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChildSpans(t *testing.T) {
	tests := []struct {
		source string
		texts  []string
	}{
		{`(a b c)`, []string{`a`, `b`, `c`}},
		{`(a (b c) [d])`, []string{`a`, `(b c)`, `[d]`}},
		{`(f 'g #'h)`, []string{`f`, `'g`, `#'h`}},
		{`(1 "two" ?c)`, []string{`1`, `"two"`, `?c`}},
		{`( spaced   out )`, []string{`spaced`, `out`}},
		{"(multi\n line)", []string{`multi`, `line`}},
		{`(a ; comment
b)`, []string{`a`, `b`}},
		{`()`, nil},
		{`[x y]`, []string{`x`, `y`}},
	}
	for _, test := range tests {
		forms, err := rdparser.ReadAll("test", test.source)
		require.NoError(t, err, test.source)
		require.Len(t, forms, 1, test.source)
		spans := ChildSpans(test.source, forms[0].Span)
		var texts []string
		for _, s := range spans {
			texts = append(texts, s.Text(test.source))
		}
		assert.Equal(t, test.texts, texts, test.source)
	}
}

// Child spans are absolute offsets into the original text, not offsets
// into the parent's interior.
func TestChildSpansAbsolute(t *testing.T) {
	const source = "   (a (b c))"
	forms, err := rdparser.ReadAll("test", source)
	require.NoError(t, err)
	require.Len(t, forms, 1)
	spans := ChildSpans(source, forms[0].Span)
	require.Len(t, spans, 2)
	assert.Equal(t, sexpr.Span{Start: 4, End: 5}, spans[0])
	assert.Equal(t, sexpr.Span{Start: 6, End: 11}, spans[1])
}

// Spans from a nested rescan agree with the cells of the parsed form.
func TestChildSpansAlignWithCells(t *testing.T) {
	const source = `(let ((x 1) (y 2)) (+ x y))`
	forms, err := rdparser.ReadAll("test", source)
	require.NoError(t, err)
	form := forms[0].Form
	spans := ChildSpans(source, forms[0].Span)
	require.Len(t, spans, len(form.Cells))
	assert.Equal(t, "let", spans[0].Text(source))
	assert.Equal(t, "((x 1) (y 2))", spans[1].Text(source))
	assert.Equal(t, "(+ x y)", spans[2].Text(source))
}
