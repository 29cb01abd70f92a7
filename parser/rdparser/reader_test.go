// Copyright © 2024 The symref authors

package rdparser

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/sexpr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadAllForms(t *testing.T) {
	tests := []struct {
		source string
		output []string
	}{
		{`0`, []string{`0`}},
		{`12 -5`, []string{`12`, `-5`}},
		{`0.3`, []string{`0.3`}},
		{`#o777`, []string{`511`}},
		{`#x1f`, []string{`31`}},
		{`abc`, []string{`abc`}},
		{`abc?`, []string{`abc?`}},
		{`-abc`, []string{`-abc`}},
		{`:keyword`, []string{`:keyword`}},
		{`'xyz`, []string{`'xyz`}},
		{"`(a ,b ,@c)", []string{"`(a ,b ,@c)"}},
		{`#'myfun`, []string{`#'myfun`}},
		{`"xyz"`, []string{`"xyz"`}},
		{`"x\nyz"`, []string{`"x\nyz"`}},
		{`""`, []string{`""`}},
		{`""""""`, []string{`""`}},
		{`"""\n"""`, []string{`"\\n"`}},
		{`?a`, []string{`?a`}},
		{`?\n`, []string{"?\n"}},
		{`()`, []string{`()`}},
		{`'()`, []string{`'()`}},
		{`(1 2 3)`, []string{`(1 2 3)`}},
		{`(1 "abc" '(x y z))`, []string{`(1 "abc" '(x y z))`}},
		{`[x y z]`, []string{`[x y z]`}},
		{`(a . b)`, []string{`(a . b)`}},
		{`(a b . c)`, []string{`(a b . c)`}},
		{`(abc :def)`, []string{`(abc :def)`}},
		{`(a) (b) (c)`, []string{`(a)`, `(b)`, `(c)`}},
		{"(1 2 3) ; comment\n(4)", []string{`(1 2 3)`, `(4)`}},
		{"#!/usr/bin/env x\n(a)", []string{`(a)`}},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		var strs []string
		for _, pf := range forms {
			strs = append(strs, pf.Form.String())
		}
		assert.Equal(t, test.output, strs, "test %d: %s", i, test.source)
	}
}

func TestReadAllSpans(t *testing.T) {
	tests := []struct {
		source string
		spans  []sexpr.Span
	}{
		{`(foo bar)`, []sexpr.Span{{Start: 0, End: 9}}},
		{`  (foo bar)`, []sexpr.Span{{Start: 2, End: 11}}},
		{`(a) (b c)`, []sexpr.Span{{Start: 0, End: 3}, {Start: 4, End: 9}}},
		{`'foo`, []sexpr.Span{{Start: 0, End: 4}}},
		{`,@foo`, []sexpr.Span{{Start: 0, End: 5}}},
		{`#'foo`, []sexpr.Span{{Start: 0, End: 5}}},
		{"; leading comment\n(x)", []sexpr.Span{{Start: 18, End: 21}}},
		{`xyz`, []sexpr.Span{{Start: 0, End: 3}}},
		{`[a b]`, []sexpr.Span{{Start: 0, End: 5}}},
		{`(a (b) c)`, []sexpr.Span{{Start: 0, End: 9}}},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		var spans []sexpr.Span
		for _, pf := range forms {
			spans = append(spans, pf.Span)
		}
		assert.Equal(t, test.spans, spans, "test %d: %s", i, test.source)
	}
}

// Comments and whitespace around a form never extend its span.
func TestReadAllSpanText(t *testing.T) {
	const source = "  (foo bar) ; trailing\n\n\t'(baz)  "
	forms, err := ReadAll("test", source)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	assert.Equal(t, "(foo bar)", forms[0].Span.Text(source))
	assert.Equal(t, "'(baz)", forms[1].Span.Text(source))
}

func TestReadAllSymbols(t *testing.T) {
	tests := []struct {
		source string
		syms   []sexpr.SymbolOccurrence
	}{
		{`(foo bar)`, []sexpr.SymbolOccurrence{
			{Name: "foo", Offset: 1},
			{Name: "bar", Offset: 5},
		}},
		{`  (foo (foo))`, []sexpr.SymbolOccurrence{
			{Name: "foo", Offset: 1},
			{Name: "foo", Offset: 6},
		}},
		{`(f 'g #'h)`, []sexpr.SymbolOccurrence{
			{Name: "f", Offset: 1},
			{Name: "g", Offset: 4},
			{Name: "h", Offset: 8},
		}},
		{`(one "two" 3)`, []sexpr.SymbolOccurrence{
			{Name: "one", Offset: 1},
		}},
		{`(1 2 3)`, nil},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		require.Len(t, forms, 1, "test %d: %s", i, test.source)
		assert.Equal(t, test.syms, forms[0].Symbols, "test %d: %s", i, test.source)
	}
}

// Occurrence offsets are relative to the form, so occurrences of the same
// symbol text in consecutive forms do not collide.
func TestReadAllSymbolOffsetsAbsolute(t *testing.T) {
	const source = "(foo)\n(foo)"
	forms, err := ReadAll("test", source)
	require.NoError(t, err)
	require.Len(t, forms, 2)
	occ0 := forms[0].Occurrences("foo")
	occ1 := forms[1].Occurrences("foo")
	require.Len(t, occ0, 1)
	require.Len(t, occ1, 1)
	assert.Equal(t, "foo", occ0[0].Text(source))
	assert.Equal(t, "foo", occ1[0].Text(source))
	assert.Equal(t, sexpr.Span{Start: 1, End: 4}, occ0[0])
	assert.Equal(t, sexpr.Span{Start: 7, End: 10}, occ1[0])
}

func TestReadAllTruncated(t *testing.T) {
	tests := []struct {
		source string
		nforms int
	}{
		{`(foo bar`, 0},
		{`(a b) (c`, 1},
		{`(a b) (c d) (`, 2},
		{`'`, 0},
		{`(a b) '`, 1},
		{`#'`, 0},
		{`(a (b c`, 0},
		{`[a b`, 0},
		{`(a . `, 0},
		{`(a "unterminated`, 0},
		{`(a b) "unterminated`, 1},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		assert.Len(t, forms, test.nforms, "test %d: %s", i, test.source)
	}
}

func TestReadAllMalformed(t *testing.T) {
	tests := []struct {
		source string
	}{
		{`)`},
		{`(a))`},
		{`(a . )`},
		{`(. a)`},
		{`(a . b c)`},
		{`(a ])`},
		{`[a )`},
		{`#o9`},
		{`#xzz`},
		{`#q`},
	}
	for i, test := range tests {
		_, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.Error(t, err, "test %d: %s", i, test.source) {
			continue
		}
		assert.NotErrorIs(t, err, ErrTruncated, "test %d: %s", i, test.source)
		var lerr *token.LocationError
		if assert.True(t, errors.As(err, &lerr), "test %d: %s", i, test.source) {
			assert.Equal(t, fmt.Sprintf("test%d", i), lerr.Source.File, "test %d", i)
			assert.GreaterOrEqual(t, lerr.Source.Pos, 0, "test %d", i)
		}
	}
}

// Bytes that do not decode as utf-8 fail the read with a located error
// instead of stalling the token stream.
func TestReadAllInvalidUTF8(t *testing.T) {
	for _, source := range []string{"(f \xffx)", "\xff", "(\xff)"} {
		forms, err := ReadAll("test", source)
		require.Error(t, err, "%q", source)
		assert.Nil(t, forms, "%q", source)
		assert.NotErrorIs(t, err, ErrTruncated, "%q", source)
		var lerr *token.LocationError
		require.True(t, errors.As(err, &lerr), "%q", source)
		assert.Equal(t, "test", lerr.Source.File, "%q", source)
	}
}

// A parse failure in a later form reports everything before it unusable;
// callers get the error, not a partial result.
func TestReadAllMalformedTail(t *testing.T) {
	forms, err := ReadAll("test", "(a b)\n(c . )")
	assert.Error(t, err)
	assert.Nil(t, forms)
}

func TestParseNegative(t *testing.T) {
	tests := []struct {
		source string
		output string
	}{
		{`-1`, `-1`},
		{`-1.5`, `-1.5`},
		{`-abc`, `-abc`},
		{`- x`, `-`},
	}
	for i, test := range tests {
		s := token.NewScanner(fmt.Sprintf("test%d", i), strings.NewReader(test.source))
		p := New(s)
		expr, err := p.ParseExpression()
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		assert.Equal(t, test.output, expr.String(), "test %d: %s", i, test.source)
	}
}

func TestParseDotted(t *testing.T) {
	forms, err := ReadAll("test", "(a . b)")
	require.NoError(t, err)
	require.Len(t, forms, 1)
	v := forms[0].Form
	assert.Equal(t, sexpr.SList, v.Type)
	assert.True(t, v.Dotted)
	assert.False(t, v.Proper())
	require.Len(t, v.Cells, 2)
	assert.Equal(t, "a", v.Cells[0].Str)
	assert.Equal(t, "b", v.Cells[1].Str)
}

func TestParseQuoted(t *testing.T) {
	tests := []struct {
		source string
		kind   sexpr.QuoteKind
	}{
		{`'x`, sexpr.QQuote},
		{"`x", sexpr.QQuasiquote},
		{`,x`, sexpr.QUnquote},
		{`,@x`, sexpr.QUnquoteSplicing},
		{`#'x`, sexpr.QFunction},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		require.Len(t, forms, 1, "test %d", i)
		v := forms[0].Form
		require.Equal(t, sexpr.SQuoted, v.Type, "test %d", i)
		assert.Equal(t, test.kind, v.Quote, "test %d", i)
		assert.Equal(t, "x", v.Cells[0].Str, "test %d", i)
		// The wrapper's span covers the prefix plus the wrapped form.
		assert.Equal(t, test.kind.PrefixLen()+1, forms[0].Span.Len(), "test %d", i)
	}
}

func TestParseChar(t *testing.T) {
	tests := []struct {
		source string
		c      rune
	}{
		{`?a`, 'a'},
		{`?\n`, '\n'},
		{`?\t`, '\t'},
		{`?\\`, '\\'},
		{`?λ`, 'λ'},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		require.Len(t, forms, 1, "test %d", i)
		require.Equal(t, sexpr.SChar, forms[0].Form.Type, "test %d", i)
		assert.Equal(t, test.c, forms[0].Form.Char, "test %d", i)
	}
}

func TestParseString(t *testing.T) {
	tests := []struct {
		source string
		s      string
	}{
		{`"abc"`, "abc"},
		{`"a\nb"`, "a\nb"},
		{`"a\"b"`, `a"b`},
		{"\"a\nb\"", "a\nb"},
		{`"""raw \n"""`, `raw \n`},
		{`"\q"`, "q"},
	}
	for i, test := range tests {
		forms, err := ReadAll(fmt.Sprintf("test%d", i), test.source)
		if !assert.NoError(t, err, "test %d: %s", i, test.source) {
			continue
		}
		require.Len(t, forms, 1, "test %d", i)
		require.Equal(t, sexpr.SString, forms[0].Form.Type, "test %d", i)
		assert.Equal(t, test.s, forms[0].Form.Str, "test %d", i)
	}
}
