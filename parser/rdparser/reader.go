// Copyright © 2024 The symref authors

// Package rdparser implements the position-tracking S-expression reader.
package rdparser

import (
	"errors"
	"strings"

	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/sexpr"
)

// ReadAll reads every top-level form in text.  Each returned form carries
// its absolute span within text and a side table recording the relative
// offset of every leaf symbol inside it.
//
// Reading stops cleanly, returning everything parsed so far, when the input
// is exhausted or ends inside a trailing, truncated form.  Any other
// malformed input produces a *token.LocationError naming the stream and the
// byte offset of the failure.
func ReadAll(name, text string) ([]sexpr.PositionedForm, error) {
	return ReadAllBuf(name, text, nil)
}

// ReadAllBuf is ReadAll with a caller-managed scanner scratch buffer.
// Callers processing many files pass the same buffer to every call to avoid
// re-allocating scanner state per file.  A nil buf allocates a fresh one.
func ReadAllBuf(name, text string, buf []byte) ([]sexpr.PositionedForm, error) {
	var s *token.Scanner
	if buf == nil {
		s = token.NewScanner(name, strings.NewReader(text))
	} else {
		s = token.NewScannerBuf(name, strings.NewReader(text), buf)
	}
	p := New(s)
	p.IgnoreHashBang()

	var forms []sexpr.PositionedForm
	for !p.IsEOF() {
		expr, err := p.ParseExpression()
		if errors.Is(err, ErrTruncated) {
			// Normal termination: drop the partial trailing form.
			p.DropSymbols()
			break
		}
		if err != nil {
			return nil, err
		}
		span := sexpr.Span{Start: expr.Source.Pos, End: p.TokenEnd()}
		forms = append(forms, sexpr.PositionedForm{
			Form:    expr,
			Span:    span,
			Symbols: p.TakeSymbols(span.Start),
		})
	}
	return forms, nil
}
