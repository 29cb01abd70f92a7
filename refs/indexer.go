// Copyright © 2024 The symref authors

package refs

import (
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/symref/parser/rdparser"
	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/sexpr"
)

// ChildSpans computes the spans of the immediate (non-nested) children of a
// compound form whose own span is already known.  The reader does not record
// child spans up front because most branches are never descended into; the
// walker calls ChildSpans lazily, only for forms that can possibly contain
// the target.
//
// The scan starts just past the opening delimiter and repeatedly reads one
// expression, recording its span, until the parent's closing delimiter ends
// the interior input.  Running out of interior input is the designed
// termination condition, not an error: it yields exactly the children whose
// end offset is strictly less than the parent's end.
func ChildSpans(text string, span sexpr.Span) []sexpr.Span {
	if span.Len() < 2 {
		return nil
	}
	interior := text[span.Start+1 : span.End-1]
	buf := make([]byte, len(interior)+utf8.UTFMax)
	s := token.NewScannerBuf("", strings.NewReader(interior), buf)
	s.SetBase(span.Start + 1)
	p := rdparser.New(s)

	var spans []sexpr.Span
	for !p.IsEOF() {
		expr, err := p.ParseExpression()
		if err != nil {
			// A scan that cannot complete within the parent is the
			// boundary.  Malformed interiors cannot occur here: the
			// reader already parsed the whole parent successfully.
			break
		}
		spans = append(spans, sexpr.Span{Start: expr.Source.Pos, End: p.TokenEnd()})
	}
	return spans
}
