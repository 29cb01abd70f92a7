// Copyright © 2024 The symref authors

package sexpr

import "fmt"

// Span is a half-open byte range [Start, End) locating a form or symbol
// within source text.
type Span struct {
	Start int
	End   int
}

func (s Span) String() string {
	return fmt.Sprintf("[%d,%d)", s.Start, s.End)
}

// Len returns the byte length of the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains returns true if the byte offset pos falls within the span.
func (s Span) Contains(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// Overlaps returns true if the two spans share any byte offset.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

// Text slices the span out of the source text.
func (s Span) Text(text string) string {
	return text[s.Start:s.End]
}

// SymbolOccurrence records one leaf symbol read anywhere inside a top-level
// form.  Offset is relative to the start of the enclosing form's span.
type SymbolOccurrence struct {
	Name   string
	Offset int
}

// PositionedForm is one top-level read: the parsed form, its absolute span,
// and the side table of every leaf symbol occurrence inside it.  The side
// table is not re-derivable later without re-parsing, so the reader returns
// it explicitly.
type PositionedForm struct {
	Form    *Val
	Span    Span
	Symbols []SymbolOccurrence
}

// Mentions returns true if the form's symbol table records at least one
// occurrence of name.  It is the cheap pre-filter used to skip forms that
// cannot possibly contain a match.
func (pf *PositionedForm) Mentions(name string) bool {
	for _, occ := range pf.Symbols {
		if occ.Name == name {
			return true
		}
	}
	return false
}

// Occurrences returns the absolute spans of every recorded occurrence of
// name inside the form, in reading order.
func (pf *PositionedForm) Occurrences(name string) []Span {
	var spans []Span
	for _, occ := range pf.Symbols {
		if occ.Name != name {
			continue
		}
		start := pf.Span.Start + occ.Offset
		spans = append(spans, Span{Start: start, End: start + len(name)})
	}
	return spans
}
