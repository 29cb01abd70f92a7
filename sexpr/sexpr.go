// Copyright © 2024 The symref authors

// Package sexpr defines the S-expression data model shared by the reader,
// the reference walker, and the search orchestrator.  Values are immutable
// once parsed.
package sexpr

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/luthersystems/symref/parser/token"
)

// Type is the type of a Val.
type Type uint

// Possible Val types.
const (
	// SInvalid (0) is not a valid form type.
	SInvalid Type = iota
	// SInt values store an int in the Val.Int field.
	SInt
	// SFloat values store a float64 in the Val.Float field.
	SFloat
	// SString values store a string in the Val.Str field.
	SString
	// SChar values store a rune in the Val.Char field.
	SChar
	// SSymbol values store the symbol name in the Val.Str field.
	SSymbol
	// SList values store sub-forms in Val.Cells.  A list with a true Dotted
	// field is improper and its final cell is the dotted tail.
	SList
	// SVector values store sub-forms in Val.Cells.
	SVector
	// SQuoted values are reader-macro wrappers (quote, quasiquote, unquote,
	// unquote-splicing, function).  The wrapped form is Cells[0] and the
	// macro is identified by the Val.Quote field.
	SQuoted
	// STypeMax is a value numerically greater than all valid Type values.
	STypeMax
)

var typeStrings = []string{
	SInvalid: "INVALID",
	SInt:     "int",
	SFloat:   "float",
	SString:  "string",
	SChar:    "char",
	SSymbol:  "symbol",
	SList:    "list",
	SVector:  "vector",
	SQuoted:  "quoted",
}

func (t Type) String() string {
	if t >= STypeMax {
		return fmt.Sprintf("invalid-type-%d", t)
	}
	return typeStrings[t]
}

// QuoteKind identifies the reader macro of an SQuoted wrapper.
type QuoteKind uint

const (
	QNone QuoteKind = iota
	QQuote
	QQuasiquote
	QUnquote
	QUnquoteSplicing
	QFunction
	qKindMax
)

var quoteSymbols = []string{
	QNone:            "",
	QQuote:           "quote",
	QQuasiquote:      "quasiquote",
	QUnquote:         "unquote",
	QUnquoteSplicing: "unquote-splicing",
	QFunction:        "function",
}

var quotePrefixes = []string{
	QNone:            "",
	QQuote:           "'",
	QQuasiquote:      "`",
	QUnquote:         ",",
	QUnquoteSplicing: ",@",
	QFunction:        "#'",
}

// Symbol returns the symbol the reader macro abbreviates (e.g. "quote").
func (k QuoteKind) Symbol() string {
	if k >= qKindMax {
		return ""
	}
	return quoteSymbols[k]
}

// Prefix returns the source text of the reader macro (e.g. "'" or ",@").
func (k QuoteKind) Prefix() string {
	if k >= qKindMax {
		return ""
	}
	return quotePrefixes[k]
}

// PrefixLen returns the byte length of the reader macro's source prefix.
func (k QuoteKind) PrefixLen() int {
	return len(k.Prefix())
}

// Val is a tagged S-expression value.
type Val struct {
	// Source is the value's originating location in source code.  Programs
	// should not modify the contents of Source as the reference may be
	// shared by multiple Vals.
	Source *token.Location

	// Str is used by SSymbol and SString values.
	Str string

	// Cells is used by SList, SVector, and SQuoted values.
	Cells []*Val

	// Type is the form type of the value.
	Type Type

	// Fields used for numeric and character types.
	Int   int
	Float float64
	Char  rune

	// Quote identifies the reader macro of an SQuoted value.
	Quote QuoteKind

	// Dotted marks an SList as improper: the final cell is the tail after
	// the dot, not a list element.
	Dotted bool
}

// Int returns a Val representing the number x.
func Int(x int) *Val {
	return &Val{Type: SInt, Int: x}
}

// Float returns a Val representing the number x.
func Float(x float64) *Val {
	return &Val{Type: SFloat, Float: x}
}

// String returns a Val representing the string str.
func String(str string) *Val {
	return &Val{Type: SString, Str: str}
}

// Char returns a Val representing the character c.
func Char(c rune) *Val {
	return &Val{Type: SChar, Char: c}
}

// Symbol returns a Val representing the symbol s.
func Symbol(s string) *Val {
	return &Val{Type: SSymbol, Str: s}
}

// List returns a Val representing a proper list.  Provided cells are used as
// backing storage for the returned list and are not copied.
func List(cells []*Val) *Val {
	return &Val{Type: SList, Cells: cells}
}

// DottedList returns a Val representing an improper list whose final cell is
// the dotted tail.  DottedList panics if fewer than two cells are given; the
// reader never constructs a dotted pair with a missing head or tail.
func DottedList(cells []*Val) *Val {
	if len(cells) < 2 {
		panic("dotted list requires a head and a tail")
	}
	return &Val{Type: SList, Cells: cells, Dotted: true}
}

// Vector returns a Val representing a vector.  Provided cells are used as
// backing storage for the returned vector and are not copied.
func Vector(cells []*Val) *Val {
	return &Val{Type: SVector, Cells: cells}
}

// Quoted returns a Val wrapping v in the reader macro identified by kind.
func Quoted(kind QuoteKind, v *Val) *Val {
	return &Val{Type: SQuoted, Quote: kind, Cells: []*Val{v}}
}

// IsAtom returns true for indivisible values: symbols, numbers, strings,
// and characters.
func (v *Val) IsAtom() bool {
	switch v.Type {
	case SInt, SFloat, SString, SChar, SSymbol:
		return true
	}
	return false
}

// IsCompound returns true for lists and vectors, proper or not.
func (v *Val) IsCompound() bool {
	return v.Type == SList || v.Type == SVector
}

// Proper returns true if v is a compound that may be recursed into: a
// nil-terminated list or a vector.  Dotted structures are not proper.
func (v *Val) Proper() bool {
	return v.IsCompound() && !v.Dotted
}

// Head returns the operator symbol at the head of a proper list, or "" when
// v is not a list or its head is not a symbol.
func (v *Val) Head() string {
	if v.Type != SList || len(v.Cells) == 0 {
		return ""
	}
	if head := v.Cells[0]; head.Type == SSymbol {
		return head.Str
	}
	return ""
}

// Unwrap returns the form inside an SQuoted wrapper, or v itself.
func (v *Val) Unwrap() *Val {
	if v.Type == SQuoted {
		return v.Cells[0]
	}
	return v
}

// QuotedSymbol returns the symbol name inside a (quote sym) wrapper and true,
// or "" and false when v is not a quoted symbol.
func (v *Val) QuotedSymbol() (string, bool) {
	if v.Type != SQuoted || v.Quote != QQuote {
		return "", false
	}
	if inner := v.Cells[0]; inner.Type == SSymbol {
		return inner.Str, true
	}
	return "", false
}

// String renders the form in read syntax.
func (v *Val) String() string {
	var b strings.Builder
	v.str(&b)
	return b.String()
}

func (v *Val) str(b *strings.Builder) {
	switch v.Type {
	case SInt:
		b.WriteString(strconv.Itoa(v.Int))
	case SFloat:
		// The 'g' format can render a floating point number so that it
		// appears as an integer (2.0 renders as 2); acceptable here because
		// printed forms are matched structurally, not re-read.
		b.WriteString(strconv.FormatFloat(v.Float, 'g', -1, 64))
	case SString:
		fmt.Fprintf(b, "%q", v.Str)
	case SChar:
		b.WriteByte('?')
		b.WriteRune(v.Char)
	case SSymbol:
		b.WriteString(v.Str)
	case SQuoted:
		b.WriteString(v.Quote.Prefix())
		v.Cells[0].str(b)
	case SList:
		b.WriteByte('(')
		v.cellsStr(b)
		b.WriteByte(')')
	case SVector:
		b.WriteByte('[')
		for i, c := range v.Cells {
			if i > 0 {
				b.WriteByte(' ')
			}
			c.str(b)
		}
		b.WriteByte(']')
	default:
		fmt.Fprintf(b, "#<%s>", v.Type)
	}
}

func (v *Val) cellsStr(b *strings.Builder) {
	for i, c := range v.Cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		if v.Dotted && i == len(v.Cells)-1 {
			b.WriteString(". ")
		}
		c.str(b)
	}
}
