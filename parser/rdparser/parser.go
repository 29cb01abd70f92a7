// Copyright © 2024 The symref authors

package rdparser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/sexpr"
)

// ErrTruncated is returned when input ends in the middle of a form.  A
// truncated trailing form is a normal termination condition for a read,
// not a failure; callers stop and keep everything parsed so far.
var ErrTruncated = errors.New("input truncated inside form")

// Parser is a recursive descent parser for S-expressions.  In addition to
// building forms it records the absolute byte offset of every leaf symbol it
// reads, which the Reader converts into per-form occurrence tables.
type Parser struct {
	src  *TokenSource
	syms []sexpr.SymbolOccurrence
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	return &Parser{
		src: src,
	}
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// ParseExpression parses a single expression.  ParseExpression requires an
// expression to be present in the input stream; input that runs out before
// the expression is complete produces ErrTruncated.
func (p *Parser) ParseExpression() (*sexpr.Val, error) {
	return p.parseExpression()(p)
}

// TakeSymbols returns the leaf symbol occurrences recorded since the last
// call, with absolute offsets rebased relative to base, and resets the
// record for the next expression.
func (p *Parser) TakeSymbols(base int) []sexpr.SymbolOccurrence {
	if len(p.syms) == 0 {
		return nil
	}
	occ := make([]sexpr.SymbolOccurrence, len(p.syms))
	for i, s := range p.syms {
		occ[i] = sexpr.SymbolOccurrence{Name: s.Name, Offset: s.Offset - base}
	}
	p.syms = p.syms[:0]
	return occ
}

// DropSymbols discards occurrences recorded by an abandoned expression.
func (p *Parser) DropSymbols() {
	p.syms = p.syms[:0]
}

func (p *Parser) recordSymbol(name string, pos int) {
	p.syms = append(p.syms, sexpr.SymbolOccurrence{Name: name, Offset: pos})
}

// IgnoreHashBang skips a leading `#!` interpreter line.
func (p *Parser) IgnoreHashBang() {
	if p.PeekType() != token.HASH_BANG {
		return
	}
	p.src.Scan()
	p.src.AcceptType(token.COMMENT)
}

// IgnoreComments skips any comment tokens at the head of the stream.
func (p *Parser) IgnoreComments() {
	for p.Accept(token.COMMENT) {
	}
}

// IsEOF returns true once the token stream is exhausted.
func (p *Parser) IsEOF() bool {
	p.IgnoreComments()
	return p.src.IsEOF()
}

func (p *Parser) parseExpression() func(p *Parser) (*sexpr.Val, error) {
	p.IgnoreComments()
	switch p.PeekType() {
	case token.INT:
		return (*Parser).ParseLiteralInt
	case token.INT_OCTAL_MACRO:
		return (*Parser).ParseLiteralIntOctal
	case token.INT_HEX_MACRO:
		return (*Parser).ParseLiteralIntHex
	case token.FLOAT:
		return (*Parser).ParseLiteralFloat
	case token.STRING:
		return (*Parser).ParseLiteralString
	case token.STRING_RAW:
		return (*Parser).ParseLiteralStringRaw
	case token.CHAR:
		return (*Parser).ParseLiteralChar
	case token.NEGATIVE:
		return (*Parser).ParseNegative
	case token.QUOTE:
		return quoteParser(token.QUOTE, sexpr.QQuote)
	case token.QUASIQUOTE:
		return quoteParser(token.QUASIQUOTE, sexpr.QQuasiquote)
	case token.UNQUOTE:
		return quoteParser(token.UNQUOTE, sexpr.QUnquote)
	case token.UNQUOTE_SPLICING:
		return quoteParser(token.UNQUOTE_SPLICING, sexpr.QUnquoteSplicing)
	case token.FUN_REF:
		return quoteParser(token.FUN_REF, sexpr.QFunction)
	case token.SYMBOL:
		return (*Parser).ParseSymbol
	case token.PAREN_L:
		return (*Parser).ParseConsExpression
	case token.BRACE_L:
		return (*Parser).ParseVector
	case token.EOF:
		return func(p *Parser) (*sexpr.Val, error) {
			return nil, ErrTruncated
		}
	case token.ERROR, token.INVALID:
		return func(p *Parser) (*sexpr.Val, error) {
			p.ReadToken()
			if p.src.AtEOF() {
				// The scan failed because the input ended mid-token.
				return nil, ErrTruncated
			}
			return nil, p.errorf("scan error: %s", p.TokenText())
		}
	default:
		return func(p *Parser) (*sexpr.Val, error) {
			p.ReadToken()
			return nil, p.errorf("unexpected token: %v", p.TokenType())
		}
	}
}

func quoteParser(typ token.Type, kind sexpr.QuoteKind) func(p *Parser) (*sexpr.Val, error) {
	return func(p *Parser) (*sexpr.Val, error) {
		if !p.Accept(typ) {
			return nil, p.errorf("invalid %s: %v", typ, p.PeekType())
		}
		loc := p.Location()
		expr, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		v := sexpr.Quoted(kind, expr)
		v.Source = loc
		return v, nil
	}
}

func (p *Parser) ParseLiteralInt() (*sexpr.Val, error) {
	if !p.Accept(token.INT) {
		return nil, p.errorf("invalid integer literal: %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := strconv.Atoi(text)
	if err != nil {
		return nil, p.errorf("integer literal overflows int: %v", text)
	}
	return p.Int(x), nil
}

func (p *Parser) ParseLiteralIntOctal() (*sexpr.Val, error) {
	if !p.Accept(token.INT_OCTAL_MACRO) {
		return nil, p.errorf("unexpected token: %v", p.PeekType())
	}
	loc := p.Location()
	if !p.Accept(token.INT_OCTAL) {
		if p.Accept(token.ERROR, token.INVALID) {
			return nil, p.scanError()
		}
		return nil, p.errorf("invalid octal literal: unexpected token %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := strconv.ParseInt(text, 8, 0)
	if err != nil {
		return nil, p.errorf("octal literal overflows int: %v", text)
	}
	v := sexpr.Int(int(x))
	v.Source = loc
	return v, nil
}

func (p *Parser) ParseLiteralIntHex() (*sexpr.Val, error) {
	if !p.Accept(token.INT_HEX_MACRO) {
		return nil, p.errorf("unexpected token: %v", p.PeekType())
	}
	loc := p.Location()
	if !p.Accept(token.INT_HEX) {
		if p.Accept(token.ERROR, token.INVALID) {
			return nil, p.scanError()
		}
		return nil, p.errorf("invalid hex literal: unexpected token %v", p.PeekType())
	}
	text := p.TokenText()
	x, err := strconv.ParseInt(text, 16, 0)
	if err != nil {
		return nil, p.errorf("hex literal overflows int: %v", text)
	}
	v := sexpr.Int(int(x))
	v.Source = loc
	return v, nil
}

func (p *Parser) ParseLiteralFloat() (*sexpr.Val, error) {
	if !p.Accept(token.FLOAT) {
		return nil, p.errorf("invalid float literal: %v", p.PeekType())
	}
	x, err := strconv.ParseFloat(p.TokenText(), 64)
	if err != nil {
		return nil, p.errorf("invalid floating point literal: %v", p.TokenText())
	}
	return p.Float(x), nil
}

func (p *Parser) ParseLiteralString() (*sexpr.Val, error) {
	if !p.Accept(token.STRING) {
		return nil, p.errorf("invalid string literal: %v", p.PeekType())
	}
	s, err := unquoteString(p.TokenText())
	if err != nil {
		return nil, p.errorf("invalid string literal: %v", p.TokenText())
	}
	return p.String(s), nil
}

func (p *Parser) ParseLiteralStringRaw() (*sexpr.Val, error) {
	if !p.Accept(token.STRING_RAW) {
		return nil, p.errorf("invalid raw string literal: %v", p.PeekType())
	}
	text := p.TokenText()
	if len(text) < 6 {
		return nil, p.errorf("invalid raw string literal: %v", text)
	}
	return p.String(text[3 : len(text)-3]), nil
}

func (p *Parser) ParseLiteralChar() (*sexpr.Val, error) {
	if !p.Accept(token.CHAR) {
		return nil, p.errorf("invalid character literal: %v", p.PeekType())
	}
	c, err := decodeChar(p.TokenText())
	if err != nil {
		return nil, p.errorf("invalid character literal: %v", p.TokenText())
	}
	v := sexpr.Char(c)
	v.Source = p.Location()
	return v, nil
}

func (p *Parser) ParseNegative() (*sexpr.Val, error) {
	if !p.Accept(token.NEGATIVE) {
		return nil, p.errorf("invalid negative: %v", p.PeekType())
	}
	switch p.PeekType() {
	case token.INT, token.FLOAT, token.SYMBOL:
		p.src.Peek().Source = p.Location()
		p.src.Peek().Text = p.TokenText() + p.src.Peek().Text
	default:
		return p.Symbol(p.TokenText(), p.Location()), nil
	}
	return p.ParseExpression()
}

func (p *Parser) ParseSymbol() (*sexpr.Val, error) {
	if !p.Accept(token.SYMBOL) {
		return nil, p.errorf("invalid symbol: %v", p.PeekType())
	}
	tok := p.src.Token
	return p.Symbol(tok.Text, tok.Source), nil
}

// ParseConsExpression parses a parenthesized list, proper or dotted.
func (p *Parser) ParseConsExpression() (*sexpr.Val, error) {
	if !p.Accept(token.PAREN_L) {
		return nil, p.errorf("invalid expression: %v", p.PeekType())
	}
	loc := p.Location()
	var cells []*sexpr.Val
	dotted := false
	for {
		p.IgnoreComments()
		if p.src.IsEOF() {
			// An unmatched open paren at the end of input is a truncated
			// trailing form, not malformed input.
			return nil, ErrTruncated
		}
		if p.Accept(token.PAREN_R) {
			break
		}
		if p.peekDot() {
			if len(cells) == 0 {
				p.ReadToken()
				return nil, p.errorf("unexpected dot")
			}
			tail, err := p.parseDottedTail()
			if err != nil {
				return nil, err
			}
			cells = append(cells, tail)
			dotted = true
			break
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		cells = append(cells, x)
	}
	var v *sexpr.Val
	if dotted {
		v = sexpr.DottedList(cells)
	} else {
		v = sexpr.List(cells)
	}
	v.Source = loc
	return v, nil
}

func (p *Parser) peekDot() bool {
	tok := p.src.Peek()
	return tok.Type == token.SYMBOL && tok.Text == "."
}

// parseDottedTail consumes the dot, the tail expression, and the closing
// paren of an improper list.
func (p *Parser) parseDottedTail() (*sexpr.Val, error) {
	p.Accept(token.SYMBOL) // the dot
	p.IgnoreComments()
	if p.src.IsEOF() {
		return nil, ErrTruncated
	}
	if p.PeekType() == token.PAREN_R {
		return nil, p.errorf("missing expression after dot")
	}
	tail, err := p.ParseExpression()
	if err != nil {
		return nil, err
	}
	p.IgnoreComments()
	if p.src.IsEOF() {
		return nil, ErrTruncated
	}
	if !p.Accept(token.PAREN_R) {
		p.ReadToken()
		return nil, p.errorf("multiple expressions after dot")
	}
	return tail, nil
}

func (p *Parser) ParseVector() (*sexpr.Val, error) {
	if !p.Accept(token.BRACE_L) {
		return nil, p.errorf("invalid vector: %v", p.PeekType())
	}
	loc := p.Location()
	var cells []*sexpr.Val
	for {
		p.IgnoreComments()
		if p.src.IsEOF() {
			return nil, ErrTruncated
		}
		if p.Accept(token.BRACE_R) {
			break
		}
		x, err := p.ParseExpression()
		if err != nil {
			return nil, err
		}
		cells = append(cells, x)
	}
	v := sexpr.Vector(cells)
	v.Source = loc
	return v, nil
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) TokenText() string {
	return p.src.Token.Text
}

func (p *Parser) TokenType() token.Type {
	return p.src.Token.Type
}

// TokenEnd returns the byte offset just past the most recently consumed
// token, the end offset of any expression that token terminates.
func (p *Parser) TokenEnd() int {
	return p.src.Token.End()
}

func (p *Parser) Location() *token.Location {
	return p.src.Token.Source
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) Int(x int) *sexpr.Val {
	v := sexpr.Int(x)
	v.Source = p.Location()
	return v
}

func (p *Parser) Float(x float64) *sexpr.Val {
	v := sexpr.Float(x)
	v.Source = p.Location()
	return v
}

func (p *Parser) String(s string) *sexpr.Val {
	v := sexpr.String(s)
	v.Source = p.Location()
	return v
}

// Symbol builds a symbol value and records its occurrence for the side
// table returned by TakeSymbols.
func (p *Parser) Symbol(name string, loc *token.Location) *sexpr.Val {
	p.recordSymbol(name, loc.Pos)
	v := sexpr.Symbol(name)
	v.Source = loc
	return v
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

func (p *Parser) errorf(format string, v ...interface{}) error {
	return &token.LocationError{
		Err:    fmt.Errorf(format, v...),
		Source: p.Location(),
	}
}

func (p *Parser) scanError() error {
	return &token.LocationError{
		Err:    errors.New(p.TokenText()),
		Source: p.Location(),
	}
}

// unquoteString decodes a double-quoted string literal.  It is close to
// strconv.Unquote but permits literal newlines and passes unrecognized
// escape sequences through as the escaped character, matching the lenient
// readers of the dialects searched.
func unquoteString(text string) (string, error) {
	if len(text) < 2 || text[0] != '"' || text[len(text)-1] != '"' {
		return "", fmt.Errorf("invalid string literal")
	}
	body := text[1 : len(text)-1]
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c, n := utf8.DecodeRuneInString(body[i:])
		i += n
		if c != '\\' {
			b.WriteRune(c)
			continue
		}
		if i >= len(body) {
			return "", fmt.Errorf("trailing backslash")
		}
		e, n := utf8.DecodeRuneInString(body[i:])
		i += n
		b.WriteRune(stringEscape(e))
	}
	return b.String(), nil
}

func stringEscape(c rune) rune {
	switch c {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case 'a':
		return '\a'
	case 'b':
		return '\b'
	case 'f':
		return '\f'
	case 'v':
		return '\v'
	case '0':
		return 0
	case 'e':
		return 0x1b
	default:
		return c
	}
}

// decodeChar decodes a `?c` character literal token.
func decodeChar(text string) (rune, error) {
	if len(text) < 2 || text[0] != '?' {
		return 0, fmt.Errorf("invalid character literal")
	}
	body := text[1:]
	if body[0] == '\\' {
		if len(body) < 2 {
			return 0, fmt.Errorf("invalid character literal")
		}
		c, _ := utf8.DecodeRuneInString(body[1:])
		return stringEscape(c), nil
	}
	c, _ := utf8.DecodeRuneInString(body)
	return c, nil
}
