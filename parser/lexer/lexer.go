// Copyright © 2024 The symref authors

// Package lexer produces tokens for the symref reader.  The lexer is a set
// of state functions over a token.Scanner; reader macros that change how the
// following text is scanned (#o, #x, #!) swap the active state function for
// one token.
package lexer

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/luthersystems/symref/parser/token"
)

type LexFn func(*Lexer) []*token.Token

const (
	miscWordRunes   = "0123456789" + miscWordSymbols
	miscWordSymbols = "._+-*/=<>!&~%$?@"
)

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

// EOF reports whether the underlying scanner has exhausted its input.
func (lex *Lexer) EOF() bool {
	return lex.scanner.EOF()
}

func (lex *Lexer) readToken() []*token.Token {
	lex.skipWhitespace()
	if !lex.scanner.Accept(func(c rune) bool { return true }) {
		if lex.scanner.EOF() {
			return lex.emit(token.EOF, "")
		}
		err := lex.scanner.Err()
		if err == nil {
			// Not EOF and no pending read error means the next bytes do
			// not decode as utf-8.  Scan the bad byte anyway so it is
			// consumed and the decode failure is reported with its offset.
			err = lex.scanner.ScanRune()
		}
		if err == nil {
			err = fmt.Errorf("unable to scan input")
		}
		return lex.emitError(err, false)
	}
	switch lex.scanner.Rune() {
	case '(':
		return lex.charToken(token.PAREN_L)
	case ')':
		return lex.charToken(token.PAREN_R)
	case '[':
		return lex.charToken(token.BRACE_L)
	case ']':
		return lex.charToken(token.BRACE_R)
	case '\'':
		return lex.charToken(token.QUOTE)
	case '`':
		return lex.charToken(token.QUASIQUOTE)
	case ',':
		if lex.scanner.AcceptRune('@') {
			return lex.emitText(token.UNQUOTE_SPLICING)
		}
		return lex.charToken(token.UNQUOTE)
	case ':':
		return lex.readSymbol()
	case ';':
		lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
		return lex.emitText(token.COMMENT)
	case '?':
		return lex.readCharLiteral()
	case '#':
		_ = lex.readChar()
		err := lex.scanner.Err()
		if err != nil {
			return lex.emitError(err, false)
		}
		switch lex.scanner.Rune() {
		case '!':
			tok := lex.emitText(token.HASH_BANG)
			lex.lex = (*Lexer).readHashBang
			return tok
		case '\'':
			tok := lex.emitText(token.FUN_REF)
			return lex.emitMacroChar(tok)
		case 'o', 'O':
			tok := lex.emitText(token.INT_OCTAL_MACRO)
			lex.lex = (*Lexer).readOctalLiteral
			return lex.emitMacroChar(tok)
		case 'x', 'X':
			tok := lex.emitText(token.INT_HEX_MACRO)
			lex.lex = (*Lexer).readHexLiteral
			return lex.emitMacroChar(tok)
		default:
			lex.scanner.Ignore()
			return lex.errorf("invalid dispatch macro character %q", lex.scanner.Rune())
		}
	case '-':
		if unicode.IsSpace(lex.peekRune()) {
			return lex.emitText(token.SYMBOL)
		}
		return lex.emitText(token.NEGATIVE)
	case '"':
		return lex.readString()
	default:
		if isDigit(lex.scanner.Rune()) {
			return lex.readNumber()
		}
		if isWordStart(lex.scanner.Rune()) {
			return lex.readSymbol()
		}
		err := fmt.Errorf("unexpected text starting with %q", lex.scanner.Rune())
		return lex.emit(token.INVALID, err.Error())
	}
}

func (lex *Lexer) resetState() {
	lex.lex = (*Lexer).readToken
}

func (lex *Lexer) emitMacroChar(tok []*token.Token) []*token.Token {
	if unicode.IsSpace(lex.peekRune()) {
		lex.resetState()
		return lex.errorf("whitespace following %s", tok[0].Text)
	}
	return tok
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := []*token.Token{{
		Type:   typ,
		Text:   text,
		Source: lex.scanner.LocStart(),
	}}
	lex.scanner.Ignore()
	return tok
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

func (lex *Lexer) emitError(err error, expectEOF bool) []*token.Token {
	if err == io.EOF {
		if expectEOF {
			return lex.emit(token.EOF, "")
		}
		return lex.emit(token.ERROR, "unexpected EOF")
	}
	return lex.emit(token.ERROR, err.Error())
}

func (lex *Lexer) errorf(format string, v ...interface{}) []*token.Token {
	return lex.emitError(fmt.Errorf(format, v...), false)
}

func (lex *Lexer) charToken(typ token.Type) []*token.Token {
	return []*token.Token{lex.scanner.EmitToken(typ)}
}

// readString scans a string literal.  The opening double quote has already
// been scanned.  Unlike many lexers, literal newlines are allowed inside
// strings -- multi-line docstrings are routine in the corpora searched.
func (lex *Lexer) readString() []*token.Token {
	for {
		if lex.scanner.AcceptRune('"') {
			if lex.scanner.Text() == `""` && lex.scanner.AcceptRune('"') {
				return lex.readRawString()
			}
			return lex.emitText(token.STRING)
		}
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated string literal")
		}
		if lex.scanner.Rune() == '\\' {
			// Wait until parsing to check the escaped character.
			if !lex.scanner.Accept(func(c rune) bool { return true }) {
				return lex.errorf("unterminated string literal")
			}
		}
	}
}

// readRawString scans the remainder of a `"""` delimited raw string.  The
// opening delimiter has already been scanned.
func (lex *Lexer) readRawString() []*token.Token {
	for {
		_, ok := lex.scanner.AcceptString(`"""`)
		if ok {
			return lex.emitText(token.STRING_RAW)
		}
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated raw-string literal")
		}
	}
}

// readCharLiteral scans a `?c` character literal.  The leading question mark
// has already been scanned.  A backslash escapes the following rune.
func (lex *Lexer) readCharLiteral() []*token.Token {
	if lex.scanner.AcceptRune('\\') {
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("unterminated character literal")
		}
		return lex.emitText(token.CHAR)
	}
	if !lex.scanner.Accept(func(c rune) bool { return !unicode.IsSpace(c) }) {
		return lex.errorf("unterminated character literal")
	}
	return lex.emitText(token.CHAR)
}

func (lex *Lexer) readHashBang() []*token.Token {
	lex.resetState()
	lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
	return lex.emitText(token.COMMENT)
}

func (lex *Lexer) readSymbol() []*token.Token {
	lex.scanner.AcceptSeq(isWord)
	if lex.scanner.AcceptRune(':') {
		return lex.readSymbol()
	}
	return lex.emitText(token.SYMBOL)
}

func (lex *Lexer) readOctalLiteral() []*token.Token {
	lex.resetState()
	n := lex.scanner.AcceptSeq(func(c rune) bool {
		return '0' <= c && c <= '7'
	})
	if n == 0 {
		return lex.errorf("invalid octal literal character: %q", lex.peekRune())
	}
	if unicode.IsDigit(lex.peekRune()) || isWord(lex.peekRune()) {
		return lex.errorf("invalid octal literal character: %q", lex.peekRune())
	}
	return lex.emitText(token.INT_OCTAL)
}

func (lex *Lexer) readHexLiteral() []*token.Token {
	lex.resetState()
	n := lex.scanner.AcceptSeq(func(c rune) bool {
		return isDigit(c) || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
	})
	if n == 0 {
		return lex.errorf("invalid hexadecimal literal character: %q", lex.peekRune())
	}
	if unicode.IsDigit(lex.peekRune()) || isWord(lex.peekRune()) {
		return lex.errorf("invalid hexadecimal literal character: %q", lex.peekRune())
	}
	return lex.emitText(token.INT_HEX)
}

func (lex *Lexer) readNumber() []*token.Token {
	lex.scanner.AcceptSeqDigit() // the first digit already scanned
	switch {
	case lex.scanner.AcceptRune('.'):
		return lex.readFloatFraction()
	case lex.scanner.AcceptAny("eE"):
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
		}
		return lex.readFloatExponent()
	default:
		return lex.emitText(token.INT)
	}
	// the returned string may not actually be a usable number (overflow), but
	// we can find that out at parse time -- not scan time.
}

func (lex *Lexer) readFloatFraction() []*token.Token {
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	switch {
	case lex.scanner.AcceptAny("eE"):
		if !lex.scanner.Accept(func(c rune) bool { return true }) {
			return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
		}
		return lex.readFloatExponent()
	default:
		return lex.emitText(token.FLOAT)
	}
}

func (lex *Lexer) readFloatExponent() []*token.Token {
	lex.scanner.AcceptAny("+-") // optional sign
	if lex.scanner.AcceptSeqDigit() == 0 {
		return lex.errorf("invalid floating point literal starting: %v", lex.scanner.Text())
	}
	return lex.emitText(token.FLOAT)
}

func (lex *Lexer) skipWhitespace() {
	if lex.scanner.AcceptSeqSpace() > 0 {
		lex.scanner.Ignore()
	}
}

func (lex *Lexer) peekRune() rune {
	r, _ := lex.scanner.Peek()
	return r
}

func (lex *Lexer) readChar() error {
	_ = lex.scanner.ScanRune()
	return nil
}

func isWordStart(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordSymbols, c)
}

func isWord(c rune) bool {
	return unicode.IsLetter(c) || strings.ContainsRune(miscWordRunes, c)
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}
