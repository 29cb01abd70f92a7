// Copyright © 2024 The symref authors

package lexer

import (
	"reflect"
	"strings"
	"testing"

	"github.com/luthersystems/symref/parser/token"
)

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []*token.Token
	}{
		{``, []*token.Token{
			testToken(token.EOF, ""),
		}},
		{`abc`, []*token.Token{
			testToken(token.SYMBOL, "abc"),
			testToken(token.EOF, ""),
		}},
		{`=+()[]`, []*token.Token{
			testToken(token.SYMBOL, "=+"),
			testToken(token.PAREN_L, "("),
			testToken(token.PAREN_R, ")"),
			testToken(token.BRACE_L, "["),
			testToken(token.BRACE_R, "]"),
			testToken(token.EOF, ""),
		}},
		{`:keyword pkg:sym`, []*token.Token{
			testToken(token.SYMBOL, ":keyword"),
			testToken(token.SYMBOL, "pkg:sym"),
			testToken(token.EOF, ""),
		}},
		{`(#'-abc ''xyz')`, []*token.Token{
			testToken(token.PAREN_L, "("),
			testToken(token.FUN_REF, "#'"),
			testToken(token.NEGATIVE, "-"),
			testToken(token.SYMBOL, "abc"),
			testToken(token.QUOTE, "'"),
			testToken(token.QUOTE, "'"),
			testToken(token.SYMBOL, "xyz"),
			testToken(token.QUOTE, "'"),
			testToken(token.PAREN_R, ")"),
			testToken(token.EOF, ""),
		}},
		{"`(a ,b ,@c)", []*token.Token{
			testToken(token.QUASIQUOTE, "`"),
			testToken(token.PAREN_L, "("),
			testToken(token.SYMBOL, "a"),
			testToken(token.UNQUOTE, ","),
			testToken(token.SYMBOL, "b"),
			testToken(token.UNQUOTE_SPLICING, ",@"),
			testToken(token.SYMBOL, "c"),
			testToken(token.PAREN_R, ")"),
			testToken(token.EOF, ""),
		}},
		{`10 -5 0.1 0 12e12 12e-12 12.02E+5`, []*token.Token{
			testToken(token.INT, "10"),
			testToken(token.NEGATIVE, "-"),
			testToken(token.INT, "5"),
			testToken(token.FLOAT, "0.1"),
			testToken(token.INT, "0"),
			testToken(token.FLOAT, "12e12"),
			testToken(token.FLOAT, "12e-12"),
			testToken(token.FLOAT, "12.02E+5"),
			testToken(token.EOF, ""),
		}},
		{`#o777 #x1f`, []*token.Token{
			testToken(token.INT_OCTAL_MACRO, "#o"),
			testToken(token.INT_OCTAL, "777"),
			testToken(token.INT_HEX_MACRO, "#x"),
			testToken(token.INT_HEX, "1f"),
			testToken(token.EOF, ""),
		}},
		{`?a ?\n ?\\`, []*token.Token{
			testToken(token.CHAR, "?a"),
			testToken(token.CHAR, `?\n`),
			testToken(token.CHAR, `?\\`),
			testToken(token.EOF, ""),
		}},
		{`"abc" "" """"""`, []*token.Token{
			testToken(token.STRING, `"abc"`),
			testToken(token.STRING, `""`),
			testToken(token.STRING_RAW, `""""""`),
			testToken(token.EOF, ""),
		}},
		{`"abc\n" "\x0a" """
"""`, []*token.Token{
			testToken(token.STRING, `"abc\n"`),
			testToken(token.STRING, `"\x0a"`),
			testToken(token.STRING_RAW, "\"\"\"\n\"\"\""),
			testToken(token.EOF, ""),
		}},
		{"\"two\nlines\"", []*token.Token{
			testToken(token.STRING, "\"two\nlines\""),
			testToken(token.EOF, ""),
		}},
		{`; a comment
x`, []*token.Token{
			testToken(token.COMMENT, "; a comment"),
			testToken(token.SYMBOL, "x"),
			testToken(token.EOF, ""),
		}},
		{`"unterminated`, []*token.Token{
			testToken(token.ERROR, "unterminated string literal"),
		}},
	}
testloop:
	for i, test := range tests {
		lex := New(token.NewScanner("", strings.NewReader(test.input)))
		var tokens []*token.Token
		numToken := 0
		for {
			toks := lex.ReadToken()
			if len(toks) != 1 {
				t.Fatalf("test %d: lexer returned %d tokens", i, len(toks))
			}
			tok := toks[0]
			tok.Source = nil
			tokens = append(tokens, tok)
			if tok.Type == token.EOF || tok.Type == token.ERROR {
				break
			}
			numToken++
			if numToken > 100000 {
				t.Errorf("test %d: apparent infinite scanning loop", i)
				for _, tok := range tokens[len(tokens)-10:] {
					t.Log(tok)
				}
				continue testloop
			}
		}
		if !reflect.DeepEqual(tokens, test.tokens) {
			t.Errorf("test %d: unexpected tokens for input", i)
			t.Logf("source:\n\t%s", test.input)
			t.Logf("tokens:")
			for _, tok := range tokens {
				t.Logf("\t%v", tok)
			}
		}
	}
}

func TestLexerHashBang(t *testing.T) {
	lex := New(token.NewScanner("", strings.NewReader("#!/usr/bin/env runner\n(x)")))
	want := []struct {
		typ  token.Type
		text string
	}{
		{token.HASH_BANG, "#!"},
		{token.COMMENT, "/usr/bin/env runner"},
		{token.PAREN_L, "("},
		{token.SYMBOL, "x"},
		{token.PAREN_R, ")"},
		{token.EOF, ""},
	}
	for i, w := range want {
		toks := lex.ReadToken()
		if len(toks) != 1 {
			t.Fatalf("token %d: lexer returned %d tokens", i, len(toks))
		}
		if toks[0].Type != w.typ || toks[0].Text != w.text {
			t.Errorf("token %d: got %v %q want %v %q", i, toks[0].Type, toks[0].Text, w.typ, w.text)
		}
	}
}

func testToken(typ token.Type, text string) *token.Token {
	return &token.Token{
		Type: typ,
		Text: text,
	}
}
