// Copyright © 2024 The symref authors

package token

import (
	"io"
	"strings"
	"testing"
)

type byteFiller byte

func (b byteFiller) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(b)
	}
	return len(p), nil
}

// A token longer than the scratch buffer grows the buffer rather than
// failing the scan.
func TestScannerTokenLength(t *testing.T) {
	const toklen = 100
	r := &io.LimitedReader{
		R: byteFiller('x'),
		N: toklen,
	}
	s := newScannerBuf("", r, make([]byte, 10))
	for i := 0; i < toklen; i++ {
		if err := s.ScanRune(); err != nil {
			t.Fatalf("rune %d: %v", i, err)
		}
	}
	tok := s.EmitToken(STRING)
	if len(tok.Text) != toklen {
		t.Errorf("token length: %d", len(tok.Text))
	}
	if err := s.ScanRune(); err != io.EOF {
		t.Errorf("not EOF after the token: %v", err)
	}
}

func TestScannerEOF(t *testing.T) {
	r := &io.LimitedReader{
		R: byteFiller('x'),
		N: 10,
	}
	s := newScannerBuf("", r, make([]byte, 20))
	for i := 0; i < 10; i++ {
		err := s.ScanRune()
		if err != nil {
			t.Fatalf("Scan failure: %v", err)
		}
	}
	s.EmitToken(0)

	for i := 0; i < 10; i++ {
		tok := s.EmitToken(0)
		if tok.Text != "" {
			t.Errorf("Bad token text: %q", tok.Text)
		}
		err := s.ScanRune()
		if err != io.EOF {
			t.Fatalf("Not EOF: %q %q %v", s.Rune(), s.buf, err)
		}
		if !s.EOF() {
			t.Fatalf("Scanner does not think it is EOF")
		}
	}
}

func TestScannerAcceptSeq(t *testing.T) {
	r := &io.LimitedReader{
		R: byteFiller('x'),
		N: 10,
	}
	s := newScannerBuf("", r, make([]byte, 20))
	s.AcceptSeq(func(c rune) bool { return true })
	s.Ignore()
	if s.Accept(func(c rune) bool { return true }) {
		t.Fatal("not EOF")
	}
	if !s.EOF() {
		t.Fatal("not EOF")
	}
}

func TestScannerTokenOffsets(t *testing.T) {
	s := NewScanner("f", strings.NewReader("ab cd"))
	s.AcceptSeq(func(c rune) bool { return c != ' ' })
	tok := s.EmitToken(SYMBOL)
	if tok.Source.Pos != 0 {
		t.Errorf("first token pos: %d", tok.Source.Pos)
	}
	if tok.End() != 2 {
		t.Errorf("first token end: %d", tok.End())
	}
	s.AcceptRune(' ')
	s.Ignore()
	s.AcceptSeq(func(c rune) bool { return c != ' ' })
	tok = s.EmitToken(SYMBOL)
	if tok.Source.Pos != 3 {
		t.Errorf("second token pos: %d", tok.Source.Pos)
	}
	if tok.Text != "cd" {
		t.Errorf("second token text: %q", tok.Text)
	}
}

func TestScannerSetBase(t *testing.T) {
	// Scanning a slice of a larger text with SetBase reports offsets as if
	// the whole text had been scanned.
	s := NewScanner("f", strings.NewReader("cd"))
	s.SetBase(7)
	s.AcceptSeq(func(c rune) bool { return true })
	tok := s.EmitToken(SYMBOL)
	if tok.Source.Pos != 7 {
		t.Errorf("token pos: %d", tok.Source.Pos)
	}
	if tok.End() != 9 {
		t.Errorf("token end: %d", tok.End())
	}
}
