// Copyright © 2024 The symref authors

package cmd

import (
	"errors"
	"testing"

	"github.com/luthersystems/symref/diagnostic"
	"github.com/luthersystems/symref/parser/token"
	"github.com/luthersystems/symref/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchErrorDiagnosticWithLocation(t *testing.T) {
	err := &search.MalformedFileError{
		Path: "a.lisp",
		Err: &token.LocationError{
			Err:    errors.New("unmatched closing paren"),
			Source: &token.Location{File: "a.lisp", Line: 3, Col: 7, Pos: 42},
		},
	}
	d := searchErrorDiagnostic(err)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, "search aborted: malformed input in a.lisp at offset 42", d.Message)
	require.Len(t, d.Spans, 1)
	assert.Equal(t, "a.lisp", d.Spans[0].File)
	assert.Equal(t, 3, d.Spans[0].Line)
}

// A malformed-file error whose cause carries no source location renders
// without an offset clause.
func TestSearchErrorDiagnosticWithoutLocation(t *testing.T) {
	err := &search.MalformedFileError{
		Path: "a.lisp",
		Err:  errors.New("read failed"),
	}
	d := searchErrorDiagnostic(err)
	assert.Equal(t, diagnostic.SeverityError, d.Severity)
	assert.Equal(t, "search aborted: malformed input in a.lisp", d.Message)
	assert.Empty(t, d.Spans)
}
