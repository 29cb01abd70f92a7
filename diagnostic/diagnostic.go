// Copyright © 2024 The symref authors

// Package diagnostic provides Rust-style annotated source rendering for
// symref CLI output: matched references underlined in context, and parse
// failures pointing at the offending offset. It is independent of the
// parser and search packages so any command can use it without import
// cycles.
package diagnostic

import "strings"

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span identifies a region of source code to highlight in the diagnostic.
type Span struct {
	File   string // path for reading source; display name if unreadable
	Line   int    // 1-based line number
	Col    int    // 1-based start column
	EndCol int    // 1-based end column (0 = auto-detect from source)
	Label  string // text shown under the underline
}

// SpanAt converts a half-open byte range [start, end) within text into a
// Span with 1-based line and column numbers. A range spanning multiple
// lines is underlined to the end of its first line.
func SpanAt(file, text string, start, end int) Span {
	if start < 0 {
		start = 0
	}
	if start > len(text) {
		start = len(text)
	}
	if end < start {
		end = start
	}
	line := 1 + strings.Count(text[:start], "\n")
	lineStart := strings.LastIndexByte(text[:start], '\n') + 1
	col := start - lineStart + 1
	endCol := end - lineStart
	if nl := strings.IndexByte(text[start:], '\n'); nl >= 0 && start+nl < end {
		endCol = start + nl - lineStart
	}
	if endCol < col {
		endCol = col
	}
	return Span{File: file, Line: line, Col: col, EndCol: endCol}
}

// Diagnostic represents a single error, warning, or note with optional
// source annotations and trailing notes. A file's matches render as one
// Diagnostic carrying a span per match.
type Diagnostic struct {
	Severity Severity
	Message  string
	Spans    []Span
	Notes    []string
}
