// Copyright © 2024 The symref authors

package refs

import "github.com/luthersystems/symref/sexpr"

// Match is one located reference: the matched text's span and the parsed
// form at that span.  The span is sufficient for a rendering layer to slice
// the original text without re-parsing.
type Match struct {
	Span sexpr.Span
	Form *sexpr.Val
}

// Walk traverses a top-level form depth-first, left to right, returning
// every reference to target of the requested kind.  A match terminates
// descent into its subtree, so no two returned matches overlap.
//
// Branches that cannot contain the target are pruned: a top-level form
// whose symbol table has no occurrence of target is skipped outright, and
// atom children not equal to target are never paired with a span.
func Walk(text string, pf *sexpr.PositionedForm, target string, kind Kind) []Match {
	if !pf.Mentions(target) {
		return nil
	}
	return walk(text, pf.Form, pf.Span, target, kind, nil)
}

func walk(text string, form *sexpr.Val, span sexpr.Span, target string, kind Kind, path Path) []Match {
	if kind.Matches(target, form, path) {
		return []Match{{Span: span, Form: form}}
	}
	switch {
	case form.Type == sexpr.SQuoted:
		// Reader-macro wrappers are transparent: strip the prefix text and
		// descend into the wrapped form.
		inner := form.Cells[0]
		innerSpan := sexpr.Span{Start: span.Start + form.Quote.PrefixLen(), End: span.End}
		return walk(text, inner, innerSpan, target, kind, path.push(PathEntry{Op: form.Quote.Symbol(), Index: 0}))
	case form.Proper():
		// Only proper compounds are descended into; dotted structures are
		// never recursed.
		return walkChildren(text, form, span, target, kind, path)
	}
	return nil
}

func walkChildren(text string, form *sexpr.Val, span sexpr.Span, target string, kind Kind, path Path) []Match {
	var matches []Match
	var spans []sexpr.Span
	op := form.Head()
	for i, child := range form.Cells {
		if !descendable(child, target) {
			continue
		}
		if spans == nil {
			spans = ChildSpans(text, span)
		}
		if i >= len(spans) {
			break
		}
		sub := walk(text, child, spans[i], target, kind, path.push(PathEntry{Op: op, Index: i}))
		matches = append(matches, sub...)
	}
	return matches
}

// descendable reports whether a child warrants recursion: compounds and
// reader-macro wrappers always do, atoms only when they are the target
// symbol itself.
func descendable(child *sexpr.Val, target string) bool {
	if child.IsCompound() || child.Type == sexpr.SQuoted {
		return true
	}
	return child.Type == sexpr.SSymbol && child.Str == target
}
