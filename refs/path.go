// Copyright © 2024 The symref authors

// Package refs classifies symbol occurrences inside parsed forms,
// distinguishing genuine references from binding occurrences using a small
// amount of ancestor context.
package refs

// PathEntry is one frame of ancestor context: the operator symbol of an
// enclosing compound (or "" when its head is not a symbol) and the child
// index of the descent within it.  Entries are compared by value.
type PathEntry struct {
	Op    string
	Index int
}

// Path is the chain of enclosing compounds leading to the current form,
// outermost first.  Classifiers only ever consult the innermost two or
// three frames; deeper shadowing is deliberately not modeled.
type Path []PathEntry

// Frame returns the n'th frame counting inward from the current form:
// Frame(0) is the immediately enclosing compound.
func (p Path) Frame(n int) (PathEntry, bool) {
	i := len(p) - 1 - n
	if i < 0 {
		return PathEntry{}, false
	}
	return p[i], true
}

func (p Path) push(e PathEntry) Path {
	return append(p, e)
}
