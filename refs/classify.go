// Copyright © 2024 The symref authors

package refs

import (
	"fmt"

	"github.com/luthersystems/symref/sexpr"
)

// Kind selects the classifier used to decide whether an occurrence of the
// target symbol is a genuine reference.
type Kind uint

const (
	// KindFunction matches calls: (target ...), (funcall 'target ...),
	// (apply 'target ...).
	KindFunction Kind = iota
	// KindMacro matches literal (target ...) forms.
	KindMacro
	// KindSpecialForm matches literal (target ...) forms.
	KindSpecialForm
	// KindVariable matches bare symbols that are not call heads.
	KindVariable
	// KindSymbol matches every occurrence of the symbol regardless of
	// position.
	KindSymbol
	numKinds
)

var kindStrings = [numKinds]string{
	KindFunction:    "function",
	KindMacro:       "macro",
	KindSpecialForm: "special",
	KindVariable:    "variable",
	KindSymbol:      "symbol",
}

func (k Kind) String() string {
	if k >= numKinds {
		return fmt.Sprintf("invalid-kind-%d", uint(k))
	}
	return kindStrings[k]
}

// ParseKind converts a kind name from the command line into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindStrings {
		if s == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown reference kind: %q", s)
}

// Matches reports whether form, reached via path, is a genuine reference to
// target of this kind.  It is a pure function of its arguments.  Symbol
// comparison is exact and case-sensitive.
func (k Kind) Matches(target string, form *sexpr.Val, path Path) bool {
	switch k {
	case KindFunction:
		return matchFunction(target, form, path)
	case KindMacro, KindSpecialForm:
		return matchOperator(target, form, path)
	case KindVariable:
		return matchVariable(target, form, path)
	case KindSymbol:
		return form.Type == sexpr.SSymbol && form.Str == target
	}
	return false
}

func matchFunction(target string, form *sexpr.Val, path Path) bool {
	if form.Type != sexpr.SList || len(form.Cells) == 0 {
		return false
	}
	head := form.Head()
	if head == target {
		return !bindingContext(path)
	}
	// Indirect calls: (funcall 'target ...) and (apply 'target ...), with
	// either a quote or a #' function reference on the symbol.
	if (head == "funcall" || head == "apply") && len(form.Cells) >= 2 {
		if sym, ok := funSymbol(form.Cells[1]); ok && sym == target {
			return true
		}
	}
	return false
}

func matchOperator(target string, form *sexpr.Val, path Path) bool {
	if form.Type != sexpr.SList || len(form.Cells) == 0 {
		return false
	}
	return form.Head() == target && !bindingContext(path)
}

func matchVariable(target string, form *sexpr.Val, path Path) bool {
	if form.Type != sexpr.SSymbol || form.Str != target {
		return false
	}
	if callHead(target, path) {
		// A symbol naming a let binding reads like a call head -- the
		// binding (or its one-symbol binding list) has the symbol in
		// position zero -- but its semantic role there is a variable.
		return letBindingPosition(path)
	}
	return true
}

// bindingContext returns true when the current form occupies the
// parameter-list slot of a definition or the binding-list slot of a let,
// places where a list that looks like a call is a binding, not a use.
func bindingContext(path Path) bool {
	if f, ok := path.Frame(0); ok {
		switch f.Op {
		case "defun", "defsubst", "defmacro":
			if f.Index == 2 {
				return true
			}
		case "let", "let*":
			if f.Index == 1 {
				return true
			}
		}
	}
	// A binding of the form (target value) sits one level below the
	// binding-list slot.
	if f, ok := path.Frame(1); ok {
		if (f.Op == "let" || f.Op == "let*") && f.Index == 1 {
			return true
		}
	}
	return false
}

// callHead returns true when the innermost frame shows the current symbol
// to be the operator position of its enclosing list.
func callHead(target string, path Path) bool {
	f, ok := path.Frame(0)
	return ok && f.Op == target && f.Index == 0
}

// letBindingPosition returns true when the current head-position symbol is
// inside the binding-list slot of a let or let*: either the whole binding,
// (let (target ...) ...), or a one-symbol binding list,
// (let ((target ...)) ...).  Only the two frames beyond the innermost are
// consulted; deeper rebinding is out of model.
func letBindingPosition(path Path) bool {
	for _, n := range [2]int{1, 2} {
		if f, ok := path.Frame(n); ok {
			if (f.Op == "let" || f.Op == "let*") && f.Index == 1 {
				return true
			}
		}
	}
	return false
}

// funSymbol extracts the symbol from a 'sym or #'sym argument form.
func funSymbol(v *sexpr.Val) (string, bool) {
	if v.Type != sexpr.SQuoted {
		return "", false
	}
	if v.Quote != sexpr.QQuote && v.Quote != sexpr.QFunction {
		return "", false
	}
	if inner := v.Cells[0]; inner.Type == sexpr.SSymbol {
		return inner.Str, true
	}
	return "", false
}
