// Package action implements the phase/paramlist/keylist model, the
// specialization algorithm that builds partially-applied callables, and
// the application algorithm that fills the remaining slots of a
// (possibly partial) action from an argument block. This is spec.md
// §4.5, grounded on the teacher's internal/evaluator/apply.go
// (ApplyFunction) and internal/evaluator/object_functions.go
// (PartialApplication) — generalized from a single dynamic-dispatch
// ApplyFunction into the spec's keylist-indexed varlist/paramlist model.
package action

// Symbol is an interned parameter/local name. Interning keeps keylist
// comparison to pointer-free value equality, the same role
// internal/evaluator's *ast.Identifier names play for the teacher's
// environment lookups, generalized here into a dedicated small value type
// since the core no longer has an AST to lean on.
type Symbol string

// Keylist names the parameters/locals of a phase, index-aligned with its
// Paramlist (spec.md §3). Index 0 is reserved for the rootvar slot and is
// conventionally the empty symbol.
type Keylist []Symbol

// IndexOf returns the slot index of name, or -1 if absent.
func (k Keylist) IndexOf(name Symbol) int {
	for i, s := range k {
		if s == name {
			return i
		}
	}
	return -1
}
