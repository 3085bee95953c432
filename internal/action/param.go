package action

import "github.com/funvibe/corevm/internal/cell"

// ParamClass names the parameter-passing convention a slot uses, mirroring
// the handful of binding modes the teacher's ast.Parameter/typesystem
// distinguish (plain, type-quoted, literal-quoted) but generalized to the
// dynamically-typed core's own vocabulary (spec.md §4.5.1).
type ParamClass uint8

const (
	ClassNormal ParamClass = iota // evaluated argument, type-checked against TypeConstraint
	ClassMeta                     // slot receives the unevaluated argument cell itself
	ClassJust                     // slot receives the argument without further reduction
	ClassThe                      // slot receives the argument cell as-is, the same way Meta and Just do
	ClassSoft                     // passed through the ArgEvaluator like ClassNormal; group forms are not treated differently
	ClassReturn                   // pseudo-slot: names the phase's declared return constraint
	ClassOutput                   // pseudo-slot: an in/out parameter written back by the dispatcher
)

// ParamFlag is the per-parameter bitfield (spec.md §4.5.1).
type ParamFlag uint8

const (
	// FlagRefinement marks a parameter that a plain positional call never
	// fills from the feed: it is set by Specialize when named in its refine
	// list, or by Apply's cursor and label: handling, and otherwise
	// defaults to null. Refinements may carry zero or more sub-parameters.
	FlagRefinement ParamFlag = 1 << iota
	// FlagVariadic marks the single trailing parameter (if any) that
	// absorbs every remaining feed element instead of exactly one.
	FlagVariadic
	// FlagLiteralFirst marks a higher-order parameter whose action-cell
	// argument is to be captured rather than invoked. Nothing in this
	// package reads it: fulfillment treats the slot by its Class alone.
	FlagLiteralFirst
)

// TypeConstraint is a parameter's optional runtime type check. The core's
// datatype bodies are out of scope (spec.md §1 Non-goals), so this package
// only defines the hook a real datatype registry plugs into; nil means
// "unconstrained".
type TypeConstraint func(c cell.Cell) bool

// Param is one paramlist slot's declaration: its binding class, flags, and
// optional type constraint. A Param pointer of nil inside a ParamSlot means
// that slot has already been specialized to a fixed value (spec.md §4.5.2
// "a specialized slot holds the fixed value instead of a parameter cell").
type Param struct {
	Name       Symbol
	Class      ParamClass
	Flags      ParamFlag
	Constraint TypeConstraint
}

// IsRefinement reports whether p introduces a refinement.
func (p *Param) IsRefinement() bool { return p.Flags&FlagRefinement != 0 }

// IsVariadic reports whether p is the trailing variadic slot.
func (p *Param) IsVariadic() bool { return p.Flags&FlagVariadic != 0 }

// ParamSlot is one entry of a Paramlist. Exactly one of Param/Fixed is
// meaningful at a time: Param != nil means "still open", in which case
// Fixed is ignored; Param == nil means "specialized", in which case Fixed
// holds the value that was locked in.
//
// This dual-field Go representation replaces the source model's single
// paramlist cell whose own antiform-vs-element state carries the same bit
// (spec.md §4.5.2) — a plain sum type reads more naturally here than a
// cell-encoded tag would, since outside of this package nothing needs to
// distinguish a "parameter antiform" from any other cell shape.
type ParamSlot struct {
	Param *Param
	Fixed cell.Cell
}

// Specialized reports whether this slot has already been locked to a
// fixed value.
func (s ParamSlot) Specialized() bool { return s.Param == nil }

// Paramlist is a phase's full slot list, index-aligned with its Keylist.
// Index 0 is the reserved rootvar slot (Param nil, Fixed the archetype
// action cell) the same way spec.md §3 describes a paramlist's head cell.
type Paramlist []ParamSlot

// Clone deep-copies the slot list (but not constraint closures or fixed
// Cell.Ref payloads, which are shared by value the same way cell.Cell
// sharing works everywhere else in this module).
func (pl Paramlist) Clone() Paramlist {
	out := make(Paramlist, len(pl))
	copy(out, pl)
	return out
}
