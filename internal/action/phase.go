package action

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/trampoline"
)

// Dispatcher runs a phase's body once its varlist is fully fulfilled. It is
// invoked from the action executor's Dispatching state (executor.go) and
// follows the same no-Go-recursion discipline as any other Executor: it may
// push sub-levels and return Continue/Delegate, but must not itself drive
// the trampoline loop.
//
// This is the generalization of the teacher's ApplyFunction dispatch
// switch (internal/evaluator/apply.go), split out of one big method into a
// per-phase closure so that intrinsics, user-defined actions, and
// composed/bound actions each bring their own dispatcher without a type
// switch at call time.
type Dispatcher func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce

// Phase bundles everything spec.md §3 says an action needs beyond its
// exemplar varlist: the keylist/paramlist pair describing its slots, the
// dispatcher that runs once they're filled, and an opaque Details stub the
// dispatcher owns (bytecode, a captured closure environment, an intrinsic
// id — whatever the dispatcher's own concern requires).
type Phase struct {
	Keylist   Keylist
	Paramlist Paramlist

	Dispatcher Dispatcher
	Details    *cell.Stub // Flavor == cell.FlavorDetails; dispatcher-private

	// Infix reports whether this phase's first parameter is filled from
	// the expression to its left rather than from the feed ahead of it
	// (spec.md §4.5.1's note that infix is a paramlist-level property).
	Infix bool

	// Return is the phase's declared return constraint, checked against
	// the dispatcher's result once it produces one (spec.md §4.5.5's
	// "Typechecking against the parameter's return spec"). nil means
	// unconstrained. This plays the pseudo-slot role ClassReturn names,
	// kept off the paramlist proper since it is never filled from a feed.
	Return *Param
}

// NewPhase builds a Phase whose paramlist/keylist start fully unspecialized
// (every real parameter slot open), sized len(params)+1 to make room for
// the reserved rootvar slot at index 0.
func NewPhase(name Symbol, params []*Param, dispatcher Dispatcher) *Phase {
	keylist := make(Keylist, len(params)+1)
	paramlist := make(Paramlist, len(params)+1)
	keylist[0] = ""
	paramlist[0] = ParamSlot{Fixed: cell.New(cell.HeartAction, [2]uint64{}, 0, nil)}
	for i, p := range params {
		keylist[i+1] = p.Name
		paramlist[i+1] = ParamSlot{Param: p}
	}
	return &Phase{Keylist: keylist, Paramlist: paramlist, Dispatcher: dispatcher}
}

// NumSlots returns the paramlist length including the reserved rootvar.
func (ph *Phase) NumSlots() int { return len(ph.Paramlist) }
