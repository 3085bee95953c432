package action

import (
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/funvibe/corevm/internal/trampoline"
)

// ArgEvaluator reduces one raw feed element into the value that should
// actually be bound to a ClassNormal/ClassSoft parameter slot. It follows
// the same Executor discipline as everything else in this module: it may
// push a sub-level and return Continue()/Delegate(), or — if raw needs no
// further reduction — write directly into l.Out and return Out().
//
// Expression evaluation proper (word lookup, nested application, the
// evaluator's own stepper) is a different, not-yet-built module; this hook
// is the seam the action package leaves for it, the same way
// feed.Scanner is the seam feed leaves for lexing. IdentityEvaluator below
// is the trivial instance used by this package's own tests and by callers
// that only ever pass already-reduced cells (e.g. re-specializing from
// code, not from a live parse).
type ArgEvaluator func(l *trampoline.Level, raw cell.Cell) trampoline.Bounce

// IdentityEvaluator binds raw as-is, performing no reduction.
func IdentityEvaluator(l *trampoline.Level, raw cell.Cell) trampoline.Bounce {
	l.Out = raw
	return trampoline.Out()
}

const (
	stateFulfill byte = iota + 1
	stateDispatch
	stateAbruptCleanup
)

// execPlan is the action executor's private per-call bookkeeping,
// threaded through Level.Action.SubState (spec.md §3's per-executor union
// member).
type execPlan struct {
	pending []int // remaining paramlist indices to fill, in keylist order
	curIdx  int   // slot awaiting an ArgEvaluator result; -1 when idle
}

// NewCallLevel builds (but does not push) the Level that will fulfill a's
// remaining open slots from f and then run its phase's Dispatcher. base is
// cloned per call (CloneForCall) so that invoking the
// same Action twice concurrently — or recursively — never lets one call's
// in-flight argument writes leak into another's (spec.md §4.5.1: a call is
// always against a fresh varlist instance, never the shared archetype).
func NewCallLevel(interp *trampoline.Interpreter, base *Action, f *feed.Feed, evalArg ArgEvaluator) *trampoline.Level {
	call := CloneForCall(base)
	return buildCallLevel(interp, call, f, evalArg)
}

// NewInfixCallLevel is NewCallLevel's infix counterpart (spec.md §4.5.1's
// note that an infix action's first parameter is "filled from the
// expression to its left rather than from the feed ahead of it"): left is
// typechecked and bound into paramlist slot 1 before the call level is
// built, and fulfillment then proceeds over the remaining slots exactly
// like a prefix call. It is an error to call this with a non-infix action,
// or one whose first parameter has already been specialized away (see
// Specialize's infix-demotion rule).
func NewInfixCallLevel(interp *trampoline.Interpreter, base *Action, left cell.Cell, f *feed.Feed, evalArg ArgEvaluator) (*trampoline.Level, error) {
	if !base.Infix {
		return nil, ErrNotInfix
	}
	call := CloneForCall(base)
	if len(call.Varlist.Cells) <= 1 || !IsUnspecialized(call.Varlist.Cells[1]) {
		return nil, ErrNotInfix
	}
	if err := typecheck(call, 1, left); err != nil {
		return nil, err
	}
	call.Varlist.Cells[1] = left
	return buildCallLevel(interp, call, f, evalArg), nil
}

// buildCallLevel wires a fully-cloned call Action to its feed and
// executor, the shared tail of NewCallLevel and NewInfixCallLevel.
func buildCallLevel(interp *trampoline.Interpreter, call *Action, f *feed.Feed, evalArg ArgEvaluator) *trampoline.Level {
	l := trampoline.NewLevel(makeActionExecutor(interp, call, f, evalArg))
	l.Feed = f
	l.Varlist = call.Varlist
	l.Rootvar = call.Varlist.Cells[0]
	return l
}

// CloneForCall returns an Action sharing base's Phase but backed by its own
// varlist copy, so that filling slots during one call never mutates base.
func CloneForCall(base *Action) *Action {
	return &Action{Phase: base.Phase, Varlist: cloneVarlist(base.Varlist), Partials: append([]int(nil), base.Partials...), Infix: base.Infix}
}

// defaultOpenRefinements locks every still-open refinement (and its
// sub-parameter group) to null before fulfillment begins. A positional
// executor has no way to address a refinement by name, so the only
// correct behavior for one left open at call time is "absent" — spec.md
// §4.5.1 "Refinement (non-variadic): ... an unaddressed refinement
// defaults to null without consuming a feed element". Apply (apply.go)
// does not call this: it visits refinements with its own cursor and
// defaults whatever it leaves unaddressed itself.
func defaultOpenRefinements(l *trampoline.Level, call *Action) {
	for _, refIdx := range openRefinementIndices(call) {
		for _, i := range refinementGroup(call.Phase, refIdx) {
			l.Varlist.Cells[i] = cell.Null()
		}
	}
}

// makeActionExecutor closes over the call's Action/Feed/ArgEvaluator and
// returns the trampoline.Executor driving spec.md §4.5.5's state machine:
// InitialEntry -> FulfillArg (looping) -> [TypecheckArg inline] ->
// Dispatching -> (AbruptCleanup on a throw surfacing through dispatch).
func makeActionExecutor(interp *trampoline.Interpreter, call *Action, f *feed.Feed, evalArg ArgEvaluator) trampoline.Executor {
	var exec trampoline.Executor
	exec = func(l *trampoline.Level, in trampoline.Bounce) trampoline.Bounce {
		switch l.State {
		case 0: // InitialEntry
			defaultOpenRefinements(l, call)
			l.Action = &trampoline.ActionState{SubState: &execPlan{pending: call.OpenParamIndices(), curIdx: -1}}
			l.State = stateFulfill
			return fulfillStep(l, interp, call, f, evalArg, trampoline.Bounce{})

		case stateFulfill:
			return fulfillStep(l, interp, call, f, evalArg, in)

		case stateDispatch:
			if in.Kind == trampoline.KindThrown || in.Kind == trampoline.KindPanic {
				l.State = stateAbruptCleanup
				return exec(l, in)
			}
			if in.Kind == trampoline.KindRedoChecked {
				for i := 1; i < len(call.Phase.Paramlist); i++ {
					if call.Phase.Paramlist[i].Param == nil {
						continue
					}
					if err := typecheck(call, i, l.Varlist.Cells[i]); err != nil {
						return trampoline.Thrown(trampoline.LabelPanic, err, nil)
					}
				}
			}
			b := call.Phase.Dispatcher(l, interp, in)
			if b.Kind == trampoline.KindOut && call.Phase.Return != nil && call.Phase.Return.Constraint != nil {
				if !call.Phase.Return.Constraint(l.Out) {
					return trampoline.Thrown(trampoline.LabelPanic, ErrTypeMismatch, nil)
				}
			}
			return b

		case stateAbruptCleanup:
			// Seam for releasing any feed references this call privately
			// AddRef'd (spec.md §4.5.5 "AbruptCleanup"). NewCallLevel
			// borrows its caller's feed rather than taking its own
			// reference, so there is nothing of this call's own to release
			// here; the throw simply continues propagating.
			return in

		default:
			panic("action: unreachable executor state")
		}
	}
	return exec
}

// fulfillStep advances (or resumes) the FulfillArg/TypecheckArg loop. When
// resumed after an ArgEvaluator pushed a sub-level, in.Kind == KindOut
// carries the reduced value in l.Out.
func fulfillStep(l *trampoline.Level, interp *trampoline.Interpreter, call *Action, f *feed.Feed, evalArg ArgEvaluator, in trampoline.Bounce) trampoline.Bounce {
	plan := l.Action.SubState.(*execPlan)

	if plan.curIdx >= 0 {
		// Resuming after evalArg pushed a sub-level on a prior tick.
		if in.Kind == trampoline.KindThrown || in.Kind == trampoline.KindPanic {
			return in
		}
		if err := consumeArg(l, call, plan, f, l.Out); err != nil {
			return trampoline.Thrown(trampoline.LabelPanic, err, nil)
		}
	}

	for len(plan.pending) > 0 {
		idx := plan.pending[0]
		param := call.Phase.Paramlist[idx].Param

		if param.IsVariadic() {
			// A variadic slot never consumes the feed itself: the native
			// reads elements from the handle as it pleases (spec.md
			// §4.5.1 "Variadic"), so fulfillment here is just storing a
			// reference to the feed that is already driving this call.
			l.Varlist.Cells[idx] = FeedHandle(f)
			plan.pending = plan.pending[1:]
			continue
		}

		raw, ok := f.At()
		if !ok {
			return trampoline.Thrown(trampoline.LabelPanic, ErrTooFewArguments, nil)
		}

		switch param.Class {
		case ClassMeta, ClassJust, ClassThe:
			if err := typecheck(call, idx, raw); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			l.Varlist.Cells[idx] = raw
			plan.pending = plan.pending[1:]
			if err := f.Advance(); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
			continue

		default: // ClassNormal, ClassSoft
			plan.curIdx = idx
			b := evalArg(l, raw)
			if b.Kind != trampoline.KindOut {
				// evalArg pushed a sub-level (or suspended/threw); the
				// trampoline will re-invoke this level once it resolves.
				return b
			}
			// evalArg resolved synchronously (no sub-level pushed): consume
			// its result inline instead of treating it as this action
			// level's own final result.
			if err := consumeArg(l, call, plan, f, l.Out); err != nil {
				return trampoline.Thrown(trampoline.LabelPanic, err, nil)
			}
		}
	}

	l.State = stateDispatch
	return call.Phase.Dispatcher(l, interp, trampoline.Bounce{})
}

// consumeArg typechecks and commits the value fulfilling plan's current
// slot, advances the feed past it, and clears plan.curIdx so the loop moves
// to the next pending slot.
func consumeArg(l *trampoline.Level, call *Action, plan *execPlan, f *feed.Feed, value cell.Cell) error {
	idx := plan.curIdx
	if err := typecheck(call, idx, value); err != nil {
		return err
	}
	l.Varlist.Cells[idx] = value
	l.Out = cell.Erased()
	plan.pending = plan.pending[1:]
	plan.curIdx = -1
	return f.Advance()
}

func typecheck(call *Action, idx int, value cell.Cell) error {
	param := call.Phase.Paramlist[idx].Param
	if param == nil || param.Constraint == nil {
		return nil
	}
	if !param.Constraint(value) {
		return ErrTypeMismatch
	}
	return nil
}
