// eval.go implements the variadic evaluation entry points spec.md §6 models
// on libRebol's rebValue/rebLift/rebRescue family: call an action with a
// splice of arguments and get a result or error back, without the host ever
// touching a Level directly.
//
// These all run a single action.Action to completion; they do not walk a
// general expression feed word-by-word (deciding what a bare word or a
// nested call means is the not-yet-built expression evaluator's job, the
// same external-collaborator boundary internal/action's ArgEvaluator
// already names). A host that wants free-form code evaluated rather than
// one action invoked needs that evaluator in front of these entry points.
package embed

import (
	"github.com/funvibe/corevm/internal/action"
	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/funvibe/corevm/internal/trampoline"
)

// runToCompletion pushes a call level for act over the given arguments and
// drives it to a result, returning the raw (possibly unstable) output
// cell and/or the throw that escaped to the root.
func (m *Machine) runToCompletion(act *action.Action, args []Arg) (cell.Cell, trampoline.Bounce, error) {
	cells := make([]cell.Cell, len(args))
	for i, a := range args {
		cells[i] = a.Value
	}
	f := feed.NewFromList(&feed.ListSource{Cells: cells})
	defer f.Release()

	lvl := action.NewCallLevel(m.Interp, act, f, action.IdentityEvaluator)
	if err := m.Interp.Push(lvl); err != nil {
		return cell.Cell{}, trampoline.Bounce{}, err
	}
	bounce, err := m.Interp.RunWithTopAsRoot()
	if err != nil {
		return cell.Cell{}, trampoline.Bounce{}, err
	}
	if bounce.Kind == trampoline.KindThrown {
		return cell.Cell{}, bounce, nil
	}
	return lvl.Out, bounce, nil
}

// Value runs act and requires a stable result, the way rebValue requires
// the evaluated code to produce a plain value rather than an unstable
// antiform or an uncaught throw.
func (m *Machine) Value(act *action.Action, args ...Arg) (cell.Cell, error) {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		return cell.Cell{}, err
	}
	if thrown.Kind == trampoline.KindThrown {
		return cell.Cell{}, thrown.Err
	}
	if !out.IsStable() {
		return cell.Cell{}, ErrUnstableResult
	}
	return out, nil
}

// Lift runs act like Value but never errors on an unstable result: instead
// it quotes the raw output once, so an antiform becomes an inspectable
// quasi-form element rather than being rejected (spec.md §6's rebLift).
func (m *Machine) Lift(act *action.Action, args ...Arg) (cell.Cell, error) {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		return cell.Cell{}, err
	}
	if thrown.Kind == trampoline.KindThrown {
		return cell.Cell{}, thrown.Err
	}
	return Quote(out), nil
}

// Elide runs act purely for its side effects and discards the result,
// still surfacing any throw as a Go error (spec.md §6's rebElide).
func (m *Machine) Elide(act *action.Action, args ...Arg) error {
	_, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		return err
	}
	if thrown.Kind == trampoline.KindThrown {
		return thrown.Err
	}
	return nil
}

// Rescue runs act and converts an escaping throw into a returned error
// value instead of propagating it, the way rebRescue lets the host inspect
// a failure rather than aborting the whole call (spec.md §6).
func (m *Machine) Rescue(act *action.Action, args ...Arg) (result cell.Cell, caught error) {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		return cell.Cell{}, err
	}
	if thrown.Kind == trampoline.KindThrown {
		return cell.Cell{}, thrown.Err
	}
	return out, nil
}

// Rescue2 is Rescue with a separate handler action invoked (with the
// caught error wrapped as a Text cell argument) when the main action
// throws, mirroring rebRescue2's two-body form.
func (m *Machine) Rescue2(act *action.Action, handler *action.Action, args ...Arg) (cell.Cell, error) {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		return cell.Cell{}, err
	}
	if thrown.Kind != trampoline.KindThrown {
		return out, nil
	}
	return m.Value(handler, ValueArg(Text(thrown.Err.Error())))
}

// Recover runs act like Rescue but reports the caught failure through an
// out-parameter instead of a second return value, matching rebRecover's
// C-API-friendly calling convention (a pointer the caller may pass nil).
func (m *Machine) Recover(act *action.Action, failure *error, args ...Arg) cell.Cell {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil {
		if failure != nil {
			*failure = err
		}
		return cell.Cell{}
	}
	if thrown.Kind == trampoline.KindThrown {
		if failure != nil {
			*failure = thrown.Err
		}
		return cell.Cell{}
	}
	if failure != nil {
		*failure = nil
	}
	return out
}

// Jumps reports whether act threw (for any reason — error, break, a
// deliberate throw) rather than completing normally, matching rebJumps'
// pure boolean "did it divert control flow" query (spec.md §6).
func (m *Machine) Jumps(act *action.Action, args ...Arg) bool {
	_, thrown, err := m.runToCompletion(act, args)
	return err != nil || thrown.Kind == trampoline.KindThrown
}

// Did reports act's result as a conditional-truth boolean: false for null
// or void, and also when act throws or fails to run; true otherwise. Not/Didnt are its negation and its
// double-negative spelling, mirroring rebDid/rebNot/rebDidnt.
func (m *Machine) Did(act *action.Action, args ...Arg) bool {
	out, thrown, err := m.runToCompletion(act, args)
	if err != nil || thrown.Kind == trampoline.KindThrown {
		return false
	}
	return LogicOf(out)
}

func (m *Machine) Not(act *action.Action, args ...Arg) bool   { return !m.Did(act, args...) }
func (m *Machine) Didnt(act *action.Action, args ...Arg) bool { return !m.Did(act, args...) }

// UnboxInteger, UnboxDecimal run act and decode its result as the named Go
// type, matching rebUnboxInteger/rebUnboxDecimal's typed-extraction
// convenience wrappers over Value.
func (m *Machine) UnboxInteger(act *action.Action, args ...Arg) (int64, error) {
	out, err := m.Value(act, args...)
	if err != nil {
		return 0, err
	}
	return IntegerOf(out), nil
}

func (m *Machine) UnboxDecimal(act *action.Action, args ...Arg) (float64, error) {
	out, err := m.Value(act, args...)
	if err != nil {
		return 0, err
	}
	return DecimalOf(out), nil
}

// SpellInto runs act and decodes a Text result as a Go string, matching
// rebSpellInto/rebSpell's string-extraction convenience wrapper over Value.
func (m *Machine) SpellInto(act *action.Action, args ...Arg) (string, error) {
	out, err := m.Value(act, args...)
	if err != nil {
		return "", err
	}
	return TextOf(out), nil
}

// BytesInto runs act and decodes a Blob result as a Go byte slice,
// matching rebBytesInto/rebBytes.
func (m *Machine) BytesInto(act *action.Action, args ...Arg) ([]byte, error) {
	out, err := m.Value(act, args...)
	if err != nil {
		return nil, err
	}
	return BlobOf(out), nil
}
