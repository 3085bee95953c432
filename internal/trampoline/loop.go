package trampoline

import (
	"fmt"

	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/diag"
)

// Executor's signature takes the incoming Bounce so that an executor whose
// sub-level just resolved (with a value in its own Out, per step 7 below)
// or whose sub-level threw (per step 5) can decide how to proceed, without
// the trampoline ever recursively invoking itself. On a level's very first
// invocation (State == 0) in is the zero Bounce.

// assertInvariants checks the structural invariants spec.md §8 requires
// hold between every pair of bounces.
func assertInvariants(l *Level) error {
	if l.State == 0 && !l.Out.IsErased() {
		return fmt.Errorf("trampoline: invariant violated: state==0 but out is not erased (level %s)", l.ID)
	}
	if l.Prior == nil && l.Executor == nil {
		// sentinel: fine
		return nil
	}
	return nil
}

// fastForward skips over transparent passthrough levels (Executor == nil,
// the JustUseOut convention) and returns the first level with a real
// executor, per spec.md §4.4 step 1.
func fastForward(l *Level) *Level {
	for l != nil && l.Executor == nil && l.Prior != nil {
		l = l.Prior
	}
	return l
}

// invokeRescued calls lvl's executor, converting any host-language panic
// into an abrupt-panic Bounce. This is the single rescue boundary
// spec.md §4.4 describes: "the only place in the entire core that catches
// host-language exceptions."
func (i *Interpreter) invokeRescued(lvl *Level, in Bounce) (b Bounce) {
	defer func() {
		if r := recover(); r != nil {
			lvl.Flags |= FlagAbruptFailure
			b = Thrown(LabelPanic, diag.NewAbruptPanic(r), nil)
		}
	}()
	return lvl.Executor(lvl, in)
}

// Run drives the trampoline until the root level produces a result,
// a throw reaches the root, or an executor suspends.
//
// The caller is responsible for having pushed at least one non-sentinel
// level and tagged the intended root with FlagRootLevel (see
// RunWithTopAsRoot for the common case).
func (i *Interpreter) Run() Bounce {
	for {
		cur := fastForward(i.Top)
		i.Top = cur

		if err := assertInvariants(cur); err != nil {
			panic(err) // debug-only structural corruption, not a user error
		}
		i.tick++

		in := cur.PendingIn
		cur.PendingIn = Bounce{}
		bounce := i.invokeRescued(cur, in)

		if bounce.Kind == KindThrown || bounce.Kind == KindPanic {
			result, done := i.handleThrow(cur, bounce)
			if done {
				return result
			}
			continue
		}

		i.EvalCountdown--
		if i.EvalCountdown <= 0 {
			i.EvalCountdown = i.EvalCountdownPeriod
			if sigBounce, fired := i.consumeSignals(cur); fired {
				result, done := i.handleThrow(cur, sigBounce)
				if done {
					return result
				}
				continue
			}
		}

		switch bounce.Kind {
		case KindOut:
			i.applyForcedFlags(cur)
			if cur.IsRoot() {
				return Bounce{Kind: KindOut}
			}
			i.resolveOutInto(cur)
			continue

		case KindContinue:
			continue

		case KindDelegate:
			cur.Delegating = true
			continue

		case KindSuspend:
			return bounce

		case KindRedoChecked, KindRedoUnchecked:
			cur.PendingIn = bounce
			continue

		default:
			panic(fmt.Errorf("trampoline: executor returned unknown bounce kind %d", bounce.Kind))
		}
	}
}

// applyForcedFlags implements spec.md §4.4 step 7's optional
// post-processing hooks. Per spec.md §9 these are optional; a
// reimplementation whose value model does not distinguish "heavy null"
// from "light null" may omit them, but this module carries both since
// cell.Cell already has the hint flags to support it.
func (i *Interpreter) applyForcedFlags(l *Level) {
	if l.Flags&FlagForceHeavyNulls != 0 {
		if l.Out.IsGhost() {
			l.Out = voidFromGhost(l.Out)
		}
	}
	if l.Flags&FlagForceSurprising != 0 {
		l.Out.Flags &^= cell.FlagUnsurprising
	}
}

// resolveOutInto drops cur (unless kept alive), writes its result into its
// parent's Out, and cascades through any chain of delegating parents so a
// Delegate bounce never needs its own level re-invoked merely to forward a
// child's final result.
func (i *Interpreter) resolveOutInto(cur *Level) {
	for {
		parent := cur.Prior
		if cur.Flags&FlagTrampolineKeepalive == 0 {
			if err := i.Drop(cur); err != nil {
				panic(err)
			}
		} else {
			i.Top = cur.Prior
		}
		parent.Out = cur.Out
		if !parent.Delegating {
			parent.PendingIn = Bounce{Kind: KindOut}
			i.Top = parent
			return
		}
		parent.Delegating = false
		cur = parent
		if cur.IsRoot() {
			i.Top = cur
			return
		}
	}
}

// handleThrow walks up the stack from the level that produced (or was
// just handed) a throw. An Unwind throw whose Target is the level
// currently being examined is caught and converted into a normal result
// at that level (cascading resolution from there). Any other level gets
// one chance, via its executor, to catch the throw (by returning KindOut
// or pushing a recovery sub-level) or let it propagate (by returning
// KindThrown/KindPanic again after its own cleanup); if it propagates,
// that level is rolled back and dropped and the walk continues upward.
// Reaching the root level without a catch returns the throw to the
// caller of Run.
func (i *Interpreter) handleThrow(origin *Level, bounce Bounce) (result Bounce, done bool) {
	thrown := bounce
	if thrown.Kind == KindPanic {
		thrown = Thrown(thrown.Label, thrown.Err, thrown.Target)
	}
	level := origin

	for {
		if thrown.Label == LabelUnwind && thrown.Target == level {
			level.Out = unwindValue(thrown.Err)
			i.Top = level
			i.applyForcedFlags(level)
			if level.IsRoot() {
				return Bounce{Kind: KindOut}, true
			}
			i.resolveOutInto(level)
			return Bounce{}, false
		}

		if level.IsRoot() {
			i.Top = level
			if thrown.Label == LabelUnwind {
				return Thrown(LabelPanic, ErrUnwindPastRoot, nil), true
			}
			return thrown, true
		}

		parent := level.Prior
		i.Rollback(level)

		if thrown.Label == LabelUnwind && thrown.Target == parent {
			level = parent
			continue
		}

		b2 := i.invokeRescued(parent, thrown)
		switch b2.Kind {
		case KindThrown, KindPanic:
			thrown = Thrown(b2.Label, b2.Err, b2.Target)
			level = parent
			continue
		case KindOut:
			i.Top = parent
			i.applyForcedFlags(parent)
			if parent.IsRoot() {
				return Bounce{Kind: KindOut}, true
			}
			i.resolveOutInto(parent)
			return Bounce{}, false
		default:
			// parent pushed a recovery sub-level (Continue/Delegate) or
			// asked to Suspend/Redo; resume the main loop from there.
			if b2.Kind == KindDelegate {
				parent.Delegating = true
			}
			if b2.Kind == KindRedoChecked || b2.Kind == KindRedoUnchecked {
				parent.PendingIn = b2
			}
			i.Top = parent
			return Bounce{}, false
		}
	}
}

// RunWithTopAsRoot temporarily tags the current top as root, runs the
// loop, and clears the root tag. It is not legal for user-mode code to
// unwind across this boundary; ErrUnwindPastRoot documents the
// deterministic failure a misdirected Unwind produces.
func (i *Interpreter) RunWithTopAsRoot() (result Bounce, err error) {
	root := i.Top
	root.Flags |= FlagRootLevel
	defer func() { root.Flags &^= FlagRootLevel }()

	b := i.Run()
	switch b.Kind {
	case KindOut, KindThrown:
		return b, nil
	default:
		return Bounce{}, ErrRootExpectsResult
	}
}
