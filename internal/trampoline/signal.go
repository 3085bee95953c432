package trampoline

// SignalState holds the halt-request and GC-recycle-trigger flags the
// trampoline consults at countdown expiry (spec.md §4.4 step 6, §5
// "Cancellation / halt").
type SignalState struct {
	haltRequested    bool
	recycleRequested bool

	// Recycle, if set, is invoked when the countdown expires and a GC pass
	// has been requested. The garbage collector's own sweep is out of
	// scope (spec.md §1); the trampoline only triggers it.
	Recycle func()
}

// RequestHalt sets the halt flag. The next interruptible level to consume
// signals turns it into a throwing halt that propagates to the root.
func (s *SignalState) RequestHalt() { s.haltRequested = true }

// RequestRecycle marks that a GC pass should run at the next signal check.
func (s *SignalState) RequestRecycle() { s.recycleRequested = true }

// TestHalt peeks the halt flag without clearing it or triggering a throw.
func (s *SignalState) TestHalt() bool { return s.haltRequested }

// TestAndClearHalt peeks and clears the halt flag in one step, letting a
// caller observe+consume it without going through the throw path (used by
// hosts polling for cooperative cancellation between trampoline
// invocations).
func (s *SignalState) TestAndClearHalt() bool {
	v := s.haltRequested
	s.haltRequested = false
	return v
}

// consume runs at countdown expiry: it triggers a GC pass if requested,
// and — if the current level is interruptible and halt was requested —
// returns a halt Bounce for the loop to honor. Uninterruptible levels
// suppress the halt's ability to inject a throw; the flag remains set and
// fires at the first interruptible level instead (spec.md §4.4
// "Interruptibility").
func (i *Interpreter) consumeSignals(current *Level) (Bounce, bool) {
	if i.Signals.recycleRequested {
		i.Signals.recycleRequested = false
		if i.Signals.Recycle != nil {
			i.Signals.Recycle()
		}
	}
	if i.Signals.haltRequested && current.Interruptible() {
		i.Signals.haltRequested = false
		return Thrown(LabelHalt, ErrHalted, nil), true
	}
	return Bounce{}, false
}
