package trampoline

import "errors"

// Sentinel errors, following the teacher's internal/vm/vm.go convention of
// package-level errors.New values rather than a generic errors package.
var (
	errShutdownLevelsRemain = errors.New("trampoline: shutdown requested clean but levels remain above bottom")
	errShutdownFlexesRemain = errors.New("trampoline: shutdown requested clean but manual flexes remain")

	// ErrUnbalancedDrop is returned by Drop when a level's baseline does
	// not match the interpreter's current positions at drop time
	// (spec.md testable property 4).
	ErrUnbalancedDrop = errors.New("trampoline: level dropped without restoring its baseline")

	// ErrPushNonErasedOut is returned by Push when state is zero but out
	// is not erased (spec.md testable property 1 / invariant).
	ErrPushNonErasedOut = errors.New("trampoline: level pushed with state 0 but a non-erased out cell")

	// ErrUnwindPastRoot is returned when code attempts to Unwind a level
	// that is no longer on the stack, or to unwind across the tagged
	// root level (spec.md §4.4 "Root level").
	ErrUnwindPastRoot = errors.New("trampoline: attempted to unwind past the root level")

	// ErrRootExpectsResult is returned by
	// Interpreter.RunWithTopAsRoot if the loop returns in neither a
	// result-in-out nor a Thrown state.
	ErrRootExpectsResult = errors.New("trampoline: root run ended without a result or a throw")

	// ErrHalted is the payload of a throw produced by a consumed halt
	// signal (spec.md §5 "Cancellation / halt").
	ErrHalted = errors.New("trampoline: halted")

	// ErrLevelDepthExceeded is returned by Push when pushing would take the
	// interpreter's level stack past MaxLevelDepth — the stackless
	// analogue of a native call-stack overflow guard (spec.md §4.6).
	ErrLevelDepthExceeded = errors.New("trampoline: level stack depth exceeds configured maximum")
)
