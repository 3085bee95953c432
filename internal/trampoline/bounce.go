package trampoline

// Kind tags the value an executor hands back to the trampoline loop to
// say how evaluation should proceed. This is the Go realization of
// spec.md §9's re-architecture note: "represent each executor as an
// explicit state machine ... returning a tagged Bounce value" in place of
// the source's pointer-identity trick (comparing a returned address
// against the level's own out-cell address).
type Kind uint8

const (
	// KindOut means the final result has been written to this level's Out
	// cell; the loop treats it as "this level bounced its own out".
	KindOut Kind = iota
	// KindContinue means this level pushed a sub-level and wants to be
	// re-invoked once the sub-level produces a result.
	KindContinue
	// KindDelegate means this level pushed a sub-level whose result is
	// final for this level too; this level is dropped once the sub-level
	// resolves, without being re-invoked.
	KindDelegate
	// KindThrown means a throw is in flight; ThrowLabel/Err name it.
	KindThrown
	// KindRedoChecked re-enters the current action level with type
	// checking of its varlist applied again before the dispatcher runs.
	KindRedoChecked
	// KindRedoUnchecked re-enters the current action level without
	// re-checking its varlist.
	KindRedoUnchecked
	// KindSuspend yields control all the way out to the trampoline's
	// caller, e.g. to bootstrap an asynchronous host loop.
	KindSuspend
	// KindPanic is a cooperative panic: identical in effect to a throw
	// whose label is LabelPanic, but produced by ordinary return instead
	// of an actual Go panic.
	KindPanic
)

// ThrowLabel names what a Thrown/Panic bounce is carrying.
type ThrowLabel string

const (
	LabelReturn   ThrowLabel = "return"
	LabelBreak    ThrowLabel = "break"
	LabelContinue ThrowLabel = "continue"
	LabelUnwind   ThrowLabel = "unwind"
	LabelHalt     ThrowLabel = "halt"
	LabelPanic    ThrowLabel = "panic"
)

// Bounce is what every executor returns.
type Bounce struct {
	Kind  Kind
	Label ThrowLabel // meaningful for KindThrown/KindPanic
	Err   error      // the error/value payload of a throw or panic

	// Target, for KindThrown with Label == LabelUnwind or LabelReturn,
	// names the level the throw is aimed at (identity compared against
	// the stack during throw handling). Nil means "propagate to whoever
	// catches this label", which every non-unwind label does implicitly.
	Target *Level
}

// Out reports the "final result in Out" bounce.
func Out() Bounce { return Bounce{Kind: KindOut} }

// Continue reports the "pushed a sub-level, call me back" bounce.
func Continue() Bounce { return Bounce{Kind: KindContinue} }

// Delegate reports the "pushed a sub-level, its result is final" bounce.
func Delegate() Bounce { return Bounce{Kind: KindDelegate} }

// Suspend reports the "yield to the trampoline's caller" bounce.
func Suspend() Bounce { return Bounce{Kind: KindSuspend} }

// RedoChecked / RedoUnchecked report action-executor redo bounces.
func RedoChecked() Bounce   { return Bounce{Kind: KindRedoChecked} }
func RedoUnchecked() Bounce { return Bounce{Kind: KindRedoUnchecked} }

// Thrown builds a throw bounce with the given label, payload, and
// optional target level (nil unless Label is LabelUnwind).
func Thrown(label ThrowLabel, err error, target *Level) Bounce {
	return Bounce{Kind: KindThrown, Label: label, Err: err, Target: target}
}

// Panic builds a cooperative-panic bounce.
func Panic(err error) Bounce {
	return Bounce{Kind: KindPanic, Label: LabelPanic, Err: err}
}
