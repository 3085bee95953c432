package feed

// InstructionKind names the one-shot effect an Instruction stands for. The
// feed records the kind but applies no kind-specific effect: reaching an
// instruction only marks it Applied. Instructions are never stored ahead of
// being handed to a feed; doing so is undefined behavior per spec.md §4.2.
type InstructionKind uint8

const (
	InstructionQuote InstructionKind = iota
	InstructionUnquote
	InstructionReleasing
	InstructionInline
	InstructionRun
)

// Instruction is a stub-flavored effect, queued inline in a VariadicSource.
// When Advance reaches it, it sets Applied (once) and consumes no element;
// the Kind is not acted on.
type Instruction struct {
	Kind    InstructionKind
	Applied bool

	// Release, when non-nil, is invoked exactly once after the instruction
	// has had its effect, regardless of whether the feed was exhausted
	// normally or aborted by throw/panic (spec.md §4.2, testable property 8).
	Release func()
}

func (ins *Instruction) apply() {
	if ins == nil || ins.Applied {
		return
	}
	ins.Applied = true
}

// Teardown runs Release exactly once. Safe to call multiple times and on a
// nil Instruction.
func (ins *Instruction) Teardown() {
	if ins == nil || ins.Release == nil {
		return
	}
	release := ins.Release
	ins.Release = nil
	release()
}
