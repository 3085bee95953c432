package action

import (
	"testing"

	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/funvibe/corevm/internal/trampoline"
)

// appendDupPhase builds the append/dup scenario the review comments name
// directly: append series value /dup count, with dup's presence and its
// count argument written into l.Spare so tests can inspect what the
// dispatcher actually saw.
func appendDupPhase(t *testing.T) *Phase {
	series := &Param{Name: "series", Class: ClassNormal}
	value := &Param{Name: "value", Class: ClassNormal}
	dup := &Param{Name: "dup", Class: ClassNormal, Flags: FlagRefinement}
	count := &Param{Name: "count", Class: ClassNormal}

	var ph *Phase
	ph = NewPhase("append", []*Param{series, value, dup, count}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		dupIdx := ph.Keylist.IndexOf("dup")
		l.Spare = l.Varlist.Cells[dupIdx]
		l.Out = l.Varlist.Cells[ph.Keylist.IndexOf("value")]
		return trampoline.Out()
	})
	return ph
}

// TestRefinementDefaultsWithoutConsumingFeed is the review's concrete
// failure scenario: invoking append/dup directly via NewCallLevel without
// specializing dup first must leave dup null and never ask the feed for
// a third element.
func TestRefinementDefaultsWithoutConsumingFeed(t *testing.T) {
	ph := appendDupPhase(t)
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(1), intCell(2)}})
	interp := trampoline.New(1 << 20)
	root := NewCallLevel(interp, act, f, IdentityEvaluator)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected dup to default to null rather than erroring, got %v (err=%v)", result.Kind, result.Err)
	}
	if !root.Spare.IsNull() {
		t.Fatalf("expected dup to be null when unaddressed, got %+v", root.Spare)
	}
	if intOf(root.Out) != 2 {
		t.Fatalf("expected value=2 to fulfill positionally without dup consuming it, got %d", intOf(root.Out))
	}
}

// TestApplyLabelAddressesRefinement exercises Apply's label:/comma path:
// dup: is named out of position, supplies its count, and series/value
// still fill positionally around it.
func TestApplyLabelAddressesRefinement(t *testing.T) {
	ph := appendDupPhase(t)
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{
		intCell(10), intCell(20), Label("dup"), intCell(3),
	}})
	interp := trampoline.New(1 << 20)
	root := Apply(interp, act, f, IdentityEvaluator, false)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected KindOut, got %v (err=%v)", result.Kind, result.Err)
	}
	if !root.Spare.IsOk() {
		t.Fatalf("expected dup to be marked present via label:, got %+v", root.Spare)
	}
	countIdx := ph.Keylist.IndexOf("count")
	if intOf(root.Varlist.Cells[countIdx]) != 3 {
		t.Fatalf("expected dup's count to be filled from the feed after the label, got %d", intOf(root.Varlist.Cells[countIdx]))
	}
}

// TestApplyCommaDefaultsRestOfGroup confirms a comma closes a refinement
// group early, defaulting its remaining sub-parameters instead of reading
// the next positional value into them.
func TestApplyCommaDefaultsRestOfGroup(t *testing.T) {
	ph := appendDupPhase(t)
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{
		intCell(10), intCell(20), Label("dup"), Comma(),
	}})
	interp := trampoline.New(1 << 20)
	root := Apply(interp, act, f, IdentityEvaluator, true)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected KindOut, got %v (err=%v)", result.Kind, result.Err)
	}
	countIdx := ph.Keylist.IndexOf("count")
	if !root.Varlist.Cells[countIdx].IsNull() {
		t.Fatalf("expected count to default to null after the comma, got %+v", root.Varlist.Cells[countIdx])
	}
}

// TestApplyStrictRejectsOverLongBlock confirms the strict/relaxed split:
// once every evars slot has a value, leftover feed elements are an error
// in strict mode.
func TestApplyStrictRejectsOverLongBlock(t *testing.T) {
	xParam := &Param{Name: "x", Class: ClassNormal}
	ph := NewPhase("identity", []*Param{xParam}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		l.Out = l.Varlist.Cells[1]
		return trampoline.Out()
	})
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(1), intCell(2)}})
	interp := trampoline.New(1 << 20)
	root := Apply(interp, act, f, IdentityEvaluator, false)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindThrown {
		t.Fatalf("expected strict mode to throw on a leftover feed element, got %v", result.Kind)
	}
}

// TestApplyRelaxedIgnoresOverLongBlock is the same over-long block, but
// relaxed mode must complete normally and simply ignore the remainder.
func TestApplyRelaxedIgnoresOverLongBlock(t *testing.T) {
	xParam := &Param{Name: "x", Class: ClassNormal}
	ph := NewPhase("identity", []*Param{xParam}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		l.Out = l.Varlist.Cells[1]
		return trampoline.Out()
	})
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(1), intCell(2)}})
	interp := trampoline.New(1 << 20)
	root := Apply(interp, act, f, IdentityEvaluator, true)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected relaxed mode to complete, got %v (err=%v)", result.Kind, result.Err)
	}
	if intOf(root.Out) != 1 {
		t.Fatalf("expected x=1, got %d", intOf(root.Out))
	}
}

// TestVariadicParameterReceivesFeedHandle confirms a variadic slot never
// consumes an argument the normal way: it gets a FeedHandle cell instead,
// and the dispatcher can read further elements straight off it.
func TestVariadicParameterReceivesFeedHandle(t *testing.T) {
	rest := &Param{Name: "rest", Class: ClassNormal, Flags: FlagVariadic}
	var ph *Phase
	ph = NewPhase("collect", []*Param{rest}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		restIdx := ph.Keylist.IndexOf("rest")
		vf := FeedOf(l.Varlist.Cells[restIdx])
		if vf == nil {
			t.Fatalf("expected the variadic slot to hold a feed handle")
		}
		var sum int64
		for {
			el, ok := vf.At()
			if !ok {
				break
			}
			sum += intOf(el)
			if err := vf.Advance(); err != nil {
				t.Fatalf("advance: %v", err)
			}
		}
		l.Out = intCell(sum)
		return trampoline.Out()
	})
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(1), intCell(2), intCell(3)}})
	interp := trampoline.New(1 << 20)
	root := NewCallLevel(interp, act, f, IdentityEvaluator)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected KindOut, got %v (err=%v)", result.Kind, result.Err)
	}
	if intOf(root.Out) != 6 {
		t.Fatalf("expected the dispatcher to read 1+2+3=6 off the feed handle, got %d", intOf(root.Out))
	}
}

// TestInfixCallFillsFirstParamFromLeft confirms NewInfixCallLevel binds
// the left-hand operand into slot 1 without it ever passing through the
// feed.
func TestInfixCallFillsFirstParamFromLeft(t *testing.T) {
	left := &Param{Name: "left", Class: ClassNormal}
	right := &Param{Name: "right", Class: ClassNormal}
	ph := NewPhase("plus", []*Param{left, right}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		l.Out = intCell(intOf(l.Varlist.Cells[1]) + intOf(l.Varlist.Cells[2]))
		return trampoline.Out()
	})
	ph.Infix = true
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(4)}})
	interp := trampoline.New(1 << 20)
	root, err := NewInfixCallLevel(interp, act, intCell(3), f, IdentityEvaluator)
	if err != nil {
		t.Fatalf("NewInfixCallLevel: %v", err)
	}
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, runErr := interp.RunWithTopAsRoot()
	if runErr != nil {
		t.Fatalf("run: %v", runErr)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected KindOut, got %v (err=%v)", result.Kind, result.Err)
	}
	if intOf(root.Out) != 7 {
		t.Fatalf("expected 3+4=7, got %d", intOf(root.Out))
	}
}

// TestSpecializeDemotesInfixWhenFirstParamIsSpecialized checks spec.md
// §4.5.2 step 5 / §8's boundary behavior directly.
func TestSpecializeDemotesInfixWhenFirstParamIsSpecialized(t *testing.T) {
	left := &Param{Name: "left", Class: ClassNormal}
	right := &Param{Name: "right", Class: ClassNormal}
	ph := NewPhase("plus", []*Param{left, right}, nil)
	ph.Infix = true
	act := New(ph)

	if !act.Infix {
		t.Fatalf("expected a freshly built action to inherit Phase.Infix")
	}

	leftIdx := ph.Keylist.IndexOf("left")
	specialized := Specialize(act, nil, func(vl *cell.Stub) {
		vl.Cells[leftIdx] = intCell(1)
	})
	if specialized.Infix {
		t.Fatalf("expected specializing out the first parameter to demote the action to prefix")
	}
}

// TestReturnTypecheckRejectsBadResult confirms a declared return
// constraint is actually consulted once the dispatcher produces a value.
func TestReturnTypecheckRejectsBadResult(t *testing.T) {
	xParam := &Param{Name: "x", Class: ClassNormal}
	ph := NewPhase("bad", []*Param{xParam}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		l.Out = cell.New(cell.HeartText, [2]uint64{}, 0, nil)
		return trampoline.Out()
	})
	ph.Return = &Param{Name: "return", Class: ClassReturn, Constraint: func(c cell.Cell) bool {
		return c.Heart == cell.HeartInteger
	}}
	act := New(ph)

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(1)}})
	interp := trampoline.New(1 << 20)
	root := NewCallLevel(interp, act, f, IdentityEvaluator)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindThrown {
		t.Fatalf("expected the declared return constraint to reject a text result, got %v", result.Kind)
	}
}
