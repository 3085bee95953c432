package action

import (
	"testing"

	"github.com/funvibe/corevm/internal/cell"
	"github.com/funvibe/corevm/internal/feed"
	"github.com/funvibe/corevm/internal/trampoline"
)

// TestSpecializeThenApply is the seed scenario B harness: specialize x to a
// fixed value, then apply the remaining slot from a feed, and confirm the
// dispatcher sees both values through the one varlist.
func TestSpecializeThenApply(t *testing.T) {
	xParam := &Param{Name: "x", Class: ClassNormal}
	yParam := &Param{Name: "y", Class: ClassNormal}

	var ph *Phase
	ph = NewPhase("add", []*Param{xParam, yParam}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		xIdx := ph.Keylist.IndexOf("x")
		yIdx := ph.Keylist.IndexOf("y")
		sum := intOf(l.Varlist.Cells[xIdx]) + intOf(l.Varlist.Cells[yIdx])
		l.Out = intCell(sum)
		return trampoline.Out()
	})

	archetype := New(ph)
	xIdx := ph.Keylist.IndexOf("x")

	specialized := Specialize(archetype, nil, func(vl *cell.Stub) {
		vl.Cells[xIdx] = intCell(5)
	})

	if _, open := FirstUnspecializedParam(specialized); !open {
		t.Fatalf("y should still be open after specializing only x")
	}
	if Saturated(specialized) {
		t.Fatalf("action should not be saturated before y is supplied")
	}

	f := feed.NewFromList(&feed.ListSource{Cells: []cell.Cell{intCell(7)}})

	interp := trampoline.New(1 << 20)
	root := NewCallLevel(interp, specialized, f, IdentityEvaluator)
	if err := interp.Push(root); err != nil {
		t.Fatalf("push: %v", err)
	}

	result, err := interp.RunWithTopAsRoot()
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Kind != trampoline.KindOut {
		t.Fatalf("expected KindOut, got %v (label=%v err=%v)", result.Kind, result.Label, result.Err)
	}
	if got := intOf(root.Out); got != 12 {
		t.Fatalf("expected 5+7=12, got %d", got)
	}
}

// TestApplyTooFewArguments exercises the FulfillArg arity-error path: a
// feed that runs out before every open slot is filled throws rather than
// dispatching with a partially-filled varlist.
func TestApplyTooFewArguments(t *testing.T) {
	xParam := &Param{Name: "x", Class: ClassNormal}
	ph := NewPhase("identity", []*Param{xParam}, func(l *trampoline.Level, interp *trampoline.Interpreter, in trampoline.Bounce) trampoline.Bounce {
		t.Fatalf("dispatcher should never run when arguments are short")
		return trampoline.Out()
	})

	act := New(ph)
	f := feed.NewFromList(&feed.ListSource{})

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
		t.Fatalf("expected a throw for missing arguments, got %v", result.Kind)
	}
}
