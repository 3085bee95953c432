package action

import (
	"testing"

	"github.com/funvibe/corevm/internal/cell"
)

func intCell(v int64) cell.Cell {
	return cell.New(cell.HeartInteger, [2]uint64{uint64(v), 0}, 0, nil)
}

func intOf(c cell.Cell) int64 { return int64(c.Payload[0]) }

func TestPartialRefinementOrdering(t *testing.T) {
	base := &Param{Name: "base", Class: ClassNormal}
	refA := &Param{Name: "a", Class: ClassNormal, Flags: FlagRefinement}
	refB := &Param{Name: "b", Class: ClassNormal, Flags: FlagRefinement}
	refC := &Param{Name: "c", Class: ClassNormal, Flags: FlagRefinement}

	ph := NewPhase("op", []*Param{base, refA, refB, refC}, nil)
	act := New(ph)

	baseIdx := ph.Keylist.IndexOf("base")
	aIdx := ph.Keylist.IndexOf("a")
	bIdx := ph.Keylist.IndexOf("b")
	cIdx := ph.Keylist.IndexOf("c")

	round1 := Specialize(act, nil, func(vl *cell.Stub) {
		vl.Cells[baseIdx] = intCell(7)
	})

	if len(round1.Partials) != 3 {
		t.Fatalf("expected 3 still-open refinements, got %v", round1.Partials)
	}
	wantDiscoveryOrder := []int{aIdx, bIdx, cIdx}
	for i, idx := range wantDiscoveryOrder {
		if round1.Partials[i] != idx {
			t.Fatalf("Partials[%d] = %d, want %d (order %v)", i, round1.Partials[i], idx, round1.Partials)
		}
	}

	open := OpenPartialRefinements(round1)
	if len(open) != 3 || open[0] != cIdx || open[1] != bIdx || open[2] != aIdx {
		t.Fatalf("OpenPartialRefinements should visit tail-to-head (c,b,a), got %v", open)
	}

	if !IsUnspecialized(round1.Varlist.Cells[aIdx]) {
		t.Fatalf("refinement a should still be open after round1")
	}
	if intOf(round1.Varlist.Cells[baseIdx]) != 7 {
		t.Fatalf("base should have been specialized to 7")
	}

	round2 := Specialize(round1, []Symbol{"c"}, func(vl *cell.Stub) {})
	if len(round2.Partials) != 2 || round2.Partials[0] != aIdx || round2.Partials[1] != bIdx {
		t.Fatalf("round2 Partials should drop c, got %v", round2.Partials)
	}
	if !round2.Varlist.Cells[cIdx].IsOk() {
		t.Fatalf("argless refinement c should lock to the ok antiform once addressed, got %+v", round2.Varlist.Cells[cIdx])
	}
}
