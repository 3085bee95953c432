package trampoline

import (
	"testing"

	"github.com/funvibe/corevm/internal/cell"
)

func counterCell(n int) cell.Cell {
	return cell.Cell{Heart: cell.HeartInteger, Lift: cell.LiftBase, Flags: cell.FlagReadable, Payload: [2]uint64{uint64(n), 0}}
}

// countingExecutor pushes one child Level per tick until depth reaches
// target, then unwinds cleanly — the stackless analogue of unbounded
// recursion, used to exercise MaxLevelDepth without actually recursing
// the Go call stack.
func countingExecutor(interp *Interpreter, target int) Executor {
	var exec Executor
	exec = func(l *Level, in Bounce) Bounce {
		switch l.State {
		case 0:
			n := int(l.Scratch.Payload[0])
			if n >= target {
				l.Out = counterCell(n)
				return Out()
			}
			sub := NewLevel(exec)
			sub.Scratch = counterCell(n + 1)
			if err := interp.Push(sub); err != nil {
				return Thrown(LabelPanic, err, nil)
			}
			l.State = 1
			return Continue()
		case 1:
			if in.Kind != KindOut {
				return in
			}
			// the sub-level's result is already in l.Out
			return Out()
		default:
			panic("unreachable state")
		}
	}
	return exec
}

func TestMaxLevelDepthRejectsPushPastCeiling(t *testing.T) {
	interp := New(1 << 20)
	interp.SetMaxLevelDepth(4)

	root := NewLevel(nil)
	root.Flags |= FlagRootLevel
	root.Executor = countingExecutor(interp, 100)
	root.Scratch = counterCell(0)

	if err := interp.Push(root); err != nil {
		t.Fatalf("push root: %v", err)
	}

	result := interp.Run()
	if result.Kind != KindThrown || result.Label != LabelPanic {
		t.Fatalf("expected a panic once the level stack exceeds its configured depth, got kind=%v label=%v", result.Kind, result.Label)
	}
	if result.Err != ErrLevelDepthExceeded {
		t.Fatalf("expected ErrLevelDepthExceeded, got %v", result.Err)
	}
}

func TestDepthTracksPushAndDrop(t *testing.T) {
	interp := New(1 << 20)
	if interp.Depth() != 0 {
		t.Fatalf("expected a fresh interpreter to start at depth 0, got %d", interp.Depth())
	}

	lvl := NewLevel(nil)
	if err := interp.Push(lvl); err != nil {
		t.Fatalf("push: %v", err)
	}
	if interp.Depth() != 1 {
		t.Fatalf("expected depth 1 after one push, got %d", interp.Depth())
	}

	if err := interp.Drop(lvl); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if interp.Depth() != 0 {
		t.Fatalf("expected depth 0 after drop, got %d", interp.Depth())
	}
}

func TestSetMaxLevelDepthZeroDisablesGuard(t *testing.T) {
	interp := New(1 << 20)
	interp.SetMaxLevelDepth(0)

	for n := 0; n < 50; n++ {
		lvl := NewLevel(nil)
		if err := interp.Push(lvl); err != nil {
			t.Fatalf("push %d: unexpected error with depth guard disabled: %v", n, err)
		}
	}
	if interp.Depth() != 50 {
		t.Fatalf("expected depth 50, got %d", interp.Depth())
	}
}
