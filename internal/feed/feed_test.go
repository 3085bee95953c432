package feed

import (
	"testing"

	"github.com/funvibe/corevm/internal/cell"
)

func intCell(v int64) cell.Cell {
	return cell.New(cell.HeartInteger, [2]uint64{uint64(v), 0}, 0, nil)
}

func TestListSourceYieldsInOrder(t *testing.T) {
	f := NewFromList(&ListSource{Cells: []cell.Cell{intCell(1), intCell(2)}})
	el, ok := f.At()
	if !ok || el.Payload[0] != 1 {
		t.Fatalf("expected first element 1, got %+v ok=%v", el, ok)
	}
	if err := f.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	el, ok = f.At()
	if !ok || el.Payload[0] != 2 {
		t.Fatalf("expected second element 2, got %+v ok=%v", el, ok)
	}
	if err := f.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if _, ok := f.At(); ok {
		t.Fatalf("expected END after consuming both elements")
	}
}

type stubScanner struct {
	midToken bool
}

func (s stubScanner) Scan(chunk string) ([]cell.Cell, bool, error) {
	if chunk == "" {
		return nil, false, nil
	}
	return []cell.Cell{intCell(int64(len(chunk)))}, s.midToken, nil
}

func TestVariadicSplicesChunksAndCells(t *testing.T) {
	src := &VariadicSource{Items: []Item{
		{Chunk: "ab", HasChunk: true},
		{Value: intCell(99), HasValue: true},
	}}
	f, err := NewFromVariadic(src, stubScanner{})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	el, ok := f.At()
	if !ok || el.Payload[0] != 2 {
		t.Fatalf("expected scanned element from chunk, got %+v", el)
	}
	if err := f.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	el, ok = f.At()
	if !ok || el.Payload[0] != 99 {
		t.Fatalf("expected spliced cell 99, got %+v", el)
	}
}

func TestVariadicRejectsMidTokenSplit(t *testing.T) {
	src := &VariadicSource{Items: []Item{{Chunk: "ab", HasChunk: true}}}
	_, err := NewFromVariadic(src, stubScanner{midToken: true})
	if err != ErrScanSplitToken {
		t.Fatalf("expected ErrScanSplitToken, got %v", err)
	}
}

func TestInstructionTeardownRunsExactlyOnce(t *testing.T) {
	count := 0
	ins := &Instruction{Kind: InstructionReleasing, Release: func() { count++ }}
	src := &VariadicSource{Items: []Item{{Instruction: ins}}}
	f, err := NewFromVariadic(src, nil)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !f.AtEnd() {
		t.Fatalf("expected feed to exhaust immediately after a lone instruction")
	}
	f.Release()
	f.Release()
	if count != 1 {
		t.Fatalf("expected teardown exactly once, ran %d times", count)
	}
}

func TestAddRefRelease(t *testing.T) {
	f := NewFromList(&ListSource{Cells: []cell.Cell{intCell(1)}})
	f.AddRef()
	if f.RefCount() != 2 {
		t.Fatalf("expected refcount 2, got %d", f.RefCount())
	}
	f.Release()
	if f.RefCount() != 1 {
		t.Fatalf("expected refcount 1, got %d", f.RefCount())
	}
}
