package feed

import (
	"errors"

	"github.com/funvibe/corevm/internal/cell"
)

// ErrScanSplitToken is returned when a token boundary would have to cross
// a text-chunk boundary: a chunk ends mid-token and feed creation (or
// advancing into the next chunk) cannot recover a single token from it.
var ErrScanSplitToken = errors.New("feed: token split across a text-chunk boundary")

// Feed is the lazy element cursor shared by the trampoline's action
// executor and evaluator stepper. Multiple Levels may hold a reference to
// the same Feed (AddRef/Release) when one pushes a sub-level driving the
// same source, mirroring spec.md §3's feed reference count.
type Feed struct {
	list     *ListSource
	variadic *VariadicSource
	scanner  Scanner

	refcount int

	haveCurrent bool
	current     cell.Cell
	atEnd       bool
}

// NewFromList builds a Feed over an in-memory cell range.
func NewFromList(src *ListSource) *Feed {
	f := &Feed{list: src, refcount: 1}
	f.fill()
	return f
}

// NewFromVariadic builds a Feed over a heterogeneous variadic sequence.
// scanner is consulted whenever Advance needs to turn a text chunk into
// elements; it may be nil if src contains no chunks.
func NewFromVariadic(src *VariadicSource, scanner Scanner) (*Feed, error) {
	f := &Feed{variadic: src, scanner: scanner, refcount: 1}
	if err := f.fillErr(); err != nil {
		return nil, err
	}
	return f, nil
}

// At peeks the current element without consuming it. ok is false at END.
func (f *Feed) At() (el cell.Cell, ok bool) {
	if f.atEnd {
		return cell.Cell{}, false
	}
	return f.current, true
}

// AtEnd reports whether the feed has been exhausted.
func (f *Feed) AtEnd() bool { return f.atEnd }

// Advance consumes the current element and lazily fetches the next one.
func (f *Feed) Advance() error {
	return f.fillErr()
}

// fill calls fillErr and discards the scan error — used from constructors
// where a nil scanner guarantees no chunk will ever need scanning (list
// sources have nothing to scan).
func (f *Feed) fill() { _ = f.fillErr() }

// fillErr is the real advance step: it drains any queued scan output, then
// falls through to list/variadic-specific fetch logic.
func (f *Feed) fillErr() error {
	if f.list != nil {
		return f.fillFromList()
	}
	return f.fillFromVariadic()
}

func (f *Feed) fillFromList() error {
	if f.list.Index >= len(f.list.Cells) {
		f.atEnd = true
		f.haveCurrent = false
		return nil
	}
	f.current = f.list.Cells[f.list.Index]
	f.list.Index++
	f.haveCurrent = true
	f.atEnd = false
	return nil
}

func (f *Feed) fillFromVariadic() error {
	v := f.variadic
	for {
		if len(v.queued) > 0 {
			f.current = v.queued[0]
			v.queued = v.queued[1:]
			f.haveCurrent = true
			f.atEnd = false
			return nil
		}
		if v.Index >= len(v.Items) {
			f.atEnd = true
			f.haveCurrent = false
			f.terminateVariadic()
			return nil
		}
		item := v.Items[v.Index]
		v.Index++

		switch {
		case item.HasChunk:
			if f.scanner == nil {
				return errors.New("feed: text chunk present but no scanner configured")
			}
			elements, midToken, err := f.scanner.Scan(item.Chunk)
			if err != nil {
				return err
			}
			if midToken {
				return ErrScanSplitToken
			}
			v.queued = append(v.queued, elements...)
			continue
		case item.HasValue:
			f.current = item.Value
			f.haveCurrent = true
			f.atEnd = false
			return nil
		case item.Instruction != nil:
			item.Instruction.apply()
			continue
		default:
			continue
		}
	}
}

// terminateVariadic runs any outstanding instruction teardown exactly
// once, the moment the variadic source is first observed exhausted
// (spec.md testable property 8), whether by normal consumption or by the
// last Release on an aborted feed.
func (f *Feed) terminateVariadic() {
	v := f.variadic
	if v == nil || v.terminated {
		return
	}
	v.terminated = true
	for _, item := range v.Items {
		if item.Instruction != nil {
			item.Instruction.Teardown()
		}
	}
}

// Binding returns the binding context used to resolve words produced from
// this feed's source.
func (f *Feed) Binding() Binding {
	if f.list != nil {
		return f.list.Binding
	}
	if f.variadic != nil {
		return f.variadic.Binding
	}
	return nil
}

// SetBinding replaces the feed's binding context.
func (f *Feed) SetBinding(b Binding) {
	if f.list != nil {
		f.list.Binding = b
	}
	if f.variadic != nil {
		f.variadic.Binding = b
	}
}

// AddRef increments the feed's reference count; used when a level pushes
// a sub-level that will drive the same source.
func (f *Feed) AddRef() *Feed {
	f.refcount++
	return f
}

// Release decrements the reference count. On the last release, any
// outstanding variadic termination runs (idempotently, via
// terminateVariadic) even if the feed was abandoned mid-stream by an
// abrupt failure.
func (f *Feed) Release() {
	f.refcount--
	if f.refcount <= 0 {
		f.terminateVariadic()
	}
}

// RefCount reports the current reference count; exposed for tests and
// debug assertions only.
func (f *Feed) RefCount() int { return f.refcount }
