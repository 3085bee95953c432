package embed

import (
	"math"

	"github.com/funvibe/corevm/internal/cell"
)

// Integer builds an integer element cell, storing v in the first payload
// word the way the teacher's vm.Value stores a numberConst inline rather
// than behind a heap object (spec.md §6's value-construction entry points).
func Integer(v int64) cell.Cell {
	return cell.New(cell.HeartInteger, [2]uint64{uint64(v), 0}, 0, nil)
}

// IntegerOf reads back an Integer cell's value. The caller is responsible
// for checking Heart first; this does no type checking of its own, matching
// the teacher's unchecked AS_NUMBER-style accessors.
func IntegerOf(c cell.Cell) int64 { return int64(c.Payload[0]) }

// Decimal builds a decimal element cell from a float64, bit-packed into the
// first payload word.
func Decimal(v float64) cell.Cell {
	return cell.New(cell.HeartDecimal, [2]uint64{math.Float64bits(v), 0}, 0, nil)
}

// DecimalOf reads back a Decimal cell's value.
func DecimalOf(c cell.Cell) float64 { return math.Float64frombits(c.Payload[0]) }

// Text builds a text element cell backed by a FlavorString stub, the way
// paramlists/varlists/keylists are all backed by *cell.Stub arrays
// distinguished only by Flavor (internal/cell/stub.go).
func Text(s string) cell.Cell {
	stub := &cell.Stub{Flavor: cell.FlavorString, Bytes: []byte(s)}
	return cell.New(cell.HeartText, [2]uint64{uint64(len(s)), 0}, 0, stub)
}

// TextOf reads back a Text cell's string value.
func TextOf(c cell.Cell) string {
	stub, ok := c.Ref.(*cell.Stub)
	if !ok {
		return ""
	}
	return string(stub.Bytes)
}

// Blob builds a binary element cell backed by a FlavorBinary stub, copying
// raw so the caller's slice and the cell's storage never alias.
func Blob(raw []byte) cell.Cell {
	buf := make([]byte, len(raw))
	copy(buf, raw)
	stub := &cell.Stub{Flavor: cell.FlavorBinary, Bytes: buf}
	return cell.New(cell.HeartBlob, [2]uint64{uint64(len(buf)), 0}, 0, stub)
}

// BlobOf reads back a Blob cell's bytes.
func BlobOf(c cell.Cell) []byte {
	stub, ok := c.Ref.(*cell.Stub)
	if !ok {
		return nil
	}
	return stub.Bytes
}

// Word builds a word element cell naming sym, unbound (Extra == 0).
// Binding a word into a context is an evaluator concern outside this
// package's scope; Word only constructs the unbound element a host passes
// in as a literal.
func Word(sym string) cell.Cell {
	stub := &cell.Stub{Flavor: cell.FlavorString, Bytes: []byte(sym)}
	return cell.New(cell.HeartWord, [2]uint64{0, 0}, 0, stub)
}

// WordOf reads back a Word cell's symbol text.
func WordOf(c cell.Cell) string {
	stub, ok := c.Ref.(*cell.Stub)
	if !ok {
		return ""
	}
	return string(stub.Bytes)
}

// Block builds a block element cell from elems, backed by a FlavorSource
// stub — the same representation a feed.ListSource reads from
// (internal/feed), so a host-constructed block can be handed straight to a
// Feed without copying again.
func Block(elems []cell.Cell) cell.Cell {
	buf := make([]cell.Cell, len(elems))
	copy(buf, elems)
	stub := &cell.Stub{Flavor: cell.FlavorSource, Cells: buf}
	return cell.New(cell.HeartBlock, [2]uint64{0, 0}, 0, stub)
}

// BlockOf reads back a Block cell's element slice.
func BlockOf(c cell.Cell) []cell.Cell {
	stub, ok := c.Ref.(*cell.Stub)
	if !ok {
		return nil
	}
	return stub.Cells
}

// Logic builds the stable, storable analog of a boolean: the ok antiform
// for true, null for false, matching this core's "no dedicated logic
// datatype" design (spec.md §4.1's antiform catalogue already covers it).
func Logic(v bool) cell.Cell {
	if v {
		return cell.Ok()
	}
	return cell.Null()
}

// LogicOf reports whether c is a stable true-ish antiform. Any non-null,
// non-void stable value is truthy, matching this core's "everything but
// null/void is true" conditional-truth rule.
func LogicOf(c cell.Cell) bool {
	return !c.IsNull() && !c.IsVoid()
}
