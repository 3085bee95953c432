// Package feed implements the lazy element cursor that the trampoline and
// action executor advance to pull the next element out of either an
// in-memory list or a variadic sequence of text chunks, cells, and
// one-shot instruction stubs supplied by the embedding API.
//
// Lexical scanning itself is an external collaborator (spec.md §1); feed
// only depends on the Scanner contract below, never on a concrete lexer.
package feed

import "github.com/funvibe/corevm/internal/cell"

// Scanner turns one text chunk into zero or more element cells. A real
// scanner also reports whether the chunk ended mid-token, which feed turns
// into ErrScanSplitToken (see feed.go).
type Scanner interface {
	Scan(chunk string) (elements []cell.Cell, endedMidToken bool, err error)
}

// Binding is the opaque evaluation context words are resolved against. The
// feed package only carries it; resolution is an evaluator concern.
type Binding any

// ListSource walks a slice of already-materialized cells.
type ListSource struct {
	Cells   []cell.Cell
	Index   int
	Binding Binding
}

// Item is one element of a variadic source: exactly one of Chunk, Value,
// or Instruction is set.
type Item struct {
	Chunk       string
	HasChunk    bool
	Value       cell.Cell
	HasValue    bool
	Instruction *Instruction
}

// VariadicSource walks a heterogeneous splice of text chunks, cells, and
// instruction stubs supplied through the embedding API's variadic
// evaluation entry points (spec.md §6).
type VariadicSource struct {
	Items   []Item
	Index   int
	Binding Binding

	// queued holds elements already scanned out of a text chunk but not
	// yet consumed; Advance drains this before looking at the next Item.
	queued []cell.Cell

	// terminated is set once End is first observed, so teardown
	// (e.g. releasing an instruction's handle) runs exactly once even if
	// the feed is driven to End more than once.
	terminated bool
}
