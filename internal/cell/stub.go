package cell

// Flavor tags a Stub with the role its contents play; most of the core's
// heap-allocated arrays are Stubs distinguished only by Flavor, the way
// the teacher distinguishes ObjClosure/Chunk/PersistentMap by Go type but
// keeps them behind the single evaluator.Object interface.
type Flavor uint8

const (
	FlavorParamlist Flavor = iota
	FlavorVarlist
	FlavorSource
	FlavorDetails
	FlavorKeylist
	FlavorBinary
	FlavorString
	FlavorPartials
	FlavorInstruction
)

// StubFlag mirrors spec.md §3's per-stub flags.
type StubFlag uint8

const (
	StubManaged StubFlag = 1 << iota
	StubRoot
	StubFixedSize
	StubDynamic
	StubDontRelocate
	StubFrozen
)

// Stub is the heap-allocated, variable-length array backing paramlists,
// varlists, keylists, details, and binary/string data. Cells is used for
// every flavor except FlavorBinary/FlavorString, which use Bytes.
//
// Misc and Link are bookkeeping slots whose meaning depends on Flavor:
// for FlavorVarlist, Link points back at the owning phase; internal/action
// keeps the still-partial refinement ordering on action.Action.Partials,
// not in Misc. For FlavorPartials, Misc is unused.
type Stub struct {
	Flavor   Flavor
	Flags    StubFlag
	Cells    []Cell
	Bytes    []byte
	Misc     any
	Link     any
}

// NewArrayStub allocates a Stub of the given flavor with length cells, all
// erased, and capacity equal to length (callers that need headroom should
// grow explicitly — this mirrors the teacher's pattern of allocating
// frames/varlists sized exactly to the paramlist they back).
func NewArrayStub(flavor Flavor, length int) *Stub {
	return &Stub{Flavor: flavor, Cells: make([]Cell, length)}
}

// Len reports the number of cells (or bytes, for binary/string flavors).
func (s *Stub) Len() int {
	if s.Flavor == FlavorBinary || s.Flavor == FlavorString {
		return len(s.Bytes)
	}
	return len(s.Cells)
}

// Frozen reports whether the stub rejects further mutation.
func (s *Stub) Frozen() bool { return s.Flags&StubFrozen != 0 }

// Freeze marks the stub frozen; used once a varlist has been captured by
// user code and must no longer be resized by the owning level.
func (s *Stub) Freeze() { s.Flags |= StubFrozen }

// Managed reports whether the stub is subject to GC rather than manual
// free/rollback.
func (s *Stub) Managed() bool { return s.Flags&StubManaged != 0 }

// Manage transitions the stub from manually-tracked to GC-managed. This is
// the Stub-level half of the API's UnmanageMemory/Manage duality described
// in spec.md §6.
func (s *Stub) Manage() { s.Flags |= StubManaged }
