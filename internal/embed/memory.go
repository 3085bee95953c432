package embed

import (
	"fmt"

	"github.com/funvibe/corevm/internal/cell"
)

// ErrOutOfMemory is the value AllocBytes panics with when TryAllocBytes
// reports failure. TryAllocBytes reports failure (false, not this error)
// only for a negative size; an exhausted Go allocator is not caught.
var ErrOutOfMemory = fmt.Errorf("embed: out of memory")

// Flex is a manually-tracked managed allocation's host-visible handle: a
// byte slice plus the bookkeeping id AllocManualFlex assigned it, so Free
// and UnmanageMemory can find it again.
type Flex struct {
	id   int
	Data []byte
}

// AllocBytes allocates n zeroed bytes tracked against m's Interpreter (so
// Rollback frees it if the allocating level aborts) and against the
// profile's GC trigger threshold. It panics on allocation failure the way
// Go's make does; TryAllocBytes is the variant that instead reports false.
func (m *Machine) AllocBytes(n int) *Flex {
	f, ok := m.TryAllocBytes(n)
	if !ok {
		panic(ErrOutOfMemory)
	}
	return f
}

// TryAllocBytes is AllocBytes without the panic: ok is false if the
// request could not be satisfied.
func (m *Machine) TryAllocBytes(n int) (flex *Flex, ok bool) {
	if n < 0 {
		return nil, false
	}
	data := make([]byte, n)
	f := &Flex{Data: data}
	f.id = m.Interp.AllocManualFlex(func() { f.Data = nil })
	m.noteAlloc(int64(n))
	return f, true
}

// ReallocBytes resizes flex's backing storage to n bytes, preserving the
// overlapping prefix, the way a host's realloc would.
func (m *Machine) ReallocBytes(flex *Flex, n int) {
	if n < 0 {
		n = 0
	}
	grown := make([]byte, n)
	copy(grown, flex.Data)
	delta := int64(n - len(flex.Data))
	flex.Data = grown
	if delta > 0 {
		m.noteAlloc(delta)
	}
}

// FreeOpt frees flex if non-nil; safe to call with nil (spec.md §6's
// "optional free" convention, mirroring a C API's tolerance for freeing a
// null pointer).
func (m *Machine) FreeOpt(flex *Flex) {
	if flex == nil {
		return
	}
	m.Free(flex)
}

// Free releases flex's allocation immediately, outside of Rollback.
func (m *Machine) Free(flex *Flex) {
	m.Interp.FreeManualFlex(flex.id)
	flex.Data = nil
}

// UnmanageMemory detaches flex from rollback tracking, so it survives a
// throw/panic unwind past its allocating level at the cost of the caller
// now being solely responsible for calling Free (spec.md §6).
func (m *Machine) UnmanageMemory(flex *Flex) {
	m.Interp.UnmanageMemory(flex.id)
}

// Repossess transfers a manual allocation into a blob value: the bytes
// written to flex (its first size of them) become the blob's contents,
// preserved exactly, with one guaranteed-zero byte of headroom past size
// so the result is safe to treat as NUL-terminated without a further copy
// (spec.md §6/§8). flex's raw storage must not be used after this call —
// Repossess frees its manual-allocation tracking once the blob holds its
// own copy of the data.
func (m *Machine) Repossess(flex *Flex, size int) cell.Cell {
	if size < 0 {
		size = 0
	}
	if size > len(flex.Data) {
		size = len(flex.Data)
	}
	buf := make([]byte, size, size+1)
	copy(buf, flex.Data[:size])
	stub := &cell.Stub{Flavor: cell.FlavorBinary, Bytes: buf}
	result := cell.New(cell.HeartBlob, [2]uint64{uint64(size), 0}, 0, stub)
	m.Free(flex)
	return result
}
