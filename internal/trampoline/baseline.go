package trampoline

// Baseline snapshots the thread-global mutable positions at Push time, so
// Drop/Rollback can assert (clean drop) or restore (rollback) them.
// Mirrors spec.md §3 "baseline" and §5 "shared resources".
type Baseline struct {
	DataStackTop     int
	MoldBufferOffset int
	GuardedStubCount int
	ManualFlexCount  int
}

func (i *Interpreter) snapshot() Baseline {
	return Baseline{
		DataStackTop:     len(i.DataStack),
		MoldBufferOffset: len(i.MoldBuffer),
		GuardedStubCount: len(i.GuardedStubs),
		ManualFlexCount:  i.ManualFlexCount,
	}
}
