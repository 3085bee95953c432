package trampoline

import "github.com/funvibe/corevm/internal/cell"

// Interpreter bundles the thread-globals spec.md §9 says should be carried
// as a value rather than package-level globals, so one Go process can run
// many independent, single-threaded interpreters (spec.md §5: "If an
// embedding needs multi-threaded use it must instantiate one interpreter
// per thread").
type Interpreter struct {
	DataStack   []cell.Cell
	MoldBuffer  []byte
	GuardedStubs []*cell.Stub

	ManualFlexCount int
	manualFlexes    map[int]func() // id -> free callback, for rollback

	Bottom *Level
	Top    *Level
	depth  int // number of non-sentinel levels currently pushed

	// MaxLevelDepth, when non-zero, bounds the level stack the way the
	// teacher's MaxFrameCount bounds its native call stack (spec.md §4.6):
	// Push refuses to exceed it rather than let an unbounded recursive
	// evaluation grow the Go heap without limit. Zero means unbounded.
	MaxLevelDepth int

	EvalCountdown       int
	EvalCountdownPeriod int

	Signals SignalState

	tick int
}

// New constructs an Interpreter with its bottom sentinel level pushed.
// Mirrors spec.md §6 Startup(): allocate all structures, construct the
// bottom sentinel level, initialize signals.
func New(evalCountdownPeriod int) *Interpreter {
	i := &Interpreter{
		EvalCountdownPeriod: evalCountdownPeriod,
		EvalCountdown:       evalCountdownPeriod,
		manualFlexes:        make(map[int]func()),
	}
	sentinel := NewLevel(sentinelExecutor)
	sentinel.Flags |= FlagUninterruptible
	i.Bottom = sentinel
	i.Top = sentinel
	return i
}

// sentinelExecutor backs the bottom-of-stack sentinel level. It is never
// meant to run; Shutdown drops it directly.
func sentinelExecutor(l *Level, in Bounce) Bounce {
	return Out()
}

// Tick returns the monotonic step counter (spec.md §6); always increasing
// across calls to the main loop.
func (i *Interpreter) Tick() int { return i.tick }

// SetMaxLevelDepth configures the level-stack depth guard Push enforces.
// Left at New's zero default, depth is unbounded — callers that want the
// guard (e.g. embed.Startup, wiring a config.Profile) opt in explicitly
// rather than New taking on another constructor parameter every caller
// must now pass.
func (i *Interpreter) SetMaxLevelDepth(max int) { i.MaxLevelDepth = max }

// Depth reports the number of non-sentinel levels currently pushed.
func (i *Interpreter) Depth() int { return i.depth }

// Shutdown drops the bottom level. If clean is true it additionally
// requires that no non-sentinel levels or tracked manual flexes remain.
// Feeds are not tracked by the Interpreter and are not checked.
func (i *Interpreter) Shutdown(clean bool) error {
	if clean {
		if i.Top != i.Bottom {
			return errShutdownLevelsRemain
		}
		if len(i.manualFlexes) != 0 {
			return errShutdownFlexesRemain
		}
	}
	i.Bottom = nil
	i.Top = nil
	return nil
}
