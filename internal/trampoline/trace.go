package trampoline

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// Tracer dumps one line per trampoline step to a writer for debugging
// the loop's state transitions — the stackless equivalent of watching a
// Go call stack, since Run's own frame never grows. Color is only
// emitted when out is a real terminal, the same isatty.IsTerminal /
// IsCygwinTerminal check the teacher's term builtins use to decide
// whether to emit ANSI codes (internal/evaluator/builtins_term.go).
type Tracer struct {
	out   io.Writer
	color bool
}

// NewTracer builds a Tracer writing to out, auto-detecting color support
// when out is *os.File.
func NewTracer(out io.Writer) *Tracer {
	color := false
	if f, ok := out.(*os.File); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Tracer{out: out, color: color}
}

// Step records one Run loop iteration: the level about to be invoked, its
// state byte, and the bounce kind it just produced (zero Bounce on a
// level's first invocation).
func (t *Tracer) Step(tick int, l *Level, in Bounce, out Bounce) {
	if t == nil {
		return
	}
	label := fmt.Sprintf("tick=%d level=%s state=%d in=%s out=%s",
		tick, l.ID, l.State, kindLabel(in.Kind), kindLabel(out.Kind))
	if t.color {
		fmt.Fprintf(t.out, "\x1b[2m%s\x1b[0m\n", label)
		return
	}
	fmt.Fprintln(t.out, label)
}

func kindLabel(k Kind) string {
	switch k {
	case KindOut:
		return "out"
	case KindContinue:
		return "continue"
	case KindDelegate:
		return "delegate"
	case KindThrown:
		return "thrown"
	case KindRedoChecked:
		return "redo-checked"
	case KindRedoUnchecked:
		return "redo-unchecked"
	case KindSuspend:
		return "suspend"
	case KindPanic:
		return "panic"
	default:
		return "?"
	}
}
