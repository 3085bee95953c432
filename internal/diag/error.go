// Package diag implements the core's three-tier error vocabulary
// (spec.md §4.7): ordinary definitional errors that a script can trap,
// cooperative panics an executor raises deliberately, and abrupt panics
// the trampoline's one recover() site converts from a host-language
// exception. It follows the teacher's runtimeError/formatError split
// (internal/vm/vm.go) — a bare message built at the error site, enriched
// with position/call-stack context at the point it is finally reported —
// generalized from one VM's inline chunk/line bookkeeping into a
// standalone, reusable value type.
package diag

import (
	"fmt"
	"strings"
)

// Site names where in the running program a diagnostic originated. Line/
// column numbering is an external (lexer/parser) concern; this core only
// carries whatever the caller already computed, the same way
// internal/vm.formatError reads vm.frame.chunk.Lines rather than deriving
// position itself.
type Site struct {
	Label string // human-readable location, e.g. a phase name or file:line
	Trace []string
}

func (s Site) String() string {
	if s.Label == "" && len(s.Trace) == 0 {
		return ""
	}
	var b strings.Builder
	if s.Label != "" {
		b.WriteString(s.Label)
	}
	for _, frame := range s.Trace {
		b.WriteString("\n  at ")
		b.WriteString(frame)
	}
	return b.String()
}

// DefinitionalError is an ordinary runtime error a script can construct,
// trap, and inspect: "wrong number of arguments", "type mismatch", a
// user-raised error value. It is the analog of runtimeError's plain
// fmt.Errorf — deliberately unexceptional.
type DefinitionalError struct {
	Message string
	Site    Site
	Cause   error
}

func (e *DefinitionalError) Error() string {
	if e.Site.String() == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Site)
}

func (e *DefinitionalError) Unwrap() error { return e.Cause }

// Newf builds a DefinitionalError the way runtimeError builds a plain
// fmt.Errorf message, deferring position enrichment to Annotate.
func Newf(format string, args ...any) *DefinitionalError {
	return &DefinitionalError{Message: fmt.Sprintf(format, args...)}
}

// Annotate attaches site information to an existing DefinitionalError,
// mirroring formatError's "add line info and stack trace" pass — done once,
// at the point an error is about to leave the trampoline, not at every
// frame it passes through.
func Annotate(err *DefinitionalError, site Site) *DefinitionalError {
	out := *err
	out.Site = site
	return &out
}

// CooperativePanic is a panic an executor raises deliberately — by
// returning trampoline.Panic(err) rather than an actual Go panic — to
// unwind past levels that have no interest in catching a particular
// failure. It is distinguished from DefinitionalError only by severity:
// code is not expected to trap it selectively, only to let it propagate or
// terminate the program.
type CooperativePanic struct {
	Message string
	Site    Site
}

func (e *CooperativePanic) Error() string {
	if e.Site.String() == "" {
		return e.Message
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Site)
}

// NewCooperativePanic builds a CooperativePanic with the given message.
func NewCooperativePanic(format string, args ...any) *CooperativePanic {
	return &CooperativePanic{Message: fmt.Sprintf(format, args...)}
}

// AbruptPanic wraps whatever invokeRescued's recover() caught: either an
// error the host code panicked with, or an arbitrary recovered value
// stringified for display. This is the payload trampoline.LabelPanic
// bounces carry (spec.md §4.4's "single rescue boundary").
type AbruptPanic struct {
	Recovered any
	Site      Site
}

func (e *AbruptPanic) Error() string {
	msg := fmt.Sprintf("abrupt panic: %v", e.Recovered)
	if e.Site.String() == "" {
		return msg
	}
	return fmt.Sprintf("%s (%s)", msg, e.Site)
}

// Unwrap lets errors.As/errors.Is see through to a recovered error value.
func (e *AbruptPanic) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// NewAbruptPanic wraps a recovered value.
func NewAbruptPanic(recovered any) *AbruptPanic {
	return &AbruptPanic{Recovered: recovered}
}
