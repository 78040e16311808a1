// Package vmhost configures the embedded Target Language VM and implements
// the debug callback and control loop that make stepping possible. The VM
// itself is an external collaborator (spec'd, not built here): Host is the
// contract any implementation — a real embedded-language VM or the
// pkg/vmhost/refhost reference interpreter used by this repo's own tests —
// must satisfy.
package vmhost

import (
	"context"
	"errors"
)

// Value is a dynamic Target Language value: float64, string, bool, or nil.
// Host implementations exchange these across the foreign-method boundary.
type Value interface{}

// ErrQuit is the sentinel a Host must return from Run (wrapped, so
// errors.Is still matches) when the operator ends the session with Quit. It
// is caught at exactly one call site — Bridge.Run — and is not treated as a
// script error.
var ErrQuit = errors.New("debug session terminated by operator")

// ErrorKind classifies a diagnostic reported through HostConfig.ReportError.
type ErrorKind int

const (
	// CompileError is a parse/compile-time failure in Target Language source.
	CompileError ErrorKind = iota
	// RuntimeError is a failure raised while the VM is executing.
	RuntimeError
	// StackTraceError is one frame of an unwinding stack trace.
	StackTraceError
)

func (k ErrorKind) String() string {
	switch k {
	case CompileError:
		return "compile error"
	case RuntimeError:
		return "runtime error"
	case StackTraceError:
		return "stack trace"
	default:
		return "error"
	}
}

// ForeignMethodFn is a native function bound into the Target Language VM,
// invoked with the call's arguments and returning a result or an error.
type ForeignMethodFn func(args []Value) (Value, error)

// HostConfig carries the four hooks the VM Host Bridge configures: module
// loading, foreign-method binding, program output, and error reporting.
type HostConfig struct {
	// LoadModule resolves an import by name to its source text. ok is
	// false when no such module exists.
	LoadModule func(name string) (source string, ok bool)

	// BindForeignMethod resolves a foreign method declaration to a Go
	// function. A nil return means "no such method" and is itself
	// reported as a bind failure by the Host, not by the bridge.
	BindForeignMethod func(module, class string, isStatic bool, signature string) ForeignMethodFn

	// Write receives a chunk of program output (e.g. from System.print),
	// in the exact order the VM produces it.
	Write func(text string)

	// ReportError receives one diagnostic. line is in the VM's own
	// (possibly instrumented) line numbering; the bridge's implementation of
	// this hook remaps it to the original source line.
	ReportError func(kind ErrorKind, module string, line int, message string)
}

// Host is the contract for an embedded Target Language VM: configure it
// with the four hooks above, then run one module to completion.
type Host interface {
	// Configure installs the hooks. Called exactly once before Run.
	Configure(cfg HostConfig) error

	// Run interprets entryModule to completion. A Quit during the debug
	// loop must surface as an error satisfying errors.Is(err, ErrQuit);
	// the bridge swallows that specific case and returns nil.
	Run(ctx context.Context, entryModule string) error
}
