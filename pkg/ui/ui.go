// Package ui defines the pure contract between the debug control loop and
// whatever renders the paused state to an operator. The control loop never
// touches a terminal directly; it only calls Collaborator.
package ui

import (
	"regexp"
	"strings"
)

// DebugAction is the decision the operator's event loop returns to the
// control loop. None is returned only internally while a Collaborator is
// still polling for input and must never reach the control loop.
type DebugAction int

const (
	None DebugAction = iota
	Step
	Continue
	Quit
)

func (a DebugAction) String() string {
	switch a {
	case Step:
		return "Step"
	case Continue:
		return "Continue"
	case Quit:
		return "Quit"
	default:
		return "None"
	}
}

// Collaborator is the external collaborator the control loop drives. Every
// method must return promptly except EventLoop, which is the single
// blocking point in the whole system.
type Collaborator interface {
	// LoadModule re-reads and displays module's original source if it
	// isn't already the one shown. Idempotent.
	LoadModule(name string)

	// HighlightLine centres the cursor/scroll on line (clamped to the
	// content bounds of the currently displayed module).
	HighlightLine(line int)

	// SetVariables replaces the variables pane with the parsed rows from
	// text (see ParseVariables).
	SetVariables(text string)

	// IsBreakpoint is a pure query against the operator's breakpoint set.
	IsBreakpoint(module string, line int) bool

	// AppendOutput appends a chunk of target-program output.
	AppendOutput(text string)

	// EventLoop blocks until the operator issues Step, Continue, or
	// Quit. It may internally handle navigation, breakpoint toggling, and
	// pane focus without returning.
	EventLoop() DebugAction
}

// Variable is one (name, value) row parsed out of a probe's variable
// snapshot string.
type Variable struct {
	Name  string
	Value string
}

var variableTokenRe = regexp.MustCompile(`^(\w+)=(.*)$`)

// ParseVariables tokenizes a probe's var_data string on "|"; each token
// matching name=value becomes a row. Malformed tokens are silently
// skipped, matching the original's lenient parsing.
func ParseVariables(text string) []Variable {
	if text == "" {
		return nil
	}
	var out []Variable
	for _, token := range strings.Split(text, "|") {
		m := variableTokenRe.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		out = append(out, Variable{Name: m[1], Value: m[2]})
	}
	return out
}
