// Package fakeui is a scriptable ui.Collaborator test double. It plays back
// a queued sequence of DebugActions from EventLoop and records every call it
// receives, the way pkg/mock.Service records invocations against a stubbed
// service — adapted here into a fixed action queue rather than a stub table,
// since a debug UI's only real decision point is "what does the operator do
// next."
package fakeui

import (
	"sync"

	"github.com/amirgeva/gubed/pkg/ui"
)

// Call records one invocation against the Collaborator.
type Call struct {
	Method string
	Args   []interface{}
}

// UI is a scripted ui.Collaborator: EventLoop returns queued actions in
// order, falling back to Quit once the queue is exhausted so a buggy test
// cannot spin the debug loop forever.
type UI struct {
	mu sync.Mutex

	actions []ui.DebugAction
	pos     int

	breakpointFn func(module string, line int) bool

	calls     []Call
	output    []string
	lastVars  string
	lastLine  int
	lastModule string
}

// New returns a UI that plays back actions in order.
func New(actions ...ui.DebugAction) *UI {
	return &UI{actions: actions}
}

// SetBreakpointFunc overrides IsBreakpoint's behavior. Without one, every
// line reports false.
func (u *UI) SetBreakpointFunc(fn func(module string, line int) bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.breakpointFn = fn
}

func (u *UI) record(method string, args ...interface{}) {
	u.calls = append(u.calls, Call{Method: method, Args: args})
}

// LoadModule implements ui.Collaborator.
func (u *UI) LoadModule(name string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastModule = name
	u.record("LoadModule", name)
}

// HighlightLine implements ui.Collaborator.
func (u *UI) HighlightLine(line int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastLine = line
	u.record("HighlightLine", line)
}

// SetVariables implements ui.Collaborator.
func (u *UI) SetVariables(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.lastVars = text
	u.record("SetVariables", text)
}

// IsBreakpoint implements ui.Collaborator.
func (u *UI) IsBreakpoint(module string, line int) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.record("IsBreakpoint", module, line)
	if u.breakpointFn == nil {
		return false
	}
	return u.breakpointFn(module, line)
}

// AppendOutput implements ui.Collaborator.
func (u *UI) AppendOutput(text string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.output = append(u.output, text)
	u.record("AppendOutput", text)
}

// EventLoop implements ui.Collaborator, returning the next queued action or
// ui.Quit once the script runs out.
func (u *UI) EventLoop() ui.DebugAction {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.record("EventLoop")
	if u.pos >= len(u.actions) {
		return ui.Quit
	}
	a := u.actions[u.pos]
	u.pos++
	return a
}

// Calls returns every recorded invocation, in order.
func (u *UI) Calls() []Call {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]Call, len(u.calls))
	copy(out, u.calls)
	return out
}

// CalledTimes returns how many times method was invoked.
func (u *UI) CalledTimes(method string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	n := 0
	for _, c := range u.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Output returns every AppendOutput chunk, in order.
func (u *UI) Output() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]string, len(u.output))
	copy(out, u.output)
	return out
}

// LastHighlight returns the most recent (module, line) pair the Collaborator
// was shown.
func (u *UI) LastHighlight() (module string, line int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastModule, u.lastLine
}

// LastVariables returns the most recent SetVariables text.
func (u *UI) LastVariables() string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.lastVars
}
