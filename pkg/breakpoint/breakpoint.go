// Package breakpoint holds the per-module set of original-line breakpoints.
// cmd/gubed fills it from the optional breakpoints file at startup; after
// that only the UI mutates it (on operator toggle). The control loop only
// reads it, once per probe while in Continue mode.
package breakpoint

import "sort"

// Set is a mapping from module name to the set of original-line indices
// where execution should pause in Continue mode.
type Set struct {
	lines map[string]map[int]struct{}
}

// NewSet returns an empty breakpoint set.
func NewSet() *Set {
	return &Set{lines: make(map[string]map[int]struct{})}
}

// Toggle flips the breakpoint at (module, line) and reports whether it is
// now set.
func (s *Set) Toggle(module string, line int) bool {
	m, ok := s.lines[module]
	if !ok {
		m = make(map[int]struct{})
		s.lines[module] = m
	}
	if _, set := m[line]; set {
		delete(m, line)
		return false
	}
	m[line] = struct{}{}
	return true
}

// Set unconditionally marks line as a breakpoint.
func (s *Set) Set(module string, line int) {
	m, ok := s.lines[module]
	if !ok {
		m = make(map[int]struct{})
		s.lines[module] = m
	}
	m[line] = struct{}{}
}

// Clear unconditionally removes a breakpoint, if present.
func (s *Set) Clear(module string, line int) {
	if m, ok := s.lines[module]; ok {
		delete(m, line)
	}
}

// Has reports whether (module, line) is currently a breakpoint.
func (s *Set) Has(module string, line int) bool {
	m, ok := s.lines[module]
	if !ok {
		return false
	}
	_, set := m[line]
	return set
}

// Lines returns the breakpoint lines for module in ascending order, for
// deterministic display only; the spec does not give the set itself
// ordering semantics.
func (s *Set) Lines(module string) []int {
	m, ok := s.lines[module]
	if !ok {
		return nil
	}
	out := make([]int, 0, len(m))
	for line := range m {
		out = append(out, line)
	}
	sort.Ints(out)
	return out
}
