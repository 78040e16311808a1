package termui

import (
	"testing"

	"github.com/amirgeva/gubed/pkg/breakpoint"
	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/amirgeva/gubed/pkg/module"
	"github.com/stretchr/testify/assert"
)

func newTestUI() *UI {
	mapper := linemap.New()
	cache := module.NewCache(mapper, "")
	breakpoints := breakpoint.NewSet()
	return New(cache, breakpoints)
}

func TestIsBreakpointDelegatesToSet(t *testing.T) {
	u := newTestUI()
	assert.False(t, u.IsBreakpoint("Foo", 3))
	u.breakpoints.Set("Foo", 3)
	assert.True(t, u.IsBreakpoint("Foo", 3))
}

func TestAppendOutputSplitsLinesAndTruncates(t *testing.T) {
	u := newTestUI()
	u.AppendOutput("one\ntwo\n")
	assert.Equal(t, []string{"one", "two"}, u.output)

	for i := 0; i < 250; i++ {
		u.AppendOutput("x\n")
	}
	assert.LessOrEqual(t, len(u.output), 200)
}

func TestLoadModuleIsIdempotent(t *testing.T) {
	u := newTestUI()
	u.LoadModule("Foo")
	assert.Equal(t, "Foo", u.currentModule)
	u.LoadModule("Foo")
	assert.Equal(t, "Foo", u.currentModule)
}

func TestSetVariablesParsesSnapshot(t *testing.T) {
	u := newTestUI()
	u.HighlightLine(0) // exercises redraw with no module loaded; must not panic
	u.SetVariables("x=5|y=6")
	assert.Equal(t, 2, len(u.variables))
	assert.Equal(t, "x", u.variables[0].Name)
	assert.Equal(t, "5", u.variables[0].Value)
}
