package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordProbeAndBreakpoint(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordProbe("Foo")
	m.RecordProbe("Foo")
	m.RecordBreakpointHit("Foo")
	m.RecordStep()
	m.RecordContinue()
	m.RecordModuleLoaded()
	m.RecordExtensionLoaded("./ext.so")
	m.RecordExtensionFailed()

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	require.NotEmpty(t, families)

	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	assert.True(t, found["gubed_probe_total"])
	assert.True(t, found["gubed_breakpoint_hits_total"])
	assert.True(t, found["gubed_steps_total"])
}

func TestHandlerServesMetrics(t *testing.T) {
	m := New(DefaultConfig())
	m.RecordProbe("Foo")
	handler := m.Handler()
	assert.NotNil(t, handler)
}
