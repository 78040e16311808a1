package linemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLineIDFitsIn52Bits(t *testing.T) {
	id := NewLineID("Foo", "bar", 3)
	assert.LessOrEqual(t, uint64(id), lineIDMask)
}

func TestNewLineIDDeterministicAndDistinct(t *testing.T) {
	a := NewLineID("Foo", "bar", 3)
	b := NewLineID("Foo", "bar", 3)
	c := NewLineID("Foo", "bar", 4)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestLookupUnknownID(t *testing.T) {
	m := New()
	_, ok := m.Lookup(LineID(42))
	assert.False(t, ok)
}

func TestAddLineAndLookupRoundTrip(t *testing.T) {
	m := New()
	id := NewLineID("Foo", "bar", 2)
	m.AddLine(id, "Foo", 5, 2)

	d, ok := m.Lookup(id)
	require.True(t, ok)
	assert.Equal(t, "Foo", d.Module)
	assert.Equal(t, 5, d.InstrumentedLine)
	assert.Equal(t, 2, d.OriginalLine)
}

func TestReverseLookupMatchesExactPair(t *testing.T) {
	m := New()
	id := NewLineID("Foo", "bar", 2)
	m.AddLine(id, "Foo", 5, 2)

	d, ok := m.ReverseLookup("Foo", 5)
	require.True(t, ok)
	assert.Equal(t, 2, d.OriginalLine)

	_, ok = m.ReverseLookup("Foo", 6)
	assert.False(t, ok)
}

func TestDisableIsIdentityMapping(t *testing.T) {
	m := New()
	m.Disable()
	assert.True(t, m.Disabled())

	d, ok := m.ReverseLookup("Foo", 7)
	require.True(t, ok)
	assert.Equal(t, 7, d.OriginalLine)
	assert.Equal(t, 0, m.Len())
}
