package breakpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToggleSetsAndClears(t *testing.T) {
	s := NewSet()
	assert.False(t, s.Has("Foo", 3))

	on := s.Toggle("Foo", 3)
	assert.True(t, on)
	assert.True(t, s.Has("Foo", 3))

	off := s.Toggle("Foo", 3)
	assert.False(t, off)
	assert.False(t, s.Has("Foo", 3))
}

func TestLinesSortedAndScopedPerModule(t *testing.T) {
	s := NewSet()
	s.Set("Foo", 5)
	s.Set("Foo", 2)
	s.Set("Bar", 1)

	assert.Equal(t, []int{2, 5}, s.Lines("Foo"))
	assert.Equal(t, []int{1}, s.Lines("Bar"))
	assert.Nil(t, s.Lines("Baz"))
}

func TestClearIsNoopWhenAbsent(t *testing.T) {
	s := NewSet()
	s.Clear("Foo", 9)
	assert.False(t, s.Has("Foo", 9))
}
