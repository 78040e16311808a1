package module

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModule(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+Extension), []byte(body), 0644))
}

func TestGetOrLoadMissingFile(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(linemap.New(), dir)

	_, ok := cache.GetOrLoad("Missing")
	assert.False(t, ok)
}

func TestGetOrLoadInstrumentsAndCaches(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Foo", "class Foo {\n  bar() {\n    var x = 1\n  }\n}")

	mapper := linemap.New()
	cache := NewCache(mapper, dir)

	src1, ok := cache.GetOrLoad("Foo")
	require.True(t, ok)
	assert.Contains(t, src1, "import \"gubed\" for Gubedder")
	assert.Equal(t, 1, mapper.Len())

	src2, ok := cache.GetOrLoad("Foo")
	require.True(t, ok)
	assert.Equal(t, src1, src2)

	m, ok := cache.Get("Foo")
	require.True(t, ok)
	assert.Equal(t, "Foo", m.Name)
}

func TestDisableInstrumentationSkipsRewrite(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Foo", "class Foo {\n  bar() {\n    var x = 1\n  }\n}")

	mapper := linemap.New()
	cache := NewCache(mapper, dir)
	cache.DisableInstrumentation()

	src, ok := cache.GetOrLoad("Foo")
	require.True(t, ok)
	assert.NotContains(t, src, "Gubedder")
	assert.Equal(t, 0, mapper.Len())
	assert.True(t, mapper.Disabled())
}
