package module

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/amirgeva/gubed/pkg/linemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchInvalidatesOnWrite(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "Foo", "class Foo {\n  bar() {\n    var x = 1\n  }\n}")

	cache := NewCache(linemap.New(), dir)
	_, ok := cache.GetOrLoad("Foo")
	require.True(t, ok)
	_, cached := cache.Get("Foo")
	require.True(t, cached)

	w, err := Watch(cache, dir)
	require.NoError(t, err)
	defer w.Close()

	writeModule(t, dir, "Foo", "class Foo {\n  bar() {\n    var y = 2\n  }\n}")

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if _, cached := cache.Get("Foo"); !cached {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.Fail(t, "expected module cache entry to be invalidated after file write")
}
