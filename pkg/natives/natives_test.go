package natives

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDirMissingDirIsNotError(t *testing.T) {
	r := NewRegistry()
	err := r.LoadDir(t.TempDir()+"/does-not-exist", nil)
	require.NoError(t, err)
	assert.Empty(t, r.modules)
}

func TestLoadDirSkipsNonSharedLibraryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a library"), 0o644))
	r := NewRegistry()
	require.NoError(t, r.LoadDir(dir, nil))
	assert.Empty(t, r.modules)
}

func TestExtensionMatchesRuntimeGOOS(t *testing.T) {
	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, ".dll", Extension)
	case "darwin":
		assert.Equal(t, ".dylib", Extension)
	default:
		assert.Equal(t, ".so", Extension)
	}
}

func TestResolveReturnsFalseWhenNothingLoaded(t *testing.T) {
	r := NewRegistry()
	_, ok := r.Resolve("kvstore.KVStore.get(_)")
	assert.False(t, ok)
}

func TestShutdownOnEmptyRegistryIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Shutdown()
}
