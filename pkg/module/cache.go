// Package module is the Module Cache: it reads a Target Language source
// file once, runs it through the Instrumenter (unless instrumentation is
// globally disabled), and serves every subsequent load of the same module
// name from memory. The VM never sees the canonical strings directly — it
// gets a fresh copy each time, matching the original's allocate-and-copy
// semantics around foreign memory ownership.
package module

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/amirgeva/gubed/pkg/instrument"
	"github.com/amirgeva/gubed/pkg/linemap"
)

// Extension is the fixed source file suffix for Target Language modules.
const Extension = ".wren"

// Module is one loaded module's original and instrumented source, kept for
// the process lifetime once created.
type Module struct {
	Name         string
	Original     []string
	Instrumented []string
}

// Cache is the process-wide module store. It is safe for concurrent use,
// though in the single-threaded debug loop it is only ever touched from the
// load-module hook.
type Cache struct {
	mu                      sync.Mutex
	modules                 map[string]*Module
	mapper                  *linemap.Mapper
	instrumentationDisabled bool
	baseDir                 string
}

// NewCache returns an empty cache that registers probes with mapper. baseDir
// is the directory module source files are read from relative to; an empty
// baseDir means the current working directory.
func NewCache(mapper *linemap.Mapper, baseDir string) *Cache {
	return &Cache{
		modules: make(map[string]*Module),
		mapper:  mapper,
		baseDir: baseDir,
	}
}

// DisableInstrumentation bypasses the Instrumenter for every future load and
// disables the Line Mapper, so reverse lookups fall back to identity
// mapping. Already-cached modules are not retroactively changed.
func (c *Cache) DisableInstrumentation() {
	c.mu.Lock()
	c.instrumentationDisabled = true
	c.mu.Unlock()
	c.mapper.Disable()
}

// GetOrLoad returns the source text the VM should execute for name: a fresh
// copy of the cached instrumented (or, if disabled, original) text. ok is
// false when the source file does not exist; the caller must treat that as
// an import failure, not an exception.
func (c *Cache) GetOrLoad(name string) (source string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if m, cached := c.modules[name]; cached {
		return c.serve(m), true
	}

	lines, err := c.readLines(name)
	if err != nil {
		return "", false
	}

	m := &Module{Name: name, Original: lines}
	if c.instrumentationDisabled {
		m.Instrumented = append([]string(nil), lines...)
	} else {
		m.Instrumented = instrument.Instrument(name, lines, c.mapper)
	}

	c.modules[name] = m
	return c.serve(m), true
}

// Get returns a previously loaded module without touching the filesystem,
// used by the UI to re-display a module's original source.
func (c *Cache) Get(name string) (*Module, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.modules[name]
	return m, ok
}

func (c *Cache) serve(m *Module) string {
	return strings.Join(m.Instrumented, "\n") + "\n"
}

func (c *Cache) readLines(name string) ([]string, error) {
	path := name + Extension
	if c.baseDir != "" {
		path = c.baseDir + string(os.PathSeparator) + path
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module %s: %w", name, err)
	}
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return []string{}, nil
	}
	return strings.Split(text, "\n"), nil
}
