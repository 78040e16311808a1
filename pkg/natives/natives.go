// Package natives scans a directory for platform shared-library extensions
// and binds their exported foreign methods into a vmhost.Host, the way the
// original debugger's foreigns.cpp walks a directory for .so/.dll/.dylib
// files and loads each with dlopen/LoadLibrary.
package natives

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/amirgeva/gubed/pkg/logging"
	"github.com/amirgeva/gubed/pkg/metrics"
	"github.com/amirgeva/gubed/pkg/vmhost"
)

// Extension is the platform's shared-library suffix, the way the original
// picked its shared_extension constant at compile time between WIN32 and
// __linux__.
var Extension = func() string {
	switch runtime.GOOS {
	case "windows":
		return ".dll"
	case "darwin":
		return ".dylib"
	default:
		return ".so"
	}
}()

// Module is one loaded native extension: its path and its three required
// exports.
type Module struct {
	Path       string
	Initialize func(vmHandle interface{}) error
	Shutdown   func()
	GetFunc    func(name string) (vmhost.ForeignMethodFn, bool)
}

// Registry holds every successfully loaded native extension for the
// process lifetime, in load order (so Shutdown can run them in reverse).
type Registry struct {
	modules []*Module
	Metrics *metrics.Metrics
	Logger  logging.FieldLogger
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// LoadDir scans dir for shared libraries and loads each one. A library that
// fails to load is skipped and logged; it is not a fatal error for the
// debug session, matching the original's "Invalid module" diagnostic rather
// than aborting the whole scan.
func (r *Registry) LoadDir(dir string, vmHandle interface{}) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan extensions dir %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if filepath.Ext(e.Name()) == Extension {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	for _, path := range paths {
		mod, err := loadModule(path)
		if err != nil {
			if r.Logger != nil {
				r.Logger.WarnWithFields("failed to load native extension", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
			}
			if r.Metrics != nil {
				r.Metrics.RecordExtensionFailed()
			}
			continue
		}
		if err := mod.Initialize(vmHandle); err != nil {
			if r.Logger != nil {
				r.Logger.WarnWithFields("native extension Initialize failed", map[string]interface{}{
					"path":  path,
					"error": err.Error(),
				})
			}
			if r.Metrics != nil {
				r.Metrics.RecordExtensionFailed()
			}
			continue
		}
		r.modules = append(r.modules, mod)
		if r.Metrics != nil {
			r.Metrics.RecordExtensionLoaded(path)
		}
	}
	return nil
}

// Resolve looks up a foreign method by its bind key across every loaded
// extension, first match wins.
func (r *Registry) Resolve(key string) (vmhost.ForeignMethodFn, bool) {
	for _, m := range r.modules {
		if fn, ok := m.GetFunc(key); ok {
			return fn, true
		}
	}
	return nil, false
}

// Shutdown calls every loaded extension's Shutdown hook in reverse load
// order, matching the original's destructor-unwind order.
func (r *Registry) Shutdown() {
	for i := len(r.modules) - 1; i >= 0; i-- {
		r.modules[i].Shutdown()
	}
	r.modules = nil
}
