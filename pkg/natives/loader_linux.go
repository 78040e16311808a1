//go:build linux

package natives

import (
	"fmt"
	"plugin"

	"github.com/amirgeva/gubed/pkg/vmhost"
)

// loadModule opens a Go plugin at path and resolves its three required
// exports, mirroring dlsym("Initialize")/dlsym("Shutdown")/
// dlsym("GetFunction") in the original's NativeModule constructor. All
// three must be present and of the expected signature or the module is
// rejected as invalid.
func loadModule(path string) (*Module, error) {
	p, err := plugin.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open plugin %s: %w", path, err)
	}

	initSym, err := p.Lookup("Initialize")
	if err != nil {
		return nil, fmt.Errorf("%s: no Initialize function found: %w", path, err)
	}
	initFn, ok := initSym.(func(interface{}) error)
	if !ok {
		return nil, fmt.Errorf("%s: Initialize has the wrong signature", path)
	}

	shutdownSym, err := p.Lookup("Shutdown")
	if err != nil {
		return nil, fmt.Errorf("%s: no Shutdown function found: %w", path, err)
	}
	shutdownFn, ok := shutdownSym.(func())
	if !ok {
		return nil, fmt.Errorf("%s: Shutdown has the wrong signature", path)
	}

	getSym, err := p.Lookup("GetFunction")
	if err != nil {
		return nil, fmt.Errorf("%s: no GetFunction found: %w", path, err)
	}
	getFn, ok := getSym.(func(string) (vmhost.ForeignMethodFn, bool))
	if !ok {
		return nil, fmt.Errorf("%s: GetFunction has the wrong signature", path)
	}

	return &Module{
		Path:       path,
		Initialize: initFn,
		Shutdown:   shutdownFn,
		GetFunc:    getFn,
	}, nil
}
