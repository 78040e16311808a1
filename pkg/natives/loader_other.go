//go:build !linux

package natives

import "fmt"

// loadModule always fails on platforms where Go's plugin package cannot
// open shared libraries (everything but linux today). The directory scan
// still runs so the failure is reported per-library rather than aborting
// extension loading outright.
func loadModule(path string) (*Module, error) {
	return nil, fmt.Errorf("%s: native extensions are not supported on this platform", path)
}
