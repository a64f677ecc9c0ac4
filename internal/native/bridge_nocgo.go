//go:build !cgo

package native

import (
	"banana/internal/diagnostics"
	"banana/internal/value"
)

// LoadLibrary is unavailable in a cgo-disabled build: the foreign
// bridge requires dlopen/libffi, both C ABI facilities with no pure-Go
// equivalent in this toolchain.
func (r *Registry) LoadLibrary(path string) error {
	return diagnostics.New(diagnostics.RuntimeError, 0, "native library loading requires a cgo-enabled build (CGO_ENABLED=1)")
}

func callThroughFFI(d *Descriptor, args []value.Value) (value.Value, error) {
	return value.Value{}, diagnostics.New(diagnostics.RuntimeError, 0, "native calls require a cgo-enabled build (CGO_ENABLED=1)")
}
