// Package native implements banana's foreign-function bridge:
// shared libraries are dlopen'd, each exports a `get_classes`-style
// descriptor table, and calls are dispatched through libffi since the
// callee's C signature is only known at load time.
package native

import (
	"banana/internal/value"
)

// Descriptor is a single registered native routine: its qualified
// name, declared signature, and an opaque handle the loader
// understands (the concrete cgo type lives in bridge_cgo.go).
type Descriptor struct {
	QualifiedName string
	ReturnType    value.Kind
	ParamTypes    []value.Kind
	symbol        uintptr
}

// Registry is the `qualified-name → descriptor` map the VM and parser
// both consult: the parser checks declared signatures against it
// before codegen, the VM's CallNative dispatches through it. Duplicate
// registrations overwrite (last wins), matching the original loader's
// single flat functions_by_hash map.
type Registry struct {
	byName  map[string]*Descriptor
	handles []uintptr
}

// NewRegistry returns an empty registry with no libraries loaded.
func NewRegistry() *Registry {
	return &Registry{byName: map[string]*Descriptor{}}
}

// Lookup implements parser.NativeSignatures.
func (r *Registry) Lookup(name string) (value.Kind, []value.Kind, bool) {
	d, ok := r.byName[name]
	if !ok {
		return 0, nil, false
	}
	return d.ReturnType, d.ParamTypes, true
}

// Arity implements vm.NativeCaller.
func (r *Registry) Arity(name string) (int, bool) {
	d, ok := r.byName[name]
	if !ok {
		return 0, false
	}
	return len(d.ParamTypes), true
}

// Call implements vm.NativeCaller: marshal args to the declared C
// types, invoke through the platform bridge, wrap the result.
func (r *Registry) Call(name string, args []value.Value) (value.Value, error) {
	d, ok := r.byName[name]
	if !ok {
		return value.Value{}, errNoSuchNative(name)
	}
	return callThroughFFI(d, args)
}
