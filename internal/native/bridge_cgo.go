//go:build cgo

package native

/*
#cgo linux LDFLAGS: -ldl -lffi
#cgo darwin LDFLAGS: -lffi

#include <dlfcn.h>
#include <ffi.h>
#include <stdlib.h>

// banana_native_descriptor mirrors the original CFunction contract:
// a qualified name, a return kind, an ordered parameter kind list
// (both drawn from the closed {Bool, Char, Int, Long} set, encoded
// 0..3 matching value.Kind's byte values), and a function pointer.
typedef struct {
    char* name;
    unsigned char return_kind;
    unsigned char param_count;
    unsigned char* param_kinds;
    void* fn;
} banana_native_descriptor;

// get_classes is the shared library's sole required export, called
// through this banana_get_classes_fn type: it fills out and count, and the loader owns the returned memory
// until it explicitly releases it (it never does today — handles and
// their descriptors live for the process lifetime, per §5).
typedef void (*banana_get_classes_fn)(banana_native_descriptor** out, int* count);

static void* banana_dlopen(const char* path) {
    return dlopen(path, RTLD_NOW);
}

static void* banana_dlsym_get_classes(void* handle) {
    return dlsym(handle, "get_classes");
}

// banana_invoke_get_classes calls the library's get_classes export
// through its raw symbol pointer; Go cannot call a C function pointer
// value directly, so this thin shim does it on the C side.
static void banana_invoke_get_classes(void* sym, banana_native_descriptor** out, int* count) {
    banana_get_classes_fn fn = (banana_get_classes_fn) sym;
    fn(out, count);
}

static ffi_type* banana_ffi_type_for_kind(unsigned char kind) {
    switch (kind) {
    case 0: return &ffi_type_schar;  // Bool
    case 1: return &ffi_type_schar;  // Char
    case 2: return &ffi_type_sint;   // Int
    default: return &ffi_type_slong; // Long
    }
}

// banana_call_ffi prepares a CIF for the given arg/return kinds and
// invokes fn, writing the raw return bytes into out (sized for the
// widest possible kind, Long).
static int banana_call_ffi(void* fn, unsigned char return_kind,
                            unsigned char* param_kinds, int param_count,
                            void** arg_values, long long* out) {
    ffi_type* arg_types[16];
    if (param_count > 16) {
        return 0;
    }
    for (int i = 0; i < param_count; i++) {
        arg_types[i] = banana_ffi_type_for_kind(param_kinds[i]);
    }
    ffi_type* ret_type = banana_ffi_type_for_kind(return_kind);

    ffi_cif cif;
    if (ffi_prep_cif(&cif, FFI_DEFAULT_ABI, param_count, ret_type, arg_types) != FFI_OK) {
        return 0;
    }

    union { signed char c; int i; long l; } result;
    ffi_call(&cif, (void (*)(void))fn, &result, arg_values);

    switch (return_kind) {
    case 0:
    case 1:
        *out = (long long) result.c;
        break;
    case 2:
        *out = (long long) result.i;
        break;
    default:
        *out = (long long) result.l;
        break;
    }
    return 1;
}
*/
import "C"

import (
	"unsafe"

	"banana/internal/diagnostics"
	"banana/internal/value"
)

// LoadLibrary dlopen's path, calls its get_classes export, and
// registers every descriptor it returns (last-registration wins on a
// duplicate qualified name, per §4.H).
func (r *Registry) LoadLibrary(path string) error {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	handle := C.banana_dlopen(cpath)
	if handle == nil {
		return diagnostics.New(diagnostics.RuntimeError, 0, "failed to load native library %q", path)
	}
	sym := C.banana_dlsym_get_classes(handle)
	if sym == nil {
		return diagnostics.New(diagnostics.RuntimeError, 0, "native library %q does not export get_classes", path)
	}

	var cdescs *C.banana_native_descriptor
	var count C.int
	C.banana_invoke_get_classes(sym, &cdescs, &count)

	descs := unsafe.Slice(cdescs, int(count))
	for _, d := range descs {
		name := C.GoString(d.name)
		kinds := unsafe.Slice(d.param_kinds, int(d.param_count))
		params := make([]value.Kind, len(kinds))
		for i, k := range kinds {
			params[i] = value.Kind(k)
		}
		r.byName[name] = &Descriptor{
			QualifiedName: name,
			ReturnType:    value.Kind(d.return_kind),
			ParamTypes:    params,
			symbol:        uintptr(d.fn),
		}
	}
	r.handles = append(r.handles, uintptr(unsafe.Pointer(handle)))
	return nil
}

// callThroughFFI marshals args to their declared C types and invokes
// the native function via libffi using a CIF built from the
// descriptor's declared return and parameter kinds.
func callThroughFFI(d *Descriptor, args []value.Value) (value.Value, error) {
	if len(args) != len(d.ParamTypes) {
		return value.Value{}, diagnostics.New(diagnostics.RuntimeError, 0, "native %q expects %d argument(s), got %d", d.QualifiedName, len(d.ParamTypes), len(args))
	}

	paramKinds := make([]C.uchar, len(d.ParamTypes))
	argValues := make([]unsafe.Pointer, len(args))
	// Each argument is boxed into its own C-allocated scalar so libffi
	// can take its address; freed once the call returns.
	boxes := make([]unsafe.Pointer, len(args))
	defer func() {
		for _, b := range boxes {
			if b != nil {
				C.free(b)
			}
		}
	}()

	for i, a := range args {
		paramKinds[i] = C.uchar(d.ParamTypes[i])
		switch d.ParamTypes[i] {
		case value.KindBool:
			b := (*C.schar)(C.malloc(1))
			if a.Truthy() {
				*b = 1
			} else {
				*b = 0
			}
			boxes[i] = unsafe.Pointer(b)
		case value.KindChar:
			b := (*C.schar)(C.malloc(1))
			*b = C.schar(a.Char)
			boxes[i] = unsafe.Pointer(b)
		case value.KindInt:
			b := (*C.int)(C.malloc(C.size_t(unsafe.Sizeof(C.int(0)))))
			*b = C.int(a.Int)
			boxes[i] = unsafe.Pointer(b)
		default: // KindLong
			b := (*C.long)(C.malloc(C.size_t(unsafe.Sizeof(C.long(0)))))
			*b = C.long(a.Long)
			boxes[i] = unsafe.Pointer(b)
		}
		argValues[i] = boxes[i]
	}

	var out C.longlong
	var argPtr *unsafe.Pointer
	if len(argValues) > 0 {
		argPtr = &argValues[0]
	}
	var paramPtr *C.uchar
	if len(paramKinds) > 0 {
		paramPtr = &paramKinds[0]
	}

	ok := C.banana_call_ffi(
		unsafe.Pointer(d.symbol),
		C.uchar(d.ReturnType),
		paramPtr,
		C.int(len(d.ParamTypes)),
		argPtr,
		(*C.longlong)(unsafe.Pointer(&out)),
	)
	if ok == 0 {
		return value.Value{}, diagnostics.New(diagnostics.RuntimeError, 0, "failed to prepare call to native %q", d.QualifiedName)
	}

	n := int64(out)
	switch d.ReturnType {
	case value.KindBool:
		return value.NewBool(n != 0), nil
	case value.KindChar:
		return value.NewChar(int8(n)), nil
	case value.KindInt:
		return value.NewInt(int32(n)), nil
	default:
		return value.NewLong(n), nil
	}
}

