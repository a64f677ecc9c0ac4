// Package vm implements banana's stack machine: a byte-stream
// interpreter with per-call operand stacks and fixed-size local
// arrays, per §4.G.
package vm

import (
	"fmt"

	"banana/internal/bytecode"
	"banana/internal/diagnostics"
	"banana/internal/value"
)

// localSlots bounds each frame's local storage. It is generous enough
// for hand-written and generated example programs without making a
// runaway recursive program allocate unboundedly per call (§4.G).
const localSlots = 65536

// NativeCaller resolves and invokes a foreign routine by its qualified
// name. Arity reports how many operand-stack values to pop for name
// before calling Call (the VM has no other way to know a native's
// parameter count); Call receives them with index 0 as argument 1,
// i.e. the order they appear in the declared parameter list.
type NativeCaller interface {
	Arity(name string) (int, bool)
	Call(name string, args []value.Value) (value.Value, error)
}

// frame is one call's private storage: its own operand stack and a
// fixed local array, scoped exactly to the Call/Ret bracket (§5).
type frame struct {
	operand []value.Value
	locals  [localSlots]value.Value
}

func (f *frame) push(v value.Value) {
	f.operand = append(f.operand, v)
}

func (f *frame) pop() value.Value {
	if len(f.operand) == 0 {
		panic(diagnostics.New(diagnostics.RuntimeError, 0, "operand stack underflow"))
	}
	v := f.operand[len(f.operand)-1]
	f.operand = f.operand[:len(f.operand)-1]
	return v
}

// VM executes a flat banana bytecode stream. It implements
// bytecode.Machine so instructions can drive it without this package
// importing anything above bytecode in the dependency DAG.
type VM struct {
	program []byte
	ip      uint64
	running bool

	returnStack []uint64
	frames      []*frame

	natives NativeCaller
}

// New constructs a VM over program, ready to Run. natives may be nil
// if the program makes no Native calls.
func New(program []byte, natives NativeCaller) *VM {
	return &VM{program: program, natives: natives}
}

// Run executes from byte offset 0 until Halt or a fatal error.
func (vm *VM) Run() (err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(*diagnostics.Fatal); ok {
				err = f
				return
			}
			if msg, ok := r.(string); ok {
				err = diagnostics.New(diagnostics.RuntimeError, 0, "%s", msg)
				return
			}
			panic(r)
		}
	}()

	vm.ip = 0
	vm.running = true
	vm.frames = []*frame{{}}

	for vm.running {
		ip := int(vm.ip)
		instr, derr := bytecode.DecodeOne(vm.program, &ip)
		if derr != nil {
			return diagnostics.New(diagnostics.RuntimeError, 0, "%s", derr)
		}
		vm.ip = uint64(ip)
		if err := instr.Execute(vm); err != nil {
			return err
		}
	}
	return nil
}

func (vm *VM) top() *frame {
	return vm.frames[len(vm.frames)-1]
}

// --- bytecode.Machine -------------------------------------------------

func (vm *VM) PushOperand(v value.Value) { vm.top().push(v) }
func (vm *VM) PopOperand() value.Value   { return vm.top().pop() }

func (vm *VM) SetLocal(index uint64, v value.Value) {
	vm.boundsCheck(index)
	vm.top().locals[index] = v
}

func (vm *VM) GetLocal(index uint64) value.Value {
	vm.boundsCheck(index)
	return vm.top().locals[index]
}

func (vm *VM) boundsCheck(index uint64) {
	if index >= localSlots {
		panic(diagnostics.New(diagnostics.RuntimeError, 0, "local index %d exceeds frame capacity %d", index, localSlots))
	}
}

func (vm *VM) Jump(addr uint64) { vm.ip = addr }

// Call pushes the resume address, a fresh frame, and transfers
// paramCount values from the caller's operand stack into the callee's
// in the same relative order, so the callee sees its first parameter
// on top (§4.F).
func (vm *VM) Call(addr uint64, paramCount byte) error {
	caller := vm.top()
	if len(caller.operand) < int(paramCount) {
		return diagnostics.New(diagnostics.RuntimeError, 0, "call expects %d argument(s), found %d on stack", paramCount, len(caller.operand))
	}
	args := make([]value.Value, paramCount)
	copy(args, caller.operand[len(caller.operand)-int(paramCount):])
	caller.operand = caller.operand[:len(caller.operand)-int(paramCount)]

	vm.returnStack = append(vm.returnStack, vm.ip)
	callee := &frame{operand: args}
	vm.frames = append(vm.frames, callee)
	vm.ip = addr
	return nil
}

// Return pops valueCount results off the returning frame, discards the
// frame, and pushes the results onto the new top frame preserving
// relative order, then resumes at the saved return address.
func (vm *VM) Return(valueCount byte) error {
	callee := vm.top()
	if len(callee.operand) < int(valueCount) {
		return diagnostics.New(diagnostics.RuntimeError, 0, "return expects %d value(s), found %d on stack", valueCount, len(callee.operand))
	}
	results := make([]value.Value, valueCount)
	copy(results, callee.operand[len(callee.operand)-int(valueCount):])

	vm.frames = vm.frames[:len(vm.frames)-1]
	if len(vm.frames) == 0 {
		// main itself returned: nothing left to resume into.
		vm.running = false
		return nil
	}
	caller := vm.top()
	caller.operand = append(caller.operand, results...)

	n := len(vm.returnStack)
	vm.ip = vm.returnStack[n-1]
	vm.returnStack = vm.returnStack[:n-1]
	return nil
}

// Print writes a Char as its raw byte (so PrintString and the trailing
// newline of a print statement emit text) and every other kind in its
// String form.
func (vm *VM) Print(v value.Value) error {
	if v.Kind == value.KindChar {
		_, err := fmt.Print(string([]byte{byte(v.Char)}))
		return err
	}
	_, err := fmt.Print(v.String())
	return err
}

func (vm *VM) CallNative(name string) error {
	if vm.natives == nil {
		return diagnostics.New(diagnostics.RuntimeError, 0, "no native routines are registered (missing --lib?), called '%s'", name)
	}
	arity, ok := vm.natives.Arity(name)
	if !ok {
		return diagnostics.New(diagnostics.RuntimeError, 0, "no native routine registered for '%s'", name)
	}
	f := vm.top()
	if len(f.operand) < arity {
		return diagnostics.New(diagnostics.RuntimeError, 0, "native '%s' expects %d argument(s), found %d on stack", name, arity, len(f.operand))
	}
	args := make([]value.Value, arity)
	copy(args, f.operand[len(f.operand)-arity:])
	f.operand = f.operand[:len(f.operand)-arity]

	result, err := vm.natives.Call(name, args)
	if err != nil {
		return err
	}
	f.push(result)
	return nil
}

func (vm *VM) Halt() { vm.running = false }
