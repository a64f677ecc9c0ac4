package ast

import (
	"banana/internal/bytecode"
	"banana/internal/value"
)

// Function is a declared function's AST: its signature for call-site
// type checking (done in the parser) and its body for emission. The
// parser registers a Function before filling in its Params and Body,
// so that a recursive call inside the body can resolve it.
type Function struct {
	Name       string
	IsMain     bool
	Params     []*Variable
	ReturnType value.Kind
	Void       bool
	Body       *Block

	emittedAddress *uint64
}

// EmittedAddress reports the program address this function's body
// begins at, once Emit has run. There is no later pass that patches
// call sites: Call.Emit panics when the address is not yet set. The
// parser rejects calls to functions not yet declared, so in source
// order a function's Emit always runs before any call to it.
func (f *Function) EmittedAddress() (uint64, bool) {
	if f.emittedAddress == nil {
		return 0, false
	}
	return *f.emittedAddress, true
}

// SetEmittedAddress records the address Emit chose for this function's
// entry point. It is a programming error to call it twice.
func (f *Function) SetEmittedAddress(addr uint64) {
	if f.emittedAddress != nil {
		panic("codegen: function " + f.Name + " emitted more than once")
	}
	a := addr
	f.emittedAddress = &a
}

func (*Function) stmtNode() {}

// Emit lowers the function to bytecode. main is inlined at whatever
// address the emitter is already at (the program entry point, by
// construction of the parser always emitting main first among
// functions) with no guard jump, since control reaches it by falling
// into the start of the program rather than by a Call instruction.
// Every other function is preceded by a Jump that skips its body, so
// that straight-line emission order never accidentally executes a
// function's code as part of whatever precedes its declaration.
func (f *Function) Emit(e Emitter) {
	if f.IsMain {
		f.SetEmittedAddress(e.Addr())
		f.emitParamsAndBody(e)
		return
	}

	skipAt := e.Emit(bytecode.Jump{Addr: 0})
	f.SetEmittedAddress(e.Addr())
	f.emitParamsAndBody(e)
	e.Patch(skipAt+1, e.Addr())
}

// emitParamsAndBody stores incoming arguments (pushed by the caller in
// reverse order, per Call.Emit, so the first parameter is popped
// first) into their frame slots, then emits the body. A function whose
// body falls off the end without an explicit return gets a defensive
// empty Ret so the VM's call/return bookkeeping always balances.
func (f *Function) emitParamsAndBody(e Emitter) {
	for _, p := range f.Params {
		e.Emit(bytecode.Store{LocalIndex: p.LocalIndex})
	}
	f.Body.Emit(e)
	e.Emit(bytecode.Ret{ValueCount: 0})
}
