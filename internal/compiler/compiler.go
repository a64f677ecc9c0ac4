// Package compiler implements the concrete ast.Emitter: a byte-buffer
// codegen that streams each instruction's encoded form directly,
// tracking the cumulative offset as the program address (§4.E).
package compiler

import (
	"encoding/binary"

	"banana/internal/ast"
	"banana/internal/bytecode"
)

// Emitter is the single forward-pass codegen target. Addr always
// equals len(buf): banana's bytecode has no header, so the byte
// offset into the eventual program *is* the address.
type Emitter struct {
	buf []byte
}

var _ ast.Emitter = (*Emitter)(nil)

func (e *Emitter) Addr() uint64 { return uint64(len(e.buf)) }

func (e *Emitter) Emit(instr bytecode.Instruction) uint64 {
	addr := e.Addr()
	e.buf = instr.Write(e.buf)
	return addr
}

// Patch overwrites the 8-byte little-endian address payload starting
// at payloadOffset. Every patchable instruction (Jump, JumpIf,
// JumpIfFalse, Call) places its address payload immediately after its
// 1-byte opcode, so callers pass (address returned by Emit) + 1.
func (e *Emitter) Patch(payloadOffset uint64, target uint64) {
	binary.LittleEndian.PutUint64(e.buf[payloadOffset:payloadOffset+8], target)
}

// Bytes returns the accumulated program. Valid only after Compile has
// finished emitting the whole tree.
func (e *Emitter) Bytes() []byte { return e.buf }

// Compile lowers a parsed program's implicit main Function to a flat
// banana bytecode stream, appending a defensive trailing Halt per
// §4.E's program-root rule.
func Compile(main *ast.Function) []byte {
	e := &Emitter{}
	main.Emit(e)
	e.Emit(bytecode.NewHalt())
	return e.Bytes()
}
