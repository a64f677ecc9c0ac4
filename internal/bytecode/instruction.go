package bytecode

import (
	"encoding/binary"
	"fmt"

	"banana/internal/value"
)

// Machine is the narrow surface an Instruction needs from the VM to
// perform its effect. internal/vm.VM implements this; bytecode itself
// never imports internal/vm, keeping the dependency DAG one-directional.
type Machine interface {
	PushOperand(value.Value)
	PopOperand() value.Value
	SetLocal(index uint64, v value.Value)
	GetLocal(index uint64) value.Value
	Jump(addr uint64)
	Call(addr uint64, paramCount byte) error
	Return(valueCount byte) error
	Print(value.Value) error
	CallNative(name string) error
	Halt()
}

// Instruction is one decoded bytecode operation: it knows how to
// serialize itself (Write), how many bytes it occupies (Size), and
// how to perform its effect against a Machine (Execute).
type Instruction interface {
	Op() OpCode
	Write(buf []byte) []byte
	Size() int
	Execute(m Machine) error
}

// ---- zero-payload instructions (size 1: the opcode byte alone) ----

type simple OpCode

func (s simple) Op() OpCode          { return OpCode(s) }
func (s simple) Write(b []byte) []byte { return append(b, byte(s)) }
func (s simple) Size() int           { return 1 }

func (s simple) Execute(m Machine) error {
	switch OpCode(s) {
	case OpAdd:
		a, b := binaryOperands(m)
		m.PushOperand(value.Add(a, b))
	case OpSub:
		a, b := binaryOperands(m)
		m.PushOperand(value.Sub(a, b))
	case OpMul:
		a, b := binaryOperands(m)
		m.PushOperand(value.Mul(a, b))
	case OpDiv:
		a, b := binaryOperands(m)
		m.PushOperand(value.Div(a, b))
	case OpMod:
		a, b := binaryOperands(m)
		m.PushOperand(value.Mod(a, b))
	case OpBinAnd:
		a, b := binaryOperands(m)
		m.PushOperand(value.BinAnd(a, b))
	case OpBinOr:
		a, b := binaryOperands(m)
		m.PushOperand(value.BinOr(a, b))
	case OpXor:
		a, b := binaryOperands(m)
		m.PushOperand(value.Xor(a, b))
	case OpBinNot:
		a := m.PopOperand()
		m.PushOperand(value.BinNot(a))
	case OpLt:
		a, b := binaryOperands(m)
		m.PushOperand(value.Lt(a, b))
	case OpLte:
		a, b := binaryOperands(m)
		m.PushOperand(value.Lte(a, b))
	case OpGt:
		a, b := binaryOperands(m)
		m.PushOperand(value.Gt(a, b))
	case OpGte:
		a, b := binaryOperands(m)
		m.PushOperand(value.Gte(a, b))
	case OpEq:
		a, b := binaryOperands(m)
		m.PushOperand(value.Eq(a, b))
	case OpNotEq:
		a, b := binaryOperands(m)
		m.PushOperand(value.NotEq(a, b))
	case OpBoolAnd:
		a, b := binaryOperands(m)
		m.PushOperand(value.BoolAnd(a, b))
	case OpBoolOr:
		a, b := binaryOperands(m)
		m.PushOperand(value.BoolOr(a, b))
	case OpBoolNot:
		a := m.PopOperand()
		m.PushOperand(value.BoolNot(a))
	case OpPrint:
		v := m.PopOperand()
		return m.Print(v)
	case OpHalt:
		m.Halt()
	default:
		return fmt.Errorf("bytecode: %v is not a zero-payload instruction", OpCode(s))
	}
	return nil
}

// binaryOperands pops the right then left operand so that, for
// …, a, b on the stack, Execute computes a op b (stack before → after
// per §4.F: "…, a, b → …, (a op b)").
func binaryOperands(m Machine) (a, b value.Value) {
	b = m.PopOperand()
	a = m.PopOperand()
	return a, b
}

func newSimple(op OpCode) Instruction { return simple(op) }

// ---- Push ----

type Push struct{ Value value.Value }

func (Push) Op() OpCode { return OpPush }
func (p Push) Write(buf []byte) []byte {
	buf = append(buf, byte(OpPush))
	return p.Value.Write(buf)
}
func (p Push) Size() int { return 1 + p.Value.Size() }
func (p Push) Execute(m Machine) error {
	m.PushOperand(p.Value)
	return nil
}

// ---- Jump family ----

type Jump struct{ Addr uint64 }

func (Jump) Op() OpCode { return OpJump }
func (j Jump) Write(buf []byte) []byte {
	buf = append(buf, byte(OpJump))
	return binary.LittleEndian.AppendUint64(buf, j.Addr)
}
func (j Jump) Size() int { return 9 }
func (j Jump) Execute(m Machine) error {
	m.Jump(j.Addr)
	return nil
}

type JumpIf struct{ Addr uint64 }

func (JumpIf) Op() OpCode { return OpJumpIf }
func (j JumpIf) Write(buf []byte) []byte {
	buf = append(buf, byte(OpJumpIf))
	return binary.LittleEndian.AppendUint64(buf, j.Addr)
}
func (j JumpIf) Size() int { return 9 }
func (j JumpIf) Execute(m Machine) error {
	if m.PopOperand().Truthy() {
		m.Jump(j.Addr)
	}
	return nil
}

type JumpIfFalse struct{ Addr uint64 }

func (JumpIfFalse) Op() OpCode { return OpJumpIfFalse }
func (j JumpIfFalse) Write(buf []byte) []byte {
	buf = append(buf, byte(OpJumpIfFalse))
	return binary.LittleEndian.AppendUint64(buf, j.Addr)
}
func (j JumpIfFalse) Size() int { return 9 }
func (j JumpIfFalse) Execute(m Machine) error {
	if !m.PopOperand().Truthy() {
		m.Jump(j.Addr)
	}
	return nil
}

// ---- Call / Ret ----

type Call struct {
	Addr        uint64
	ParamCount  byte
}

func (Call) Op() OpCode { return OpCall }
func (c Call) Write(buf []byte) []byte {
	buf = append(buf, byte(OpCall))
	buf = binary.LittleEndian.AppendUint64(buf, c.Addr)
	return append(buf, c.ParamCount)
}
func (c Call) Size() int { return 1 + 8 + 1 }
func (c Call) Execute(m Machine) error {
	return m.Call(c.Addr, c.ParamCount)
}

type Ret struct{ ValueCount byte }

func (Ret) Op() OpCode { return OpRet }
func (r Ret) Write(buf []byte) []byte {
	return append(buf, byte(OpRet), r.ValueCount)
}
func (r Ret) Size() int { return 2 }
func (r Ret) Execute(m Machine) error {
	return m.Return(r.ValueCount)
}

// ---- Store / Load ----

type Store struct{ LocalIndex uint64 }

func (Store) Op() OpCode { return OpStore }
func (s Store) Write(buf []byte) []byte {
	buf = append(buf, byte(OpStore))
	return binary.LittleEndian.AppendUint64(buf, s.LocalIndex)
}
func (s Store) Size() int { return 9 }
func (s Store) Execute(m Machine) error {
	m.SetLocal(s.LocalIndex, m.PopOperand())
	return nil
}

type Load struct{ LocalIndex uint64 }

func (Load) Op() OpCode { return OpLoad }
func (l Load) Write(buf []byte) []byte {
	buf = append(buf, byte(OpLoad))
	return binary.LittleEndian.AppendUint64(buf, l.LocalIndex)
}
func (l Load) Size() int { return 9 }
func (l Load) Execute(m Machine) error {
	m.PushOperand(m.GetLocal(l.LocalIndex))
	return nil
}

// ---- Convert ----

type Convert struct{ Kind value.Kind }

func (Convert) Op() OpCode { return OpConvert }
func (c Convert) Write(buf []byte) []byte {
	return append(buf, byte(OpConvert), byte(c.Kind))
}
func (c Convert) Size() int { return 2 }
func (c Convert) Execute(m Machine) error {
	m.PushOperand(value.Convert(m.PopOperand(), c.Kind))
	return nil
}

// ---- Native ----

type Native struct{ Name string }

func (Native) Op() OpCode { return OpNative }
func (n Native) Write(buf []byte) []byte {
	buf = append(buf, byte(OpNative))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(n.Name)))
	return append(buf, n.Name...)
}
func (n Native) Size() int { return 1 + 4 + len(n.Name) }
func (n Native) Execute(m Machine) error {
	return m.CallNative(n.Name)
}

// Convenience constructors for the zero-payload opcodes, used by the
// codegen so call sites read like the mnemonics themselves.
var (
	NewAdd         = func() Instruction { return newSimple(OpAdd) }
	NewSub         = func() Instruction { return newSimple(OpSub) }
	NewMul         = func() Instruction { return newSimple(OpMul) }
	NewDiv         = func() Instruction { return newSimple(OpDiv) }
	NewMod         = func() Instruction { return newSimple(OpMod) }
	NewBinAnd      = func() Instruction { return newSimple(OpBinAnd) }
	NewBinOr       = func() Instruction { return newSimple(OpBinOr) }
	NewXor         = func() Instruction { return newSimple(OpXor) }
	NewBinNot      = func() Instruction { return newSimple(OpBinNot) }
	NewLt          = func() Instruction { return newSimple(OpLt) }
	NewLte         = func() Instruction { return newSimple(OpLte) }
	NewGt          = func() Instruction { return newSimple(OpGt) }
	NewGte         = func() Instruction { return newSimple(OpGte) }
	NewEq          = func() Instruction { return newSimple(OpEq) }
	NewNotEq       = func() Instruction { return newSimple(OpNotEq) }
	NewBoolAnd     = func() Instruction { return newSimple(OpBoolAnd) }
	NewBoolOr      = func() Instruction { return newSimple(OpBoolOr) }
	NewBoolNot     = func() Instruction { return newSimple(OpBoolNot) }
	NewPrint       = func() Instruction { return newSimple(OpPrint) }
	NewHalt        = func() Instruction { return newSimple(OpHalt) }
)
