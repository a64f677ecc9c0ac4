// Package value implements banana's tagged runtime value: a small
// closed set of integer-ish kinds shared by the parser's static type
// checker, the codegen, and the VM.
package value

import (
	"encoding/binary"
	"fmt"
)

// Kind discriminates the four value representations the source
// language supports. The zero value is KindBool, so always construct
// values through the New* helpers rather than a bare Value{}.
type Kind byte

const (
	KindBool Kind = iota
	KindChar
	KindInt
	KindLong
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindChar:
		return "char"
	case KindInt:
		return "int"
	case KindLong:
		return "long"
	default:
		return fmt.Sprintf("Kind(%d)", byte(k))
	}
}

// Size returns the number of payload bytes a value of this kind
// occupies when serialized, not counting the leading kind byte.
func (k Kind) Size() int {
	switch k {
	case KindBool, KindChar:
		return 1
	case KindInt:
		return 4
	case KindLong:
		return 8
	default:
		panic(fmt.Sprintf("value: unknown kind %v", k))
	}
}

// Value is a tagged union over {Bool, Char, Int, Long}. Only the field
// matching Kind is meaningful; the others are left at zero. Values are
// small and copied by value throughout the toolchain.
type Value struct {
	Kind Kind
	Bool bool
	Char int8
	Int  int32
	Long int64
}

func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }
func NewChar(c int8) Value { return Value{Kind: KindChar, Char: c} }
func NewInt(i int32) Value { return Value{Kind: KindInt, Int: i} }
func NewLong(l int64) Value { return Value{Kind: KindLong, Long: l} }

// AsInt64 widens any kind to its int64 representation; used by the
// promotion/arithmetic helpers below.
func (v Value) AsInt64() int64 {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return 1
		}
		return 0
	case KindChar:
		return int64(v.Char)
	case KindInt:
		return int64(v.Int)
	case KindLong:
		return v.Long
	default:
		panic(fmt.Sprintf("value: unknown kind %v", v.Kind))
	}
}

// Truthy implements the "accept any operand via implicit truthiness"
// rule parser §4.D relies on for boolean contexts.
func (v Value) Truthy() bool {
	return v.AsInt64() != 0
}

// String renders the value as text: numeric kinds (Char included)
// print their decimal value, Bool prints true/false. The VM's Print
// opcode uses it for Bool, Int and Long, and writes a Char as its raw
// byte instead; the disassembler uses it for Push operands.
func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		if v.Bool {
			return "true"
		}
		return "false"
	case KindChar:
		return fmt.Sprintf("%d", v.Char)
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindLong:
		return fmt.Sprintf("%d", v.Long)
	default:
		panic(fmt.Sprintf("value: unknown kind %v", v.Kind))
	}
}

// promote returns the common kind two operands must be coerced to
// before an arithmetic/bitwise operation, per the §4.A table.
func promote(a, b Kind) Kind {
	if a < b {
		return b
	}
	return a
}

func coerce(v Value, k Kind) Value {
	switch k {
	case KindBool:
		return NewBool(v.Truthy())
	case KindChar:
		return NewChar(int8(v.AsInt64()))
	case KindInt:
		return NewInt(int32(v.AsInt64()))
	case KindLong:
		return NewLong(v.AsInt64())
	default:
		panic(fmt.Sprintf("value: unknown kind %v", k))
	}
}

// Convert implements the explicit Convert(value, target) AST/opcode:
// truncate or widen between kinds by the standard integer conversion
// rules; Bool conversion is value != 0.
func Convert(v Value, target Kind) Value {
	return coerce(v, target)
}

// arith applies op in the promoted common kind and returns a value of
// that kind, per §4.A ("Bool op Bool for arithmetic stays Bool").
func arith(a, b Value, op func(x, y int64) int64) Value {
	k := promote(a.Kind, b.Kind)
	x, y := coerce(a, k).AsInt64(), coerce(b, k).AsInt64()
	return coerce(NewLong(op(x, y)), k)
}

func Add(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x + y }) }
func Sub(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x - y }) }
func Mul(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x * y }) }

// Div and Mod panic on division by zero; §4.A and §7 both leave this
// undefined ("fail loudly"), so the VM lets the panic surface as a
// fatal runtime error rather than trapping it into a value.
func Div(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 {
		if y == 0 {
			panic("division by zero")
		}
		return x / y
	})
}

func Mod(a, b Value) Value {
	return arith(a, b, func(x, y int64) int64 {
		if y == 0 {
			panic("modulo by zero")
		}
		return x % y
	})
}

func BinAnd(a, b Value) Value { return arith(a, b, func(x, y int64) int64 { return x & y }) }
func BinOr(a, b Value) Value  { return arith(a, b, func(x, y int64) int64 { return x | y }) }
func Xor(a, b Value) Value    { return arith(a, b, func(x, y int64) int64 { return x ^ y }) }

// BinNot is the unary bitwise-complement, computed in the operand's
// own kind (no promotion partner).
func BinNot(a Value) Value {
	return coerce(NewLong(^a.AsInt64()), a.Kind)
}

// cmp applies a comparison in the promoted common kind; comparisons
// always yield Bool regardless of the operand kinds (§4.A).
func cmp(a, b Value, op func(x, y int64) bool) Value {
	k := promote(a.Kind, b.Kind)
	x, y := coerce(a, k).AsInt64(), coerce(b, k).AsInt64()
	return NewBool(op(x, y))
}

func Lt(a, b Value) Value    { return cmp(a, b, func(x, y int64) bool { return x < y }) }
func Lte(a, b Value) Value   { return cmp(a, b, func(x, y int64) bool { return x <= y }) }
func Gt(a, b Value) Value    { return cmp(a, b, func(x, y int64) bool { return x > y }) }
func Gte(a, b Value) Value   { return cmp(a, b, func(x, y int64) bool { return x >= y }) }
func Eq(a, b Value) Value    { return cmp(a, b, func(x, y int64) bool { return x == y }) }
func NotEq(a, b Value) Value { return cmp(a, b, func(x, y int64) bool { return x != y }) }

// BoolAnd and BoolOr are the boolean operators, legal on any kind via
// truthiness, always yielding Bool.
func BoolAnd(a, b Value) Value { return NewBool(a.Truthy() && b.Truthy()) }
func BoolOr(a, b Value) Value  { return NewBool(a.Truthy() || b.Truthy()) }
func BoolNot(a Value) Value    { return NewBool(!a.Truthy()) }

// Size returns the number of bytes Write appends for this value,
// including the leading kind byte.
func (v Value) Size() int { return 1 + v.Kind.Size() }

// Write serializes the value as `kind byte` followed by the raw
// little-endian bytes of its payload (1/1/4/8 bytes).
func (v Value) Write(buf []byte) []byte {
	buf = append(buf, byte(v.Kind))
	switch v.Kind {
	case KindBool:
		if v.Bool {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case KindChar:
		buf = append(buf, byte(v.Char))
	case KindInt:
		buf = binary.LittleEndian.AppendUint32(buf, uint32(v.Int))
	case KindLong:
		buf = binary.LittleEndian.AppendUint64(buf, uint64(v.Long))
	default:
		panic(fmt.Sprintf("value: unknown kind %v", v.Kind))
	}
	return buf
}

// Read decodes a value starting at buf[*index] (the kind byte) and
// advances *index past it.
func Read(buf []byte, index *int) Value {
	k := Kind(buf[*index])
	*index++
	switch k {
	case KindBool:
		b := buf[*index] != 0
		*index++
		return NewBool(b)
	case KindChar:
		c := int8(buf[*index])
		*index++
		return NewChar(c)
	case KindInt:
		i := int32(binary.LittleEndian.Uint32(buf[*index : *index+4]))
		*index += 4
		return NewInt(i)
	case KindLong:
		l := int64(binary.LittleEndian.Uint64(buf[*index : *index+8]))
		*index += 8
		return NewLong(l)
	default:
		panic(fmt.Sprintf("value: unknown kind %v", k))
	}
}
