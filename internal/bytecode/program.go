package bytecode

import (
	"encoding/binary"
	"fmt"

	"banana/internal/value"
)

// Encode serializes a full instruction list to its flat byte-stream
// form; this is the counterpart to Decode and is what the codegen
// calls once after emission finishes.
func Encode(instrs []Instruction) []byte {
	buf := make([]byte, 0, 64)
	for _, in := range instrs {
		buf = in.Write(buf)
	}
	return buf
}

// Decode walks an entire byte stream into an ordered instruction list.
// It is used by the disassembler and by round-trip tests; the VM
// itself decodes one instruction at a time from its own ip (see
// DecodeOne) so it never has to materialize the whole program.
func Decode(buf []byte) ([]Instruction, error) {
	var out []Instruction
	ip := 0
	for ip < len(buf) {
		in, err := DecodeOne(buf, &ip)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}

// DecodeOne decodes a single instruction starting at buf[*ip] (the
// opcode byte) and advances *ip past its payload.
func DecodeOne(buf []byte, ip *int) (Instruction, error) {
	if *ip < 0 || *ip >= len(buf) {
		return nil, fmt.Errorf("bytecode: ip %d out of range (len %d)", *ip, len(buf))
	}
	op := OpCode(buf[*ip])
	*ip++
	switch op {
	case OpAdd, OpSub, OpMul, OpDiv, OpMod, OpBinAnd, OpBinOr, OpXor, OpBinNot,
		OpLt, OpLte, OpGt, OpGte, OpEq, OpNotEq, OpBoolAnd, OpBoolOr, OpBoolNot,
		OpPrint, OpHalt:
		return simple(op), nil
	case OpPush:
		v := value.Read(buf, ip)
		return Push{Value: v}, nil
	case OpJump:
		addr := readU64(buf, ip)
		return Jump{Addr: addr}, nil
	case OpJumpIf:
		addr := readU64(buf, ip)
		return JumpIf{Addr: addr}, nil
	case OpJumpIfFalse:
		addr := readU64(buf, ip)
		return JumpIfFalse{Addr: addr}, nil
	case OpCall:
		addr := readU64(buf, ip)
		pc := buf[*ip]
		*ip++
		return Call{Addr: addr, ParamCount: pc}, nil
	case OpRet:
		vc := buf[*ip]
		*ip++
		return Ret{ValueCount: vc}, nil
	case OpStore:
		idx := readU64(buf, ip)
		return Store{LocalIndex: idx}, nil
	case OpLoad:
		idx := readU64(buf, ip)
		return Load{LocalIndex: idx}, nil
	case OpConvert:
		k := value.Kind(buf[*ip])
		*ip++
		return Convert{Kind: k}, nil
	case OpNative:
		length := binary.LittleEndian.Uint32(buf[*ip : *ip+4])
		*ip += 4
		name := string(buf[*ip : *ip+int(length)])
		*ip += int(length)
		return Native{Name: name}, nil
	default:
		return nil, fmt.Errorf("bytecode: unknown opcode %d at offset %d", op, *ip-1)
	}
}

func readU64(buf []byte, ip *int) uint64 {
	v := binary.LittleEndian.Uint64(buf[*ip : *ip+8])
	*ip += 8
	return v
}
