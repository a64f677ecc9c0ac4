package asmtext

import (
	"fmt"

	"banana/internal/bytecode"
	"banana/internal/value"
)

var rejectedMnemonics = map[string]bool{
	"dup":  true,
	"swap": true,
}

var simpleMnemonics = map[string]func() bytecode.Instruction{
	"add":     bytecode.NewAdd,
	"sub":     bytecode.NewSub,
	"mul":     bytecode.NewMul,
	"div":     bytecode.NewDiv,
	"mod":     bytecode.NewMod,
	"b_and":   bytecode.NewBinAnd,
	"b_or":    bytecode.NewBinOr,
	"xor":     bytecode.NewXor,
	"b_not":   bytecode.NewBinNot,
	"lt":      bytecode.NewLt,
	"lte":     bytecode.NewLte,
	"gt":      bytecode.NewGt,
	"gte":     bytecode.NewGte,
	"eq":      bytecode.NewEq,
	"not_eq":  bytecode.NewNotEq,
	"and":     bytecode.NewBoolAnd,
	"or":      bytecode.NewBoolOr,
	"not":     bytecode.NewBoolNot,
	"print":   bytecode.NewPrint,
	"halt":    bytecode.NewHalt,
}

// instructionSize reports how many bytes the line's instruction
// occupies, used by firstPass to compute label addresses without
// needing labels to already be resolved. printc is sugar for two
// instructions (Push(Char); Print), so it reports their combined size.
func instructionSize(l sourceLine) (uint64, error) {
	mnemonic, _ := fields(l)
	if rejectedMnemonics[mnemonic] {
		return 0, fmt.Errorf("asmtext: line %d: %q is not part of the instruction set (§4.F has no dup/swap opcode)", l.lineNo, mnemonic)
	}
	if _, ok := simpleMnemonics[mnemonic]; ok {
		return 1, nil
	}
	switch mnemonic {
	case "push":
		return uint64(2 + kindSize(l)), nil // opcode + kind byte + payload
	case "jump", "jump_if", "jump_if_false":
		return 9, nil
	case "call":
		return 10, nil
	case "ret":
		return 2, nil
	case "store", "load":
		return 9, nil
	case "printc":
		return 4, nil // Push(Char) (3 bytes) + Print (1 byte)
	}
	return 0, fmt.Errorf("asmtext: line %d: unknown mnemonic %q", l.lineNo, mnemonic)
}

func kindSize(l sourceLine) int {
	_, args := fields(l)
	if len(args) == 0 {
		return 8
	}
	switch args[0] {
	case "bool", "char":
		return 1
	case "int":
		return 4
	default:
		return 8
	}
}

func parseInstruction(l sourceLine, labels map[string]uint64) ([]bytecode.Instruction, error) {
	mnemonic, args := fields(l)

	if ctor, ok := simpleMnemonics[mnemonic]; ok {
		return []bytecode.Instruction{ctor()}, nil
	}

	switch mnemonic {
	case "push":
		if len(args) != 2 {
			return nil, fmt.Errorf("asmtext: line %d: push takes <kind> <literal>", l.lineNo)
		}
		kind, err := parseKind(args[0], l.lineNo)
		if err != nil {
			return nil, err
		}
		v, err := pushValue(kind, args[1], l.lineNo)
		if err != nil {
			return nil, err
		}
		return []bytecode.Instruction{bytecode.Push{Value: v}}, nil

	case "printc":
		if len(args) != 1 {
			return nil, fmt.Errorf("asmtext: line %d: printc takes one decimal char code", l.lineNo)
		}
		v, err := pushValue(value.KindChar, args[0], l.lineNo)
		if err != nil {
			return nil, err
		}
		return []bytecode.Instruction{bytecode.Push{Value: v}, bytecode.NewPrint()}, nil

	case "jump", "jump_if", "jump_if_false":
		if len(args) != 1 {
			return nil, fmt.Errorf("asmtext: line %d: %s takes one address operand", l.lineNo, mnemonic)
		}
		addr, err := resolveAddr(args[0], labels, l.lineNo)
		if err != nil {
			return nil, err
		}
		switch mnemonic {
		case "jump":
			return []bytecode.Instruction{bytecode.Jump{Addr: addr}}, nil
		case "jump_if":
			return []bytecode.Instruction{bytecode.JumpIf{Addr: addr}}, nil
		default:
			return []bytecode.Instruction{bytecode.JumpIfFalse{Addr: addr}}, nil
		}

	case "call":
		if len(args) != 2 {
			return nil, fmt.Errorf("asmtext: line %d: call takes <address> <paramCount>", l.lineNo)
		}
		addr, err := resolveAddr(args[0], labels, l.lineNo)
		if err != nil {
			return nil, err
		}
		pc, err := parseByteOperand(args[1], l.lineNo)
		if err != nil {
			return nil, err
		}
		return []bytecode.Instruction{bytecode.Call{Addr: addr, ParamCount: pc}}, nil

	case "ret":
		if len(args) != 1 {
			return nil, fmt.Errorf("asmtext: line %d: ret takes <valueCount>", l.lineNo)
		}
		vc, err := parseByteOperand(args[0], l.lineNo)
		if err != nil {
			return nil, err
		}
		return []bytecode.Instruction{bytecode.Ret{ValueCount: vc}}, nil

	case "store", "load":
		if len(args) != 1 {
			return nil, fmt.Errorf("asmtext: line %d: %s takes <localIndex>", l.lineNo, mnemonic)
		}
		idx, err := resolveAddr(args[0], labels, l.lineNo)
		if err != nil {
			return nil, err
		}
		if mnemonic == "store" {
			return []bytecode.Instruction{bytecode.Store{LocalIndex: idx}}, nil
		}
		return []bytecode.Instruction{bytecode.Load{LocalIndex: idx}}, nil
	}

	return nil, fmt.Errorf("asmtext: line %d: unknown mnemonic %q", l.lineNo, mnemonic)
}

func parseByteOperand(tok string, lineNo int) (byte, error) {
	n, err := resolveAddr(tok, nil, lineNo)
	if err != nil {
		return 0, err
	}
	if n > 255 {
		return 0, fmt.Errorf("asmtext: line %d: operand %d exceeds one byte", lineNo, n)
	}
	return byte(n), nil
}
