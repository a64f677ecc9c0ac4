// Package asmtext implements the text-based assembler external
// collaborator described in §6: one instruction per line, opcode
// mnemonics followed by whitespace-separated operands, `.label` lines
// declaring jump targets resolved to absolute byte offsets in a
// second pass.
//
// Two mnemonics listed in §6's token set, `dup` and `swap`, have no
// corresponding opcode in §4.F's instruction table — the instruction
// set was never extended to include a stack-duplicate or stack-swap
// primitive. Rather than silently accept and drop them, Assemble
// rejects both with a clear diagnostic.
package asmtext

import (
	"fmt"
	"strconv"
	"strings"

	"banana/internal/bytecode"
	"banana/internal/value"
)

// Assemble lowers banana text assembly to a flat bytecode stream.
func Assemble(source string) ([]byte, error) {
	lines := splitLines(source)

	labels, instrLines, err := firstPass(lines)
	if err != nil {
		return nil, err
	}

	return secondPass(instrLines, labels)
}

type sourceLine struct {
	lineNo int
	text   string
}

func splitLines(source string) []sourceLine {
	var out []sourceLine
	for i, raw := range strings.Split(source, "\n") {
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		out = append(out, sourceLine{lineNo: i + 1, text: text})
	}
	return out
}

// firstPass walks every line once, computing each instruction's byte
// address by summing Size() as it goes (without actually encoding
// anything — operands referencing forward labels aren't resolvable
// yet) and recording label → address.
func firstPass(lines []sourceLine) (map[string]uint64, []sourceLine, error) {
	labels := map[string]uint64{}
	var instrLines []sourceLine
	var addr uint64

	for _, l := range lines {
		if strings.HasPrefix(l.text, ".") {
			name := strings.TrimPrefix(l.text, ".")
			if _, exists := labels[name]; exists {
				return nil, nil, fmt.Errorf("asmtext: line %d: label %q redeclared", l.lineNo, name)
			}
			labels[name] = addr
			continue
		}
		size, err := instructionSize(l)
		if err != nil {
			return nil, nil, err
		}
		addr += size
		instrLines = append(instrLines, l)
	}
	return labels, instrLines, nil
}

func secondPass(lines []sourceLine, labels map[string]uint64) ([]byte, error) {
	var instrs []bytecode.Instruction
	for _, l := range lines {
		parsed, err := parseInstruction(l, labels)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, parsed...)
	}
	return bytecode.Encode(instrs), nil
}

func fields(l sourceLine) (string, []string) {
	parts := strings.Fields(l.text)
	return parts[0], parts[1:]
}

func resolveAddr(operand string, labels map[string]uint64, lineNo int) (uint64, error) {
	if strings.HasPrefix(operand, ".") {
		name := strings.TrimPrefix(operand, ".")
		addr, ok := labels[name]
		if !ok {
			return 0, fmt.Errorf("asmtext: line %d: undefined label %q", lineNo, name)
		}
		return addr, nil
	}
	n, err := strconv.ParseUint(operand, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("asmtext: line %d: invalid address operand %q", lineNo, operand)
	}
	return n, nil
}

func parseKind(tok string, lineNo int) (value.Kind, error) {
	switch tok {
	case "bool":
		return value.KindBool, nil
	case "char":
		return value.KindChar, nil
	case "int":
		return value.KindInt, nil
	case "long":
		return value.KindLong, nil
	}
	return 0, fmt.Errorf("asmtext: line %d: unknown value kind %q", lineNo, tok)
}

func pushValue(kind value.Kind, literal string, lineNo int) (value.Value, error) {
	n, err := strconv.ParseInt(literal, 10, 64)
	if err != nil {
		return value.Value{}, fmt.Errorf("asmtext: line %d: invalid literal %q", lineNo, literal)
	}
	switch kind {
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
