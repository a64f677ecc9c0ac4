// Package disasm implements the disassembler pretty-printer external
// collaborator (§6): it walks a compiled program with
// bytecode.DecodeOne and renders one line per instruction, annotated
// with its own address so jump/call targets are easy to cross-reference
// by eye.
package disasm

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"banana/internal/bytecode"
)

// Options controls rendering; Color forces ANSI highlighting on/off
// regardless of whether w is a TTY (the CLI driver decides that).
type Options struct {
	Color bool
}

// Disassemble decodes program fully and writes one annotated line per
// instruction to w, followed by a byte-count footer.
func Disassemble(w io.Writer, program []byte, opts Options) error {
	addrColor := color.New(color.FgCyan)
	opColor := color.New(color.FgYellow, color.Bold)
	if !opts.Color {
		addrColor.DisableColor()
		opColor.DisableColor()
	}

	ip := 0
	for ip < len(program) {
		addr := ip
		instr, err := bytecode.DecodeOne(program, &ip)
		if err != nil {
			return err
		}
		line := fmt.Sprintf("%s  %s",
			addrColor.Sprintf("%06d", addr),
			opColor.Sprintf("%-14s", instr.Op()))
		if rendered := operandText(instr); rendered != "" {
			line += rendered
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "; %s bytes, %d instructions\n",
		humanize.Comma(int64(len(program))), instructionCount(program))
	return err
}

// operandText renders an instruction's payload for humans; it
// type-switches on the concrete struct types bytecode exposes rather
// than re-decoding, since Disassemble already has the parsed value.
func operandText(instr bytecode.Instruction) string {
	switch v := instr.(type) {
	case bytecode.Push:
		return v.Value.String()
	case bytecode.Jump:
		return fmt.Sprintf("-> %06d", v.Addr)
	case bytecode.JumpIf:
		return fmt.Sprintf("-> %06d", v.Addr)
	case bytecode.JumpIfFalse:
		return fmt.Sprintf("-> %06d", v.Addr)
	case bytecode.Call:
		return fmt.Sprintf("-> %06d, %d arg(s)", v.Addr, v.ParamCount)
	case bytecode.Ret:
		return fmt.Sprintf("%d value(s)", v.ValueCount)
	case bytecode.Store:
		return fmt.Sprintf("local[%d]", v.LocalIndex)
	case bytecode.Load:
		return fmt.Sprintf("local[%d]", v.LocalIndex)
	case bytecode.Convert:
		return v.Kind.String()
	case bytecode.Native:
		return strings.TrimSpace(v.Name)
	}
	return ""
}

// instructionCount re-walks the stream purely to report a total in the
// footer; cheap relative to the single pass already spent rendering.
func instructionCount(program []byte) int {
	n := 0
	ip := 0
	for ip < len(program) {
		if _, err := bytecode.DecodeOne(program, &ip); err != nil {
			break
		}
		n++
	}
	return n
}
