package disasm

import (
	"bytes"
	"strings"
	"testing"

	"banana/internal/bytecode"
	"banana/internal/value"
)

func TestDisassembleRendersEveryInstruction(t *testing.T) {
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Push{Value: value.NewLong(2)},
		bytecode.Push{Value: value.NewLong(3)},
		bytecode.NewAdd(),
		bytecode.NewPrint(),
		bytecode.NewHalt(),
	})
	var buf bytes.Buffer
	if err := Disassemble(&buf, prog, Options{Color: false}); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"PUSH", "ADD", "PRINT", "HALT", "bytes"} {
		if !strings.Contains(strings.ToUpper(out), strings.ToUpper(want)) {
			t.Errorf("expected output to mention %q, got:\n%s", want, out)
		}
	}
}

func TestDisassembleAnnotatesJumpTargets(t *testing.T) {
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Jump{Addr: 9},
		bytecode.NewHalt(),
	})
	var buf bytes.Buffer
	if err := Disassemble(&buf, prog, Options{Color: false}); err != nil {
		t.Fatalf("disassemble: %v", err)
	}
	if !strings.Contains(buf.String(), "000009") {
		t.Errorf("expected jump target address rendered, got:\n%s", buf.String())
	}
}
