package vm

import (
	"bytes"
	"io"
	"os"
	"testing"

	"banana/internal/bytecode"
	"banana/internal/value"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	orig := os.Stdout
	os.Stdout = w
	fn()
	w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	io.Copy(&buf, r)
	return buf.String()
}

func TestArithmeticAndPrint(t *testing.T) {
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Push{Value: value.NewLong(2)},
		bytecode.Push{Value: value.NewLong(3)},
		bytecode.NewAdd(),
		bytecode.NewPrint(),
		bytecode.NewHalt(),
	})
	out := captureStdout(t, func() {
		if err := New(prog, nil).Run(); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
	if out != "5" {
		t.Fatalf("got %q, want %q", out, "5")
	}
}

func TestStoreLoad(t *testing.T) {
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Push{Value: value.NewInt(41)},
		bytecode.Store{LocalIndex: 0},
		bytecode.Load{LocalIndex: 0},
		bytecode.Push{Value: value.NewInt(1)},
		bytecode.NewAdd(),
		bytecode.NewPrint(),
		bytecode.NewHalt(),
	})
	out := captureStdout(t, func() {
		if err := New(prog, nil).Run(); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
	if out != "42" {
		t.Fatalf("got %q, want %q", out, "42")
	}
}

// TestCallReturn builds a tiny `long f(long x) { return x + 1; }
// print f(41);` program by hand: f's body at a known address, skipped
// over on straight-line execution by a leading Jump.
func TestCallReturn(t *testing.T) {
	var instrs []bytecode.Instruction
	// 0: jump over f's body (patched below)
	skip := bytecode.Jump{Addr: 0}
	instrs = append(instrs, skip)
	fAddr := sizeOf(instrs)
	instrs = append(instrs,
		bytecode.Store{LocalIndex: 0}, // pop param into local 0
		bytecode.Load{LocalIndex: 0},
		bytecode.Push{Value: value.NewLong(1)},
		bytecode.NewAdd(),
		bytecode.Ret{ValueCount: 1},
	)
	afterF := sizeOf(instrs)
	instrs[0] = bytecode.Jump{Addr: afterF}
	instrs = append(instrs,
		bytecode.Push{Value: value.NewLong(41)},
		bytecode.Call{Addr: fAddr, ParamCount: 1},
		bytecode.NewPrint(),
		bytecode.NewHalt(),
	)
	prog := bytecode.Encode(instrs)

	out := captureStdout(t, func() {
		if err := New(prog, nil).Run(); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
	if out != "42" {
		t.Fatalf("got %q, want %q", out, "42")
	}
}

func sizeOf(instrs []bytecode.Instruction) uint64 {
	var n uint64
	for _, in := range instrs {
		n += uint64(in.Size())
	}
	return n
}

func TestDivisionByZeroIsFatal(t *testing.T) {
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Push{Value: value.NewInt(1)},
		bytecode.Push{Value: value.NewInt(0)},
		bytecode.NewDiv(),
		bytecode.NewHalt(),
	})
	err := New(prog, nil).Run()
	if err == nil {
		t.Fatal("expected division by zero to be a fatal runtime error")
	}
}

type stubNatives struct {
	arity int
	fn    func([]value.Value) (value.Value, error)
}

func (s stubNatives) Arity(name string) (int, bool) { return s.arity, true }
func (s stubNatives) Call(name string, args []value.Value) (value.Value, error) {
	return s.fn(args)
}

func TestNativeCall(t *testing.T) {
	natives := stubNatives{arity: 1, fn: func(args []value.Value) (value.Value, error) {
		return value.NewLong(args[0].AsInt64() * 2), nil
	}}
	prog := bytecode.Encode([]bytecode.Instruction{
		bytecode.Push{Value: value.NewLong(21)},
		bytecode.Native{Name: "math::twice"},
		bytecode.NewPrint(),
		bytecode.NewHalt(),
	})
	out := captureStdout(t, func() {
		if err := New(prog, natives).Run(); err != nil {
			t.Fatalf("run failed: %v", err)
		}
	})
	if out != "42" {
		t.Fatalf("got %q, want %q", out, "42")
	}
}
