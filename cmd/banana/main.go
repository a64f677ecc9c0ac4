// cmd/banana/main.go
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"banana/internal/bytecode"
	"banana/internal/compiler"
	"banana/internal/diagnostics"
	"banana/internal/disasm"
	"banana/internal/lexer"
	"banana/internal/native"
	"banana/internal/parser"
	"banana/internal/vm"
)

const usage = `Usage: banana <command> <path> [--lib DIR]

Commands:
  compile       compile source to a .bc bytecode file (writes <path>.bc)
  disassemble   print a human-readable listing of a bytecode file
  run           compile-and-run a source file directly
  run-bytecode  run an already-compiled bytecode file

Flags:
  --lib DIR   recursively scan DIR for .so native libraries to register
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) < 2 {
		fmt.Print(usage)
		return 1
	}
	command, path, libDir := args[0], args[1], ""
	for i := 2; i < len(args); i++ {
		if args[i] == "--lib" && i+1 < len(args) {
			libDir = args[i+1]
			i++
		}
	}

	var err error
	switch command {
	case "compile":
		err = runCompile(path)
	case "disassemble":
		err = runDisassemble(path)
	case "run":
		err = runSource(path, libDir)
	case "run-bytecode":
		err = runBytecode(path, libDir)
	default:
		fmt.Print(usage)
		return 1
	}

	if err != nil {
		reportFatal(err)
		return 1
	}
	return 0
}

func reportFatal(err error) {
	red := color.New(color.FgRed, color.Bold)
	if !isTerminal() {
		red.DisableColor()
	}
	red.Fprintln(os.Stderr, err.Error())
}

func isTerminal() bool {
	info, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func compileToBytes(path string, registry *native.Registry) ([]byte, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := lexer.NewScanner(string(src))
	tokens, err := s.ScanTokens()
	if err != nil {
		return nil, err
	}

	main, err := parser.Parse(tokens, registry)
	if err != nil {
		return nil, err
	}
	return compiler.Compile(main), nil
}

func runCompile(path string) error {
	prog, err := compileToBytes(path, native.NewRegistry())
	if err != nil {
		return err
	}
	out := path + ".bc"
	return os.WriteFile(out, prog, 0o644)
}

func runDisassemble(path string) error {
	prog, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if _, err := bytecode.Decode(prog); err != nil {
		return diagnostics.New(diagnostics.RuntimeError, 0, "%s", err)
	}
	return disasm.Disassemble(os.Stdout, prog, disasm.Options{Color: isTerminal()})
}

func runSource(path, libDir string) error {
	registry, err := loadRegistry(libDir)
	if err != nil {
		return err
	}
	prog, err := compileToBytes(path, registry)
	if err != nil {
		return err
	}
	return vm.New(prog, registry).Run()
}

func runBytecode(path, libDir string) error {
	registry, err := loadRegistry(libDir)
	if err != nil {
		return err
	}
	prog, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return vm.New(prog, registry).Run()
}

func loadRegistry(libDir string) (*native.Registry, error) {
	registry := native.NewRegistry()
	if libDir != "" {
		if err := registry.LoadDir(libDir); err != nil {
			return nil, err
		}
	}
	return registry, nil
}
