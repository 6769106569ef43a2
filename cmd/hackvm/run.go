package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaobogaga/hackvm/assembler"
	"github.com/xiaobogaga/hackvm/emulator"
	"github.com/xiaobogaga/hackvm/isa"
	"github.com/xiaobogaga/hackvm/vmtranslator"
)

var (
	ticks int
	trace bool
	ram   []string
	show  string
)

var runCmd = &cobra.Command{
	Use:   "run path",
	Short: "Run a program on the hack cpu emulator",
	Long: `Run a .vm file, a directory of .vm files, a .asm file or a .hack file on the
cpu emulator until the program counter passes the last instruction or the tick
budget is spent. Vm code is translated and assembled with variables enabled.

Memory can be seeded with --ram 0=256,1=300 and a range printed with --show 256:260.

A function called with no arguments cannot return: return stores its value in
ARG[0], which is then the cell holding the return address. Such a program jumps to
the returned value and usually runs until the tick budget is spent. Pass at least
one argument, a placeholder if needed, to functions that return.
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cells, err := parseRAM(ram)
		if err != nil {
			return err
		}
		from, to, err := parseRange(show)
		if err != nil {
			return err
		}
		prog, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		if verbose {
			dumpProgram(os.Stderr, prog)
		}
		cpu := emulator.New()
		if err := cpu.SetRAM(cells); err != nil {
			return err
		}
		if trace {
			cpu.Trace = os.Stderr
		}
		runErr := cpu.Run(prog, ticks)
		printState(cpu, from, to)
		if runErr != nil {
			return fmt.Errorf("failed to run %s: %w", args[0], runErr)
		}
		log.Printf("halted after %d instructions", cpu.Ticks())
		return nil
	},
}

func init() {
	runCmd.Flags().IntVar(&ticks, "ticks", 1000000, "the maximum number of instructions to execute")
	runCmd.Flags().BoolVar(&trace, "trace", false, "print every executed instruction to stderr")
	runCmd.Flags().StringSliceVar(&ram, "ram", nil, "seed memory cells, addr=value")
	runCmd.Flags().StringVar(&show, "show", "", "print the memory range from:to after the run")
	addBootstrapFlag(runCmd.Flags())
	addVariablesFlag(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

// loadProgram turns path into resolved instructions according to its form.
func loadProgram(path string) ([]isa.Instruction, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	ext := filepath.Ext(path)
	switch {
	case info.IsDir() || ext == ".vm":
		mode, err := parseBootstrapMode(bootstrap)
		if err != nil {
			return nil, err
		}
		code, err := vmtranslator.NewTranslator("").TranslatePath(path, mode)
		if err != nil {
			return nil, fmt.Errorf("failed to translate program %s: %w", path, err)
		}
		asm := assembler.NewAssembler(filepath.Base(path))
		asm.EnableVariables()
		prog, err := asm.ParseString(code)
		if err != nil {
			return nil, err
		}
		if verbose {
			dumper(os.Stderr).Println(asm.Symbols())
		}
		return prog, nil
	case ext == ".asm":
		asm, prog, err := assembleFile(path, variables)
		if err != nil {
			return nil, err
		}
		if verbose {
			dumper(os.Stderr).Println(asm.Symbols())
		}
		return prog, nil
	case ext == ".hack":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return assembler.ReadMachineCode(f)
	}
	return nil, fmt.Errorf("don't know how to run %s, want a directory, .vm, .asm or .hack", path)
}

// parseRAM parses addr=value pairs.
func parseRAM(pairs []string) (map[int]int16, error) {
	cells := make(map[int]int16, len(pairs))
	for _, pair := range pairs {
		addr, value, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("invalid ram cell %q, want addr=value", pair)
		}
		a, err := strconv.Atoi(strings.TrimSpace(addr))
		if err != nil || a < 0 || a >= emulator.MemorySize {
			return nil, fmt.Errorf("invalid ram address %q", addr)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 16)
		if err != nil {
			return nil, fmt.Errorf("invalid ram value %q: %w", value, err)
		}
		cells[a] = int16(v)
	}
	return cells, nil
}

// parseRange parses from:to, both inclusive. An empty string is an empty range.
func parseRange(s string) (int, int, error) {
	if s == "" {
		return 0, -1, nil
	}
	fromText, toText, found := strings.Cut(s, ":")
	if !found {
		toText = fromText
	}
	from, err := strconv.Atoi(fromText)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	to, err := strconv.Atoi(toText)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid range %q: %w", s, err)
	}
	if from < 0 || to >= emulator.MemorySize || from > to {
		return 0, 0, fmt.Errorf("invalid range %q", s)
	}
	return from, to, nil
}

var segmentRegisters = []string{"SP", "LCL", "ARG", "THIS", "THAT"}

func printState(cpu *emulator.CPU, from, to int) {
	fmt.Printf("PC=%d A=%d D=%d ticks=%d\n", cpu.PC, cpu.A, cpu.D, cpu.Ticks())
	for addr, name := range segmentRegisters {
		fmt.Printf("%-4s RAM[%d]=%d\n", name, addr, cpu.RAM[addr])
	}
	for addr := from; addr <= to; addr++ {
		fmt.Printf("RAM[%d]=%d\n", addr, cpu.RAM[addr])
	}
	if verbose {
		dumper(os.Stderr).Println(map[string]interface{}{
			"PC":    cpu.PC,
			"A":     cpu.A,
			"D":     cpu.D,
			"Ticks": cpu.Ticks(),
			"Temp":  cpu.RAM[5:13],
		})
	}
}
