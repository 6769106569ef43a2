package emulator

import (
	"errors"
	"fmt"
	"io"

	"github.com/xiaobogaga/hackvm/assembler"
	"github.com/xiaobogaga/hackvm/isa"
)

// A model of the hack CPU: two registers A and D, a program counter, and 32K words of
// data memory. It executes resolved instructions and is mainly used to check that
// generated code does what it should.

const MemorySize = 32768

var (
	ErrNegativeAddress     = errors.New("dereference of a negative address")
	ErrPCOutOfRange        = errors.New("program counter out of range")
	ErrTickBudgetExhausted = errors.New("tick budget exhausted")
	ErrAddressOutOfRange   = errors.New("memory address out of range")
)

type CPU struct {
	A   int16
	D   int16
	PC  int
	RAM [MemorySize]int16

	// Trace, when set, receives one line per executed instruction.
	Trace io.Writer

	prog  []isa.Instruction
	ticks int
}

func New() *CPU {
	return &CPU{}
}

// SetRAM seeds memory cells before a run. Nothing is written when any address is
// outside the memory.
func (cpu *CPU) SetRAM(cells map[int]int16) error {
	for addr := range cells {
		if addr < 0 || addr >= MemorySize {
			return fmt.Errorf("%w: %d", ErrAddressOutOfRange, addr)
		}
	}
	for addr, value := range cells {
		cpu.RAM[addr] = value
	}
	return nil
}

// Load installs a program and resets the program counter. Registers and memory are kept.
func (cpu *CPU) Load(prog []isa.Instruction) {
	cpu.prog = prog
	cpu.PC = 0
	cpu.ticks = 0
}

// Ticks returns how many instructions have been executed since Load.
func (cpu *CPU) Ticks() int {
	return cpu.ticks
}

// Halted reports whether the program counter reached the end of the program.
func (cpu *CPU) Halted() bool {
	return cpu.PC == len(cpu.prog)
}

func (cpu *CPU) readM() (int16, error) {
	if cpu.A < 0 {
		return 0, fmt.Errorf("pc %d: %w: %d", cpu.PC, ErrNegativeAddress, cpu.A)
	}
	return cpu.RAM[cpu.A], nil
}

// Step executes the instruction at PC.
func (cpu *CPU) Step() error {
	if cpu.PC < 0 || cpu.PC >= len(cpu.prog) {
		return fmt.Errorf("pc %d: %w", cpu.PC, ErrPCOutOfRange)
	}
	pc := cpu.PC
	switch ins := cpu.prog[pc].(type) {
	case isa.Address:
		cpu.A = ins.Value
		cpu.PC++
	case isa.Compute:
		if err := cpu.compute(ins); err != nil {
			return err
		}
	case isa.AddressSymbol:
		return fmt.Errorf("pc %d: %w: %s", pc, isa.ErrUnresolved, ins.Name)
	default:
		return fmt.Errorf("pc %d: unknown instruction %v", pc, ins)
	}
	cpu.ticks++
	if cpu.Trace != nil {
		fmt.Fprintf(cpu.Trace, "%5d %-12s A=%-6d D=%-6d\n", pc, cpu.prog[pc], cpu.A, cpu.D)
	}
	return nil
}

// compute writes M, then D, then A: the M write must use the old A. The jump tests the
// computed value and goes to the A register.
func (cpu *CPU) compute(ins isa.Compute) error {
	var m int16
	if ins.Comp.UsesM() {
		value, err := cpu.readM()
		if err != nil {
			return err
		}
		m = value
	}
	result := ins.Comp.Eval(cpu.A, cpu.D, m)
	if ins.Dest.WritesM() {
		if cpu.A < 0 {
			return fmt.Errorf("pc %d: %w: %d", cpu.PC, ErrNegativeAddress, cpu.A)
		}
		cpu.RAM[cpu.A] = result
	}
	if ins.Dest.WritesD() {
		cpu.D = result
	}
	if ins.Dest.WritesA() {
		cpu.A = result
	}
	if !ins.Jump.Taken(result) {
		cpu.PC++
		return nil
	}
	target := int(cpu.A)
	if target < 0 || target > len(cpu.prog) {
		return fmt.Errorf("pc %d: %w: jump to %d", cpu.PC, ErrPCOutOfRange, target)
	}
	cpu.PC = target
	return nil
}

// Run executes prog until the program counter reaches its end. ticks bounds the number
// of executed instructions.
func (cpu *CPU) Run(prog []isa.Instruction, ticks int) error {
	cpu.Load(prog)
	for !cpu.Halted() {
		if cpu.ticks >= ticks {
			return fmt.Errorf("pc %d: %w after %d instructions", cpu.PC, ErrTickBudgetExhausted, cpu.ticks)
		}
		if err := cpu.Step(); err != nil {
			return err
		}
	}
	return nil
}

// RunCode assembles code and runs it.
func (cpu *CPU) RunCode(code string, ticks int) error {
	prog, err := assembler.NewAssembler("").ParseString(code)
	if err != nil {
		return err
	}
	return cpu.Run(prog, ticks)
}
