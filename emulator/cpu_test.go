package emulator

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaobogaga/hackvm/isa"
)

func TestNew(t *testing.T) {
	cpu := New()
	assert.Equal(t, int16(0), cpu.A)
	assert.Equal(t, int16(0), cpu.D)
	assert.Equal(t, 0, cpu.PC)
	assert.Equal(t, int16(0), cpu.RAM[17])
	assert.True(t, cpu.Halted())
}

func TestRunCode(t *testing.T) {
	// RAM[2] = RAM[0] + RAM[1]
	code := `
@0
D=M
@1
D=D+M
@2
M=D
`
	cpu := New()
	require.Nil(t, cpu.SetRAM(map[int]int16{0: 3, 1: -7}))
	require.Nil(t, cpu.RunCode(code, 100))
	assert.Equal(t, int16(-4), cpu.RAM[2])
	assert.Equal(t, 6, cpu.Ticks())
	assert.True(t, cpu.Halted())
}

func TestRunLoop(t *testing.T) {
	// RAM[1] = 1 + 2 + ... + RAM[0]
	code := `
@R13
M=0
(LOOP)
@0
D=M
@END
D;JEQ
@1
M=D+M
@0
M=M-1
@LOOP
0;JMP
(END)
`
	cpu := New()
	require.Nil(t, cpu.SetRAM(map[int]int16{0: 10}))
	require.Nil(t, cpu.RunCode(code, 1000))
	assert.Equal(t, int16(55), cpu.RAM[1])
	assert.Equal(t, int16(0), cpu.RAM[0])
}

func TestWriteOrder(t *testing.T) {
	cpu := New()
	require.Nil(t, cpu.SetRAM(map[int]int16{7: 41}))
	// M is written at the old A, then A takes the result.
	require.Nil(t, cpu.RunCode("@7\nAM=M+1\n", 10))
	assert.Equal(t, int16(42), cpu.RAM[7])
	assert.Equal(t, int16(42), cpu.A)

	cpu = New()
	require.Nil(t, cpu.RunCode("@5\nD=A\nAMD=D-1\n", 10))
	assert.Equal(t, int16(4), cpu.RAM[5])
	assert.Equal(t, int16(4), cpu.D)
	assert.Equal(t, int16(4), cpu.A)
}

func TestJumpUsesComputedValue(t *testing.T) {
	// D is 0 before the instruction, the jump tests the computed 1.
	cpu := New()
	code := "@4\nD=1;JGT\n@9\nD=A\n"
	require.Nil(t, cpu.RunCode(code, 10))
	assert.Equal(t, int16(1), cpu.D)
	assert.Equal(t, 2, cpu.Ticks())
}

func TestNegativeAddress(t *testing.T) {
	cpu := New()
	assert.ErrorIs(t, cpu.RunCode("A=-1\nD=M\n", 10), ErrNegativeAddress)
	cpu = New()
	assert.ErrorIs(t, cpu.RunCode("A=-1\nM=1\n", 10), ErrNegativeAddress)
	// A negative A is fine as long as nothing dereferences it.
	cpu = New()
	assert.Nil(t, cpu.RunCode("A=-1\nD=A\n", 10))
	assert.Equal(t, int16(-1), cpu.D)
}

func TestSetRAMOutOfRange(t *testing.T) {
	for _, addr := range []int{-1, MemorySize, 40000} {
		cpu := New()
		err := cpu.SetRAM(map[int]int16{0: 7, addr: 1})
		assert.ErrorIs(t, err, ErrAddressOutOfRange, "%d", addr)
		assert.Equal(t, int16(0), cpu.RAM[0], "nothing is written")
	}
	cpu := New()
	require.Nil(t, cpu.SetRAM(map[int]int16{MemorySize - 1: 9}))
	assert.Equal(t, int16(9), cpu.RAM[MemorySize-1])
}

func TestJumpPastEnd(t *testing.T) {
	cpu := New()
	assert.ErrorIs(t, cpu.RunCode("@100\n0;JMP\n", 10), ErrPCOutOfRange)
	// Jumping exactly to the end is a normal stop.
	cpu = New()
	assert.Nil(t, cpu.RunCode("@2\n0;JMP\n", 10))
}

func TestTickBudget(t *testing.T) {
	cpu := New()
	err := cpu.RunCode("(LOOP)\n@LOOP\n0;JMP\n", 50)
	assert.ErrorIs(t, err, ErrTickBudgetExhausted)
	assert.Equal(t, 50, cpu.Ticks())
}

func TestUnresolvedInstruction(t *testing.T) {
	cpu := New()
	err := cpu.Run([]isa.Instruction{isa.AddressSymbol{Name: "x"}}, 10)
	assert.ErrorIs(t, err, isa.ErrUnresolved)
}

func TestTrace(t *testing.T) {
	var trace bytes.Buffer
	cpu := New()
	cpu.Trace = &trace
	require.Nil(t, cpu.RunCode("@3\nD=A\n", 10))
	assert.Contains(t, trace.String(), "@3")
	assert.Contains(t, trace.String(), "D=A")
	assert.Equal(t, 2, bytes.Count(trace.Bytes(), []byte("\n")))
}
