package isa

import (
	"errors"
	"fmt"
	"strings"
)

// The hack CPU understands two kinds of instructions:
// * A instruction: @value, loads a 15 bit value into the A register.
// * C instruction: dest=comp;jump, computes comp over A, D and M (memory at A), stores
//   the result into the registers named by dest and optionally jumps to A.
// Before assembling, an A instruction may still refer to a symbol.

type Dest int

const (
	DestNull Dest = iota
	DestM
	DestD
	DestMD
	DestA
	DestAM
	DestAD
	DestAMD
)

// Bits of a dest, the field value is exactly these bits or'ed together.
const (
	destBitM = 1
	destBitD = 2
	destBitA = 4
)

var destNames = [...]string{"", "M", "D", "MD", "A", "AM", "AD", "AMD"}

func (d Dest) String() string {
	if d < DestNull || d > DestAMD {
		return fmt.Sprintf("Dest(%d)", int(d))
	}
	return destNames[d]
}

func (d Dest) WritesM() bool { return d&destBitM != 0 }
func (d Dest) WritesD() bool { return d&destBitD != 0 }
func (d Dest) WritesA() bool { return d&destBitA != 0 }

// ParseDest accepts any order of the letters A, D and M, each at most once.
func ParseDest(s string) (Dest, bool) {
	if len(s) > 3 {
		return DestNull, false
	}
	d := DestNull
	for i := 0; i < len(s); i++ {
		var bit Dest
		switch s[i] {
		case 'M':
			bit = destBitM
		case 'D':
			bit = destBitD
		case 'A':
			bit = destBitA
		default:
			return DestNull, false
		}
		if d&bit != 0 {
			return DestNull, false
		}
		d |= bit
	}
	return d, true
}

type Jump int

const (
	JumpNull Jump = iota
	JGT
	JEQ
	JGE
	JLT
	JNE
	JLE
	JMP
)

var jumpNames = [...]string{"", "JGT", "JEQ", "JGE", "JLT", "JNE", "JLE", "JMP"}

var jumpMap = map[string]Jump{
	"":    JumpNull,
	"JGT": JGT,
	"JEQ": JEQ,
	"JGE": JGE,
	"JLT": JLT,
	"JNE": JNE,
	"JLE": JLE,
	"JMP": JMP,
}

func (j Jump) String() string {
	if j < JumpNull || j > JMP {
		return fmt.Sprintf("Jump(%d)", int(j))
	}
	return jumpNames[j]
}

func ParseJump(s string) (Jump, bool) {
	j, ok := jumpMap[s]
	return j, ok
}

// Taken reports whether the jump condition holds for a computed value.
func (j Jump) Taken(v int16) bool {
	switch j {
	case JGT:
		return v > 0
	case JEQ:
		return v == 0
	case JGE:
		return v >= 0
	case JLT:
		return v < 0
	case JNE:
		return v != 0
	case JLE:
		return v <= 0
	case JMP:
		return true
	default:
		return false
	}
}

// Instruction is one of Address, AddressSymbol or Compute.
type Instruction interface {
	isInstruction()
	String() string
}

type Address struct {
	Value int16
}

// AddressSymbol is an A instruction whose value is not resolved yet.
type AddressSymbol struct {
	Name string
}

type Compute struct {
	Dest Dest
	Comp Comp
	Jump Jump
}

func (Address) isInstruction()       {}
func (AddressSymbol) isInstruction() {}
func (Compute) isInstruction()       {}

func (a Address) String() string       { return fmt.Sprintf("@%d", a.Value) }
func (a AddressSymbol) String() string { return "@" + a.Name }

func (c Compute) String() string {
	var sb strings.Builder
	if c.Dest != DestNull {
		sb.WriteString(c.Dest.String())
		sb.WriteByte('=')
	}
	sb.WriteString(c.Comp.String())
	if c.Jump != JumpNull {
		sb.WriteByte(';')
		sb.WriteString(c.Jump.String())
	}
	return sb.String()
}

var ErrInvalidCompute = errors.New("invalid compute instruction")

// ParseCompute splits an optional `dest=` prefix and an optional `;jump` suffix around
// the computation. The input must not contain white space.
func ParseCompute(s string) (Compute, error) {
	c := Compute{}
	rest := s
	if i := strings.IndexByte(rest, ';'); i != -1 {
		jump, ok := ParseJump(rest[i+1:])
		if !ok {
			return c, fmt.Errorf("%w: wrong jump code near %s", ErrInvalidCompute, s)
		}
		c.Jump = jump
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '='); i != -1 {
		dest, ok := ParseDest(rest[:i])
		if !ok || i == 0 {
			return c, fmt.Errorf("%w: wrong dest code near %s", ErrInvalidCompute, s)
		}
		c.Dest = dest
		rest = rest[i+1:]
	}
	comp, ok := ParseComp(rest)
	if !ok {
		return c, fmt.Errorf("%w: wrong comp code near %s", ErrInvalidCompute, s)
	}
	c.Comp = comp
	return c, nil
}
