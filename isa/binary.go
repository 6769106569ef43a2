package isa

import (
	"errors"
	"fmt"
)

// Machine code layout:
// A instruction: 0vvvvvvvvvvvvvvv
// C instruction: 111a cccc ccdd djjj

var (
	ErrUnresolved     = errors.New("instruction refers to an unresolved symbol")
	ErrAddressRange   = errors.New("address value out of range")
	ErrInvalidMachine = errors.New("invalid machine code")
)

const computePrefix = 0b111 << 13

// Encode transforms a resolved instruction to its 16-bit machine code.
func Encode(ins Instruction) (uint16, error) {
	switch ins := ins.(type) {
	case Address:
		if ins.Value < 0 {
			return 0, fmt.Errorf("%w: %d", ErrAddressRange, ins.Value)
		}
		return uint16(ins.Value), nil
	case Compute:
		if !ins.Comp.valid() {
			return 0, fmt.Errorf("%w: %s", ErrInvalidMachine, ins)
		}
		return computePrefix | ins.Comp.Bits()<<6 | uint16(ins.Dest)<<3 | uint16(ins.Jump), nil
	case AddressSymbol:
		return 0, fmt.Errorf("%w: %s", ErrUnresolved, ins.Name)
	}
	return 0, fmt.Errorf("%w: %v", ErrInvalidMachine, ins)
}

// Decode is the inverse of Encode.
func Decode(code uint16) (Instruction, error) {
	if code&0x8000 == 0 {
		return Address{Value: int16(code)}, nil
	}
	if code&computePrefix != computePrefix {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMachine, FormatBinary(code))
	}
	comp, ok := compBitsMap[(code>>6)&0x7f]
	if !ok {
		return nil, fmt.Errorf("%w: unknown comp bits in %s", ErrInvalidMachine, FormatBinary(code))
	}
	return Compute{
		Dest: Dest((code >> 3) & 0x7),
		Comp: comp,
		Jump: Jump(code & 0x7),
	}, nil
}

// FormatBinary renders a word the way .hack files store it.
func FormatBinary(code uint16) string {
	var buf [16]byte
	for j := 15; j >= 0; j-- {
		buf[j] = byte(code&1) + '0'
		code >>= 1
	}
	return string(buf[:])
}

// ParseBinary reads a 16 character word of 0 and 1.
func ParseBinary(s string) (uint16, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("%w: %q is not 16 bits", ErrInvalidMachine, s)
	}
	var code uint16
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			code <<= 1
		case '1':
			code = code<<1 | 1
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidMachine, s)
		}
	}
	return code, nil
}
