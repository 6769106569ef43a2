package isa

import "fmt"

// Comp is one of the 28 computations the hack ALU supports.
type Comp int

const (
	CompZero Comp = iota
	CompOne
	CompMinusOne
	CompD
	CompA
	CompNotD
	CompNotA
	CompMinusD
	CompMinusA
	CompDPlusOne
	CompAPlusOne
	CompDMinusOne
	CompAMinusOne
	CompDPlusA
	CompDMinusA
	CompAMinusD
	CompDAndA
	CompDOrA
	CompM
	CompNotM
	CompMinusM
	CompMPlusOne
	CompMMinusOne
	CompDPlusM
	CompDMinusM
	CompMMinusD
	CompDAndM
	CompDOrM
	compCount
)

type compInfo struct {
	name string
	// a bit followed by the six c bits.
	bits uint16
}

var compTable = [compCount]compInfo{
	CompZero:      {"0", 0b0101010},
	CompOne:       {"1", 0b0111111},
	CompMinusOne:  {"-1", 0b0111010},
	CompD:         {"D", 0b0001100},
	CompA:         {"A", 0b0110000},
	CompNotD:      {"!D", 0b0001101},
	CompNotA:      {"!A", 0b0110001},
	CompMinusD:    {"-D", 0b0001111},
	CompMinusA:    {"-A", 0b0110011},
	CompDPlusOne:  {"D+1", 0b0011111},
	CompAPlusOne:  {"A+1", 0b0110111},
	CompDMinusOne: {"D-1", 0b0001110},
	CompAMinusOne: {"A-1", 0b0110010},
	CompDPlusA:    {"D+A", 0b0000010},
	CompDMinusA:   {"D-A", 0b0010011},
	CompAMinusD:   {"A-D", 0b0000111},
	CompDAndA:     {"D&A", 0b0000000},
	CompDOrA:      {"D|A", 0b0010101},
	CompM:         {"M", 0b1110000},
	CompNotM:      {"!M", 0b1110001},
	CompMinusM:    {"-M", 0b1110011},
	CompMPlusOne:  {"M+1", 0b1110111},
	CompMMinusOne: {"M-1", 0b1110010},
	CompDPlusM:    {"D+M", 0b1000010},
	CompDMinusM:   {"D-M", 0b1010011},
	CompMMinusD:   {"M-D", 0b1000111},
	CompDAndM:     {"D&M", 0b1000000},
	CompDOrM:      {"D|M", 0b1010101},
}

var compMap = map[string]Comp{}

var compBitsMap = map[uint16]Comp{}

// Commuted spellings of commutative computations.
var compAliases = map[string]Comp{
	"1+D": CompDPlusOne,
	"1+A": CompAPlusOne,
	"A+D": CompDPlusA,
	"A&D": CompDAndA,
	"A|D": CompDOrA,
	"1+M": CompMPlusOne,
	"M+D": CompDPlusM,
	"M&D": CompDAndM,
	"M|D": CompDOrM,
}

func init() {
	for c := Comp(0); c < compCount; c++ {
		compMap[compTable[c].name] = c
		compBitsMap[compTable[c].bits] = c
	}
	for name, c := range compAliases {
		compMap[name] = c
	}
}

func (c Comp) valid() bool { return c >= 0 && c < compCount }

func (c Comp) String() string {
	if !c.valid() {
		return fmt.Sprintf("Comp(%d)", int(c))
	}
	return compTable[c].name
}

// Bits returns the a bit and the six c bits of the instruction.
func (c Comp) Bits() uint16 {
	return compTable[c].bits
}

// UsesM reports whether the computation reads memory at A.
func (c Comp) UsesM() bool {
	return compTable[c].bits&0b1000000 != 0
}

func ParseComp(s string) (Comp, bool) {
	c, ok := compMap[s]
	return c, ok
}

// Eval computes the value over the given register and memory values.
func (c Comp) Eval(a, d, m int16) int16 {
	switch c {
	case CompZero:
		return 0
	case CompOne:
		return 1
	case CompMinusOne:
		return -1
	case CompD:
		return d
	case CompA:
		return a
	case CompNotD:
		return ^d
	case CompNotA:
		return ^a
	case CompMinusD:
		return -d
	case CompMinusA:
		return -a
	case CompDPlusOne:
		return d + 1
	case CompAPlusOne:
		return a + 1
	case CompDMinusOne:
		return d - 1
	case CompAMinusOne:
		return a - 1
	case CompDPlusA:
		return d + a
	case CompDMinusA:
		return d - a
	case CompAMinusD:
		return a - d
	case CompDAndA:
		return d & a
	case CompDOrA:
		return d | a
	case CompM:
		return m
	case CompNotM:
		return ^m
	case CompMinusM:
		return -m
	case CompMPlusOne:
		return m + 1
	case CompMMinusOne:
		return m - 1
	case CompDPlusM:
		return d + m
	case CompDMinusM:
		return d - m
	case CompMMinusD:
		return m - d
	case CompDAndM:
		return d & m
	case CompDOrM:
		return d | m
	}
	panic(fmt.Sprintf("isa: unknown computation %d", int(c)))
}
