package assembler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xiaobogaga/hackvm/isa"
	"github.com/xiaobogaga/hackvm/util"
)

// A two pass assembler for hack assemble code.
//
// Pass 1 reads the source line by line, drops comments and white space and classifies
// each line as a label declaration `(name)`, an A instruction `@value` / `@symbol`, or
// a C instruction `dest=comp;jump`. A label declaration records the address of the next
// instruction, it does not take an instruction slot itself.
//
// Pass 2 replaces every `@symbol` with its address from the symbol table. By default there
// is no variable allocation: a symbol that is neither predefined nor a declared label is an
// error. EnableVariables turns on the usual hack convention of giving such symbols
// consecutive data addresses from 16.

var predefinedSymbols = map[string]int16{
	"SP":   0,
	"LCL":  1,
	"ARG":  2,
	"THIS": 3,
	"THAT": 4,
	"R13":  13,
	"R14":  14,
	"R15":  15,
}

var (
	ErrDuplicateLabel   = errors.New("duplicate label")
	ErrUnresolvedSymbol = errors.New("unresolved symbol")
)

// SyntaxError reports a malformed line of assemble code.
type SyntaxError struct {
	File        string
	Line        int
	Text        string
	Description string
	Err         error
}

func (e *SyntaxError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("syntax err at %s:%d: %s near %q", e.File, e.Line, e.Description, e.Text)
	}
	return fmt.Sprintf("syntax err at line %d: %s near %q", e.Line, e.Description, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

type UnresolvedSymbolError struct {
	File string
	Line int
	Name string
}

func (e *UnresolvedSymbolError) Error() string {
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, ErrUnresolvedSymbol, e.Name)
}

func (e *UnresolvedSymbolError) Unwrap() error { return ErrUnresolvedSymbol }

// VariableBase is the first address given to a variable.
const VariableBase = 16

type Assembler struct {
	fileName string
	line     int
	symbols  map[string]int16
	commands []command
	// nextVariable is the next free variable address, 0 when variables are disabled.
	nextVariable int16
}

// command keeps where an instruction came from for error reports.
type command struct {
	ins  isa.Instruction
	line int
	text string
}

func NewAssembler(fileName string) *Assembler {
	symbols := make(map[string]int16, len(predefinedSymbols))
	for name, addr := range predefinedSymbols {
		symbols[name] = addr
	}
	return &Assembler{
		fileName: fileName,
		symbols:  symbols,
	}
}

// EnableVariables makes pass 2 allocate unknown symbols as variables instead of failing.
func (asm *Assembler) EnableVariables() {
	asm.nextVariable = VariableBase
}

// Parse assembles the whole input and returns the resolved instructions.
func (asm *Assembler) Parse(rd io.Reader) ([]isa.Instruction, error) {
	bfReader := bufio.NewReader(rd)
	for {
		line, err := bfReader.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, err
		}
		if len(line) > 0 {
			asm.line++
			if perr := asm.transformLine(line); perr != nil {
				return nil, perr
			}
		}
		if err == io.EOF {
			break
		}
	}
	return asm.resolveSymbols()
}

func (asm *Assembler) ParseString(code string) ([]isa.Instruction, error) {
	return asm.Parse(strings.NewReader(code))
}

// Symbol looks up a predefined symbol or a declared label.
func (asm *Assembler) Symbol(name string) (int16, bool) {
	addr, ok := asm.symbols[name]
	return addr, ok
}

// Symbols returns a copy of the symbol table.
func (asm *Assembler) Symbols() map[string]int16 {
	ret := make(map[string]int16, len(asm.symbols))
	for k, v := range asm.symbols {
		ret[k] = v
	}
	return ret
}

// trimLine removes the comment and every white space character of the line.
func trimLine(line string) string {
	if index := strings.Index(line, "//"); index != -1 {
		line = line[:index]
	}
	return strings.Join(strings.Fields(line), "")
}

func (asm *Assembler) transformLine(original string) error {
	line := trimLine(original)
	if len(line) == 0 {
		return nil
	}
	switch line[0] {
	case '@':
		return asm.transformAddressCommand(line)
	case '(':
		return asm.transformLabelCommand(line)
	default:
		return asm.transformComputeCommand(line)
	}
}

// transformAddressCommand handles @decimal and @symbol. A decimal must fit in 15 bits,
// negative literals are rejected here rather than at encoding. A symbol is kept unresolved
// until pass 2 since labels can be used before declared.
func (asm *Assembler) transformAddressCommand(line string) error {
	value := line[1:]
	if len(value) > 0 && value[0] == '-' {
		return asm.makeSyntaxErr(line, "negative address value", nil)
	}
	if util.IsDecimal(value) {
		n, err := strconv.ParseInt(value, 10, 16)
		if err != nil {
			return asm.makeSyntaxErr(line, "decimal value out of range", nil)
		}
		asm.appendCommand(isa.Address{Value: int16(n)}, line)
		return nil
	}
	if !util.IsSymbol(value) {
		return asm.makeSyntaxErr(line, "wrong variable or label format", nil)
	}
	asm.appendCommand(isa.AddressSymbol{Name: value}, line)
	return nil
}

// transformLabelCommand records the label at the address of the next instruction.
func (asm *Assembler) transformLabelCommand(line string) error {
	if len(line) < 3 || line[len(line)-1] != ')' || !util.IsSymbol(line[1:len(line)-1]) {
		return asm.makeSyntaxErr(line, "wrong label format", nil)
	}
	label := line[1 : len(line)-1]
	if _, exist := asm.symbols[label]; exist {
		return asm.makeSyntaxErr(line, "found duplicate label", ErrDuplicateLabel)
	}
	asm.symbols[label] = int16(len(asm.commands))
	return nil
}

func (asm *Assembler) transformComputeCommand(line string) error {
	ins, err := isa.ParseCompute(line)
	if err != nil {
		return asm.makeSyntaxErr(line, "wrong c command format", err)
	}
	asm.appendCommand(ins, line)
	return nil
}

func (asm *Assembler) appendCommand(ins isa.Instruction, text string) {
	asm.commands = append(asm.commands, command{ins: ins, line: asm.line, text: text})
}

// resolveSymbols is the second pass.
func (asm *Assembler) resolveSymbols() ([]isa.Instruction, error) {
	ret := make([]isa.Instruction, 0, len(asm.commands))
	for _, cmd := range asm.commands {
		sym, ok := cmd.ins.(isa.AddressSymbol)
		if !ok {
			ret = append(ret, cmd.ins)
			continue
		}
		addr, exist := asm.symbols[sym.Name]
		if !exist {
			if asm.nextVariable == 0 {
				return nil, &UnresolvedSymbolError{File: asm.fileName, Line: cmd.line, Name: sym.Name}
			}
			addr = asm.nextVariable
			asm.symbols[sym.Name] = addr
			asm.nextVariable++
		}
		ret = append(ret, isa.Address{Value: addr})
	}
	return ret, nil
}

func (asm *Assembler) makeSyntaxErr(text, msg string, err error) error {
	return &SyntaxError{File: asm.fileName, Line: asm.line, Text: text, Description: msg, Err: err}
}

// WriteMachineCode writes one 16 bit binary word per line, the .hack format.
func WriteMachineCode(w io.Writer, prog []isa.Instruction) error {
	bw := bufio.NewWriter(w)
	for pc, ins := range prog {
		code, err := isa.Encode(ins)
		if err != nil {
			return fmt.Errorf("instruction %d: %w", pc, err)
		}
		bw.WriteString(isa.FormatBinary(code))
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// ReadMachineCode reads a .hack file back into instructions.
func ReadMachineCode(r io.Reader) ([]isa.Instruction, error) {
	var prog []isa.Instruction
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		code, err := isa.ParseBinary(text)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		ins, err := isa.Decode(code)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		prog = append(prog, ins)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return prog, nil
}
