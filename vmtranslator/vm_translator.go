package vmtranslator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xiaobogaga/hackvm/util"
)

// A vm translator transforms vm commands to hack assemble code, one command at a time.
// Translation is purely local: labels referenced by goto, if-goto and call are resolved
// later by the assembler.
//
// The stack pointer SP always addresses the next free cell: push writes *SP then
// increments SP, pop decrements SP then reads *SP.
//
// Memory layout used by the generated code:
// RAM[0] SP, RAM[1] LCL, RAM[2] ARG, RAM[3] THIS, RAM[4] THAT,
// RAM[5-12] temp segment, RAM[13-15] scratch registers R13-R15.

const (
	// StackBase is where the bootstrap code places the stack.
	StackBase = 256
	// EntryPoint is the function the bootstrap code calls.
	EntryPoint = "Sys.init"

	tempBase = 5
	tempSize = 8
	// An A instruction holds 15 bits, no index may exceed it.
	maxConstant = 32767
	// return address, LCL, ARG, THIS, THAT
	frameSize = 5
)

var (
	ErrSegmentOffset = errors.New("segment offset out of range")
	ErrPopConstant   = errors.New("cannot pop to constant segment")
	// ErrInvalidSymbol reports a label, function or static name the assembler cannot accept.
	ErrInvalidSymbol = errors.New("invalid assembler symbol")
)

// GenerationError reports a command which is well formed but cannot be translated,
// as if the vm code came from a broken compiler.
type GenerationError struct {
	Command Command
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("CodeGenError: %q: %v", e.Command.String(), e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

type Translator struct {
	fileName string
	// labelNameID numbers the labels of eq, gt and lt.
	labelNameID int
	// funcCallID numbers the return addresses of call.
	funcCallID int
}

func NewTranslator(fileName string) *Translator {
	return &Translator{fileName: fileName}
}

// SetFileName changes the namespace of static variables. The label counters keep
// running so a translator can serve every file of one program.
func (translator *Translator) SetFileName(fileName string) {
	translator.fileName = fileName
}

func (translator *Translator) FileName() string {
	return translator.fileName
}

// Bootstrap returns the program prologue: SP=256, then call Sys.init 0.
func (translator *Translator) Bootstrap() string {
	var sb strings.Builder
	sb.WriteString("// bootstrap\n")
	fmt.Fprintf(&sb, "@%d\nD=A\n@SP\nM=D\n", StackBase)
	sb.WriteString(translator.translateCall(Call{Name: EntryPoint, Args: 0}))
	return sb.String()
}

// Translate returns the assemble code of one command, starting with a comment line
// holding the command itself.
func (translator *Translator) Translate(cmd Command) (string, error) {
	if err := checkSymbol(cmd); err != nil {
		return "", err
	}
	switch cmd := cmd.(type) {
	case Arithmetic:
		return translator.translateArithmetic(cmd), nil
	case Push:
		return translator.translatePush(cmd)
	case Pop:
		return translator.translatePop(cmd)
	case Label:
		return fmt.Sprintf("// %s\n(%s)\n", cmd, cmd.Name), nil
	case Goto:
		return fmt.Sprintf("// %s\n@%s\n0;JMP\n", cmd, cmd.Name), nil
	case IfGoto:
		// true is -1, anything but 0 jumps.
		return fmt.Sprintf("// %s\n@SP\nAM=M-1\nD=M\n@%s\nD;JNE\n", cmd, cmd.Name), nil
	case Function:
		return translator.translateFunction(cmd), nil
	case Call:
		return translator.translateCall(cmd), nil
	case Return:
		return translator.translateReturn(), nil
	}
	return "", fmt.Errorf("unknown vm command %T", cmd)
}

// checkSymbol rejects names which would only fail later in the assembler.
func checkSymbol(cmd Command) error {
	var name string
	switch cmd := cmd.(type) {
	case Label:
		name = cmd.Name
	case Goto:
		name = cmd.Name
	case IfGoto:
		name = cmd.Name
	case Function:
		name = cmd.Name
	case Call:
		name = cmd.Name
	default:
		return nil
	}
	if !util.IsSymbol(name) {
		return &GenerationError{Command: cmd, Err: ErrInvalidSymbol}
	}
	return nil
}

// Binary commands pop the right operand into D and combine it with the new top of the
// stack in place. Unary commands change the top of the stack in place.
var arithmeticCodes = map[Op]string{
	OpAdd: "@SP\nAM=M-1\nD=M\n@SP\nA=M-1\nM=D+M\n",
	OpSub: "@SP\nAM=M-1\nD=M\n@SP\nA=M-1\nM=M-D\n",
	OpAnd: "@SP\nAM=M-1\nD=M\n@SP\nA=M-1\nM=D&M\n",
	OpOr:  "@SP\nAM=M-1\nD=M\n@SP\nA=M-1\nM=D|M\n",
	OpNeg: "@SP\nA=M-1\nM=-M\n",
	OpNot: "@SP\nA=M-1\nM=!M\n",
}

var comparisonJumps = map[Op]string{
	OpEq: "JEQ",
	OpGt: "JGT",
	OpLt: "JLT",
}

// translateArithmetic. A comparison computes left-right into D, stores true (-1) in the
// result cell and skips the store of false (0) when the jump condition holds:
// @SP
// AM=M-1
// D=M      // D = right
// @SP
// AM=M-1
// D=M-D    // D = left - right
// M=-1
// @$cmp.N
// D;JEQ
// @SP
// A=M
// M=0
// ($cmp.N)
// @SP
// M=M+1
func (translator *Translator) translateArithmetic(cmd Arithmetic) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", cmd)
	if code, ok := arithmeticCodes[cmd.Op]; ok {
		sb.WriteString(code)
		return sb.String()
	}
	label := translator.nextComparisonLabel()
	sb.WriteString("@SP\nAM=M-1\nD=M\n@SP\nAM=M-1\nD=M-D\nM=-1\n")
	fmt.Fprintf(&sb, "@%s\nD;%s\n", label, comparisonJumps[cmd.Op])
	fmt.Fprintf(&sb, "@SP\nA=M\nM=0\n(%s)\n@SP\nM=M+1\n", label)
	return sb.String()
}

func (translator *Translator) nextComparisonLabel() string {
	label := fmt.Sprintf("$cmp.%d", translator.labelNameID)
	translator.labelNameID++
	return label
}

func (translator *Translator) nextReturnLabel() string {
	label := fmt.Sprintf("$ret.%d", translator.funcCallID)
	translator.funcCallID++
	return label
}

// staticSymbol names static variable index of the current file. The file name must make
// a valid symbol, `my-prog.0` would not assemble.
func (translator *Translator) staticSymbol(cmd Command, index int) (string, error) {
	symbol := fmt.Sprintf("%s.%d", translator.fileName, index)
	if !util.IsSymbol(symbol) {
		return "", &GenerationError{Command: cmd, Err: ErrInvalidSymbol}
	}
	return symbol, nil
}

// translatePush loads the value into D, then
// @SP
// A=M
// M=D
// @SP
// M=M+1
func (translator *Translator) translatePush(cmd Push) (string, error) {
	if cmd.Index > maxConstant {
		return "", &GenerationError{Command: cmd, Err: ErrSegmentOffset}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", cmd)
	switch cmd.Segment {
	case SegmentConstant:
		fmt.Fprintf(&sb, "@%d\nD=A\n", cmd.Index)
	case SegmentLocal, SegmentArgument, SegmentThis, SegmentThat:
		fmt.Fprintf(&sb, "@%d\nD=A\n@%s\nA=D+M\nD=M\n", cmd.Index, cmd.Segment.baseSymbol())
	case SegmentTemp:
		if cmd.Index >= tempSize {
			return "", &GenerationError{Command: cmd, Err: ErrSegmentOffset}
		}
		fmt.Fprintf(&sb, "@%d\nD=M\n", tempBase+cmd.Index)
	case SegmentPointer:
		base, err := pointerSymbol(cmd, cmd.Index)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "@%s\nD=M\n", base)
	case SegmentStatic:
		symbol, err := translator.staticSymbol(cmd, cmd.Index)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "@%s\nD=M\n", symbol)
	default:
		return "", fmt.Errorf("unknown segment %s", cmd.Segment)
	}
	sb.WriteString("@SP\nA=M\nM=D\n@SP\nM=M+1\n")
	return sb.String(), nil
}

// translatePop stores the target address in R15 before the value leaves the stack,
// both steps need D. Pointer and static go through R15 as well.
// @SP
// AM=M-1
// D=M
// @R15
// A=M
// M=D
func (translator *Translator) translatePop(cmd Pop) (string, error) {
	if cmd.Segment == SegmentConstant {
		return "", &GenerationError{Command: cmd, Err: ErrPopConstant}
	}
	if cmd.Index > maxConstant {
		return "", &GenerationError{Command: cmd, Err: ErrSegmentOffset}
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", cmd)
	switch cmd.Segment {
	case SegmentLocal, SegmentArgument, SegmentThis, SegmentThat:
		fmt.Fprintf(&sb, "@%s\nD=M\n@%d\nD=D+A\n", cmd.Segment.baseSymbol(), cmd.Index)
	case SegmentTemp:
		if cmd.Index >= tempSize {
			return "", &GenerationError{Command: cmd, Err: ErrSegmentOffset}
		}
		fmt.Fprintf(&sb, "@%d\nD=A\n@%d\nD=D+A\n", tempBase, cmd.Index)
	case SegmentPointer:
		base, err := pointerSymbol(cmd, cmd.Index)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "@%s\nD=A\n", base)
	case SegmentStatic:
		symbol, err := translator.staticSymbol(cmd, cmd.Index)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "@%s\nD=A\n", symbol)
	default:
		return "", fmt.Errorf("unknown segment %s", cmd.Segment)
	}
	sb.WriteString("@R15\nM=D\n")
	sb.WriteString("@SP\nAM=M-1\nD=M\n@R15\nA=M\nM=D\n")
	return sb.String(), nil
}

func pointerSymbol(cmd Command, index int) (string, error) {
	switch index {
	case 0:
		return "THIS", nil
	case 1:
		return "THAT", nil
	}
	return "", &GenerationError{Command: cmd, Err: ErrSegmentOffset}
}

// translateFunction declares the entry label and pushes k zeros:
// (f)
// @SP
// A=M
// M=0    // k times
// A=A+1  // k times
// D=A
// @SP
// M=D
func (translator *Translator) translateFunction(cmd Function) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n(%s)\n", cmd, cmd.Name)
	sb.WriteString("@SP\nA=M\n")
	for i := 0; i < cmd.Locals; i++ {
		sb.WriteString("M=0\nA=A+1\n")
	}
	sb.WriteString("D=A\n@SP\nM=D\n")
	return sb.String()
}

// translateCall pushes the frame: return address, LCL, ARG, THIS, THAT. Then
// ARG=SP-(n+5), LCL=SP, jumps to f and declares the return address.
func (translator *Translator) translateCall(cmd Call) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "// %s\n", cmd)
	returnLabel := translator.nextReturnLabel()
	fmt.Fprintf(&sb, "@%s\nD=A\n@SP\nA=M\nM=D\n@SP\nM=M+1\n", returnLabel)
	for _, register := range []string{"LCL", "ARG", "THIS", "THAT"} {
		fmt.Fprintf(&sb, "@%s\nD=M\n@SP\nA=M\nM=D\n@SP\nM=M+1\n", register)
	}
	fmt.Fprintf(&sb, "@SP\nD=M\n@%d\nD=D-A\n@ARG\nM=D\n", cmd.Args+frameSize)
	sb.WriteString("@SP\nD=M\n@LCL\nM=D\n")
	fmt.Fprintf(&sb, "@%s\n0;JMP\n(%s)\n", cmd.Name, returnLabel)
	return sb.String()
}

// translateReturn. The order matters, each step relies on the previous ones:
// 1. *ARG = pop(), the return value lands where the caller's stack top will be.
// 2. R15 = ARG, the frame base.
// 3. SP = LCL.
// 4. pop THAT, THIS, ARG, LCL.
// 5. R14 = pop(), the return address.
// 6. SP = R15 + 1.
// 7. jump to R14.
func (translator *Translator) translateReturn() string {
	var sb strings.Builder
	sb.WriteString("// return\n")
	sb.WriteString("@SP\nAM=M-1\nD=M\n@ARG\nA=M\nM=D\n")
	sb.WriteString("@ARG\nD=M\n@R15\nM=D\n")
	sb.WriteString("@LCL\nD=M\n@SP\nM=D\n")
	for _, register := range []string{"THAT", "THIS", "ARG", "LCL"} {
		fmt.Fprintf(&sb, "@SP\nAM=M-1\nD=M\n@%s\nM=D\n", register)
	}
	sb.WriteString("@SP\nAM=M-1\nD=M\n@R14\nM=D\n")
	sb.WriteString("@R15\nD=M\n@SP\nM=D+1\n")
	sb.WriteString("@R14\nA=M\n0;JMP\n")
	return sb.String()
}
