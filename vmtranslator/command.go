package vmtranslator

import "fmt"

// There are four kinds of vm commands:
// * Arithmetic commands: add, sub, neg, eq, gt, lt, and, or, not.
// * Memory access commands: push segment index, pop segment index.
// * Program flow commands: label name, goto name, if-goto name.
// * Function calling commands: function f k, call f n, return.

type Op int

const (
	OpAdd Op = iota
	OpSub
	OpNeg
	OpEq
	OpGt
	OpLt
	OpAnd
	OpOr
	OpNot
)

var opNames = [...]string{"add", "sub", "neg", "eq", "gt", "lt", "and", "or", "not"}

var opMap = map[string]Op{}

func (op Op) String() string {
	if op < OpAdd || op > OpNot {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return opNames[op]
}

type Segment int

const (
	SegmentLocal Segment = iota
	SegmentArgument
	SegmentThis
	SegmentThat
	SegmentConstant
	SegmentStatic
	SegmentTemp
	SegmentPointer
)

var segmentNames = [...]string{"local", "argument", "this", "that", "constant", "static", "temp", "pointer"}

var segmentMap = map[string]Segment{}

func init() {
	for i, name := range opNames {
		opMap[name] = Op(i)
	}
	for i, name := range segmentNames {
		segmentMap[name] = Segment(i)
	}
}

func (seg Segment) String() string {
	if seg < SegmentLocal || seg > SegmentPointer {
		return fmt.Sprintf("Segment(%d)", int(seg))
	}
	return segmentNames[seg]
}

// baseSymbol is the register holding the base address of local, argument, this and that.
func (seg Segment) baseSymbol() string {
	switch seg {
	case SegmentLocal:
		return "LCL"
	case SegmentArgument:
		return "ARG"
	case SegmentThis:
		return "THIS"
	case SegmentThat:
		return "THAT"
	}
	return ""
}

// Command is one parsed vm command. The concrete types are listed below.
type Command interface {
	isCommand()
	String() string
}

type Arithmetic struct {
	Op Op
}

type Push struct {
	Segment Segment
	Index   int
}

type Pop struct {
	Segment Segment
	Index   int
}

type Label struct {
	Name string
}

type Goto struct {
	Name string
}

type IfGoto struct {
	Name string
}

type Call struct {
	Name string
	Args int
}

type Function struct {
	Name   string
	Locals int
}

type Return struct{}

func (Arithmetic) isCommand() {}
func (Push) isCommand()       {}
func (Pop) isCommand()        {}
func (Label) isCommand()      {}
func (Goto) isCommand()       {}
func (IfGoto) isCommand()     {}
func (Call) isCommand()       {}
func (Function) isCommand()   {}
func (Return) isCommand()     {}

func (c Arithmetic) String() string { return c.Op.String() }
func (c Push) String() string       { return fmt.Sprintf("push %s %d", c.Segment, c.Index) }
func (c Pop) String() string        { return fmt.Sprintf("pop %s %d", c.Segment, c.Index) }
func (c Label) String() string      { return "label " + c.Name }
func (c Goto) String() string       { return "goto " + c.Name }
func (c IfGoto) String() string     { return "if-goto " + c.Name }
func (c Call) String() string       { return fmt.Sprintf("call %s %d", c.Name, c.Args) }
func (c Function) String() string   { return fmt.Sprintf("function %s %d", c.Name, c.Locals) }
func (Return) String() string       { return "return" }
