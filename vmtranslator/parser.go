package vmtranslator

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xiaobogaga/hackvm/util"
)

var (
	ErrInvalidCommand = errors.New("invalid command name")
	ErrInvalidSegment = errors.New("invalid segment name")
	ErrInvalidFormat  = errors.New("invalid command format")
)

// ParseError carries the position and text of a line which is not a valid vm command.
// Kind is one of ErrInvalidCommand, ErrInvalidSegment and ErrInvalidFormat.
type ParseError struct {
	File        string
	Line        int
	Description string
	Text        string
	Kind        error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("SyntaxError: %s:%d: %s near %q", e.File, e.Line, e.Description, e.Text)
}

func (e *ParseError) Unwrap() error { return e.Kind }

type keyWordTP int

const (
	arithmeticKeyWordTP keyWordTP = iota
	pushKeyWordTP
	popKeyWordTP
	labelKeyWordTP
	gotoKeyWordTP
	ifGotoKeyWordTP
	functionKeyWordTP
	callKeyWordTP
	returnKeyWordTP
)

var keyWordsMap = map[string]keyWordTP{
	"push":     pushKeyWordTP,
	"pop":      popKeyWordTP,
	"label":    labelKeyWordTP,
	"goto":     gotoKeyWordTP,
	"if-goto":  ifGotoKeyWordTP,
	"function": functionKeyWordTP,
	"call":     callKeyWordTP,
	"return":   returnKeyWordTP,
}

func init() {
	for _, name := range opNames {
		keyWordsMap[name] = arithmeticKeyWordTP
	}
}

// Parser turns lines of one vm file into commands. It only remembers the line number.
type Parser struct {
	fileName    string
	lineCounter int
}

func NewParser(fileName string) *Parser {
	return &Parser{fileName: fileName}
}

// Line returns the number of the line parsed last, starting at 1.
func (parser *Parser) Line() int {
	return parser.lineCounter
}

// ParseLine returns nil and no error for blank and comment lines.
func (parser *Parser) ParseLine(line string) (Command, error) {
	parser.lineCounter++
	if index := strings.Index(line, "//"); index != -1 {
		line = line[:index]
	}
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return nil, nil
	}
	keyWordTP, exist := keyWordsMap[tokens[0]]
	if !exist {
		return nil, parser.makeError(ErrInvalidCommand, line)
	}
	switch keyWordTP {
	case arithmeticKeyWordTP:
		if len(tokens) != 1 {
			return nil, parser.makeError(ErrInvalidFormat, line)
		}
		return Arithmetic{Op: opMap[tokens[0]]}, nil
	case pushKeyWordTP, popKeyWordTP:
		return parser.parseMemoryAccess(keyWordTP, tokens, line)
	case labelKeyWordTP, gotoKeyWordTP, ifGotoKeyWordTP:
		if len(tokens) != 2 {
			return nil, parser.makeError(ErrInvalidFormat, line)
		}
		switch keyWordTP {
		case labelKeyWordTP:
			return Label{Name: tokens[1]}, nil
		case gotoKeyWordTP:
			return Goto{Name: tokens[1]}, nil
		default:
			return IfGoto{Name: tokens[1]}, nil
		}
	case functionKeyWordTP, callKeyWordTP:
		if len(tokens) != 3 {
			return nil, parser.makeError(ErrInvalidFormat, line)
		}
		n, ok := parseIndex(tokens[2])
		if !ok {
			return nil, parser.makeError(ErrInvalidFormat, line)
		}
		if keyWordTP == functionKeyWordTP {
			return Function{Name: tokens[1], Locals: n}, nil
		}
		return Call{Name: tokens[1], Args: n}, nil
	case returnKeyWordTP:
		if len(tokens) != 1 {
			return nil, parser.makeError(ErrInvalidFormat, line)
		}
		return Return{}, nil
	}
	return nil, parser.makeError(ErrInvalidCommand, line)
}

// parseMemoryAccess parses `push|pop segment index`. Range checks of the index belong
// to the translator.
func (parser *Parser) parseMemoryAccess(tp keyWordTP, tokens []string, line string) (Command, error) {
	if len(tokens) != 3 {
		return nil, parser.makeError(ErrInvalidFormat, line)
	}
	segment, exist := segmentMap[tokens[1]]
	if !exist {
		return nil, parser.makeError(ErrInvalidSegment, line)
	}
	index, ok := parseIndex(tokens[2])
	if !ok {
		return nil, parser.makeError(ErrInvalidFormat, line)
	}
	if tp == pushKeyWordTP {
		return Push{Segment: segment, Index: index}, nil
	}
	return Pop{Segment: segment, Index: index}, nil
}

// parseIndex accepts non-negative decimal integers only.
func parseIndex(token string) (int, bool) {
	for i := 0; i < len(token); i++ {
		if !util.IsNumber(token[i]) {
			return 0, false
		}
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (parser *Parser) makeError(kind error, text string) error {
	return &ParseError{
		File:        parser.fileName,
		Line:        parser.lineCounter,
		Description: kind.Error(),
		Text:        strings.TrimSpace(text),
		Kind:        kind,
	}
}
