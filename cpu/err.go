package cpu

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	// Cpu errors
	ErrMemoryLimit  = errors.New(f("memory limit"))
	ErrTickLimit    = errors.New(f("tick limit"))
	ErrProgramEmpty = errors.New(f("program empty"))

	// Instruction decode errors
	ErrOpcodeDecode = errors.New(f("decode"))
	ErrOpcodeArg1   = errors.New(f("arg1"))
	ErrOpcodeArg2   = errors.New(f("arg2"))
	ErrOpcodeArg3   = errors.New(f("arg3"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrOpcodeExtraArgs    = errors.New(f("excessive arguments"))
	ErrOpcodeValueMissing = errors.New(f("value missing"))
	ErrOpcodeInvalid      = errors.New(f("opcode invalid"))
	ErrTargetInvalid      = errors.New(f("target invalid"))
	ErrStringSyntax       = errors.New(f("string syntax"))
)

// ErrOpcode is an instruction word with an unknown opcode.
type ErrOpcode int64

func (eo ErrOpcode) Error() string {
	return f("bad opcode %d", int64(eo))
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

// ErrMode is an instruction word with an unknown parameter mode digit.
type ErrMode struct {
	Word  int64 // Instruction word.
	Param int   // Parameter index, starting at 1.
	Digit int64 // The offending mode digit.
}

func (err ErrMode) Error() string {
	return f("%d: parameter %d mode %d invalid", err.Word, err.Param, err.Digit)
}

// ErrOutputMode is a write parameter decoded with immediate mode.
type ErrOutputMode struct {
	Word  int64 // Instruction word.
	Param int   // Parameter index, starting at 1.
}

func (err ErrOutputMode) Error() string {
	return f("%d: parameter %d is written, immediate mode invalid", err.Word, err.Param)
}

// ErrAddress is a negative resolved memory address.
type ErrAddress int64

func (err ErrAddress) Error() string {
	return f("address %d invalid", int64(err))
}

func (err ErrAddress) Is(target error) (ok bool) {
	_, ok = target.(ErrAddress)
	return
}

// ErrRuntime indicates the instruction pointer of a fatal runtime error.
type ErrRuntime struct {
	Ip  int64
	Err error
}

func (err *ErrRuntime) Error() string {
	return f("ip %d %v", err.Ip, err.Err)
}

func (err *ErrRuntime) Unwrap() error {
	return err.Err
}

// ErrParseProgram is a malformed token in program text.
type ErrParseProgram struct {
	Index int    // Zero based token index.
	Token string // Token text.
}

func (err ErrParseProgram) Error() string {
	return f("token %d '%v' is not a number", err.Index, err.Token)
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseNumber string

func (err ErrParseNumber) Error() string {
	return f("'%v' is not a number", string(err))
}

type ErrParseOperand string

func (err ErrParseOperand) Error() string {
	return f("'%v' is not an operand", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
