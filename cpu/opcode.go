package cpu

import (
	"fmt"
	"strings"
)

// Op is an Intcode operation.
type Op int

const (
	OP_ADD  = Op(1)  // add
	OP_MUL  = Op(2)  // mul
	OP_IN   = Op(3)  // in
	OP_OUT  = Op(4)  // out
	OP_JNZ  = Op(5)  // jnz
	OP_JZ   = Op(6)  // jz
	OP_LT   = Op(7)  // lt
	OP_EQ   = Op(8)  // eq
	OP_ARB  = Op(9)  // arb
	OP_HALT = Op(99) // halt
)

// Mode is a parameter addressing mode.
type Mode int

const (
	MODE_POSITION  = Mode(0) // position
	MODE_IMMEDIATE = Mode(1) // immediate
	MODE_RELATIVE  = Mode(2) // relative
)

// Role is the use a parameter is put to by its operation.
type Role int

const (
	ROLE_READ  = Role(0) // read
	ROLE_WRITE = Role(1) // write
)

// opInfo is the parameter roles and mnemonic of each operation.
var opInfo = map[Op]struct {
	name  string
	roles []Role
}{
	OP_ADD:  {"add", []Role{ROLE_READ, ROLE_READ, ROLE_WRITE}},
	OP_MUL:  {"mul", []Role{ROLE_READ, ROLE_READ, ROLE_WRITE}},
	OP_IN:   {"in", []Role{ROLE_WRITE}},
	OP_OUT:  {"out", []Role{ROLE_READ}},
	OP_JNZ:  {"jnz", []Role{ROLE_READ, ROLE_READ}},
	OP_JZ:   {"jz", []Role{ROLE_READ, ROLE_READ}},
	OP_LT:   {"lt", []Role{ROLE_READ, ROLE_READ, ROLE_WRITE}},
	OP_EQ:   {"eq", []Role{ROLE_READ, ROLE_READ, ROLE_WRITE}},
	OP_ARB:  {"arb", []Role{ROLE_READ}},
	OP_HALT: {"halt", nil},
}

// opByName maps mnemonics back to operations.
var opByName = func() map[string]Op {
	names := make(map[string]Op, len(opInfo))
	for op, info := range opInfo {
		names[info.name] = op
	}
	return names
}()

// Valid returns true if the operation is known.
func (op Op) Valid() bool {
	_, ok := opInfo[op]
	return ok
}

// Roles returns the parameter roles of the operation.
func (op Op) Roles() []Role {
	return opInfo[op].roles
}

// Width returns the number of words the operation occupies.
func (op Op) Width() int64 {
	return 1 + int64(len(opInfo[op].roles))
}

func (op Op) String() string {
	info, ok := opInfo[op]
	if !ok {
		return fmt.Sprintf("Op(%d)", int(op))
	}
	return info.name
}

func (mode Mode) String() string {
	switch mode {
	case MODE_POSITION:
		return "position"
	case MODE_IMMEDIATE:
		return "immediate"
	case MODE_RELATIVE:
		return "relative"
	}
	return fmt.Sprintf("Mode(%d)", int(mode))
}

// Prefix returns the assembler operand prefix of the mode.
func (mode Mode) Prefix() string {
	switch mode {
	case MODE_IMMEDIATE:
		return "#"
	case MODE_RELATIVE:
		return "@"
	}
	return ""
}

func (role Role) String() string {
	if role == ROLE_WRITE {
		return "write"
	}
	return "read"
}

// Instruction is a decoded instruction word.
type Instruction struct {
	Word  int64  // Raw instruction word.
	Op    Op     // Operation.
	Modes []Mode // Mode of each parameter, in parameter order.
}

// Decode decodes an instruction word into its operation and parameter modes.
//
// Mode digits past the operation's parameter count are ignored.
func Decode(word int64) (ins Instruction, err error) {
	if word < 0 {
		err = ErrOpcode(word)
		return
	}

	op := Op(word % 100)
	info, ok := opInfo[op]
	if !ok {
		err = ErrOpcode(word)
		return
	}

	ins = Instruction{Word: word, Op: op}
	if len(info.roles) == 0 {
		return
	}

	ins.Modes = make([]Mode, len(info.roles))
	digits := word / 100
	for n, role := range info.roles {
		digit := digits % 10
		digits /= 10
		mode := Mode(digit)
		switch mode {
		case MODE_POSITION, MODE_RELATIVE:
		case MODE_IMMEDIATE:
			if role == ROLE_WRITE {
				err = ErrOutputMode{Word: word, Param: n + 1}
				return
			}
		default:
			err = ErrMode{Word: word, Param: n + 1, Digit: digit}
			return
		}
		ins.Modes[n] = mode
	}

	return
}

// Encode creates an instruction word from an operation and its modes.
// Missing modes are position mode.
func Encode(op Op, modes ...Mode) (word int64) {
	word = int64(op)
	scale := int64(100)
	for _, mode := range modes {
		word += int64(mode) * scale
		scale *= 10
	}
	return
}

// Width returns the number of words the instruction occupies.
func (ins Instruction) Width() int64 {
	return ins.Op.Width()
}

// Mode returns the mode of parameter n, starting at 1.
func (ins Instruction) Mode(n int) Mode {
	if n < 1 || n > len(ins.Modes) {
		return MODE_POSITION
	}
	return ins.Modes[n-1]
}

// Format renders the instruction in assembler syntax with its parameters.
func (ins Instruction) Format(params ...int64) string {
	words := []string{ins.Op.String()}
	for n, param := range params {
		words = append(words, fmt.Sprintf("%s%d", ins.Mode(n+1).Prefix(), param))
	}
	return strings.Join(words, " ")
}

// String returns the mnemonic and modes of the instruction.
func (ins Instruction) String() string {
	if len(ins.Modes) == 0 {
		return ins.Op.String()
	}

	modes := make([]string, len(ins.Modes))
	for n, mode := range ins.Modes {
		modes[n] = mode.String()
	}
	return fmt.Sprintf("%v.%v", ins.Op, strings.Join(modes, "."))
}
