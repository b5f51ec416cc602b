package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func assemble(t *testing.T, lines ...string) *Program {
	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatal(err)
	}

	return prog
}

func opEqual(t *testing.T, expected, opcodes []Opcode) {
	assert := assert.New(t)

	assert.Equal(len(expected), len(opcodes))
	if len(expected) == len(opcodes) {
		for n := range len(expected) {
			assert.Equal(expected[n], opcodes[n])
		}
	}
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, len(prog.Words))

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal("0", asm.Equate["MODE_POSITION"])
	assert.Equal("1", asm.Equate["MODE_IMMEDIATE"])
	assert.Equal("2", asm.Equate["MODE_RELATIVE"])
}

func TestAssemblerInstructions(t *testing.T) {
	prog := assemble(t,
		"in 100        ; position",
		"out #7",
		"add @1 #2 100",
		"arb #-3",
		"mult 0x10 #0 @-1",
		"halt",
	)

	expected := []Opcode{
		{1, 0, []string{"in", "100"}, []int64{3, 100}},
		{2, 2, []string{"out", "#7"}, []int64{104, 7}},
		{3, 4, []string{"add", "@1", "#2", "100"}, []int64{1201, 1, 2, 100}},
		{4, 8, []string{"arb", "#-3"}, []int64{109, -3}},
		{5, 10, []string{"mult", "0x10", "#0", "@-1"}, []int64{21002, 16, 0, -1}},
		{6, 14, []string{"halt"}, []int64{99}},
	}

	opEqual(t, expected, prog.Opcodes)
	assert.Equal(t, []int64{3, 100, 104, 7, 1201, 1, 2, 100, 109, -3, 21002, 16, 0, -1, 99}, prog.Words)
}

func TestAssemblerLabel(t *testing.T) {
	prog := assemble(t,
		"jump #end",
		"loop: out #1",
		"jt #1 #loop",
		"",
		"end: AND_ALSO:",
		"halt",
		"ptr: .data end loop+1",
	)

	expected := []Opcode{
		{1, 0, []string{"jump", "#end"}, []int64{1105, 1, 8}},
		{2, 3, []string{"out", "#1"}, []int64{104, 1}},
		{3, 5, []string{"jt", "#1", "#loop"}, []int64{1105, 1, 3}},
		{6, 8, []string{"halt"}, []int64{99}},
		{7, 9, []string{".data", "end", "loop+1"}, []int64{8, 4}},
	}

	opEqual(t, expected, prog.Opcodes)
}

func TestAssemblerEqu(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ BASE 100",
		"out BASE",
		"out #$(BASE * 2 + 1)",
		".equ TWICE $(2 * BASE)",
		"in @TWICE",
		"out #$(LINENO * 10)",
		"out #$(IP)",
	)

	assert.Equal([]int64{4, 100, 104, 201, 203, 200, 104, 60, 104, 8}, prog.Words)
}

func TestAssemblerData(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		"msg: .ascii \"Hi;\\n\"",
		"out #'A'",
		".data ';' '\\n' -5",
		".zero 3",
		"out #msg",
	)

	assert.Equal([]int64{72, 105, 59, 10, 104, 65, 59, 10, -5, 0, 0, 0, 104, 0}, prog.Words)
	assert.Equal([]string{"out", "#65"}, prog.Opcodes[1].Words)
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".macro COUNTDOWN n",
		"        mov #n %ctr",
		"%loop:  out %ctr",
		"        add %ctr #-1 %ctr",
		"        jt %ctr #%loop",
		"        jump #%done",
		"%ctr:   .data 0",
		"%done:",
		".endm",
		"        COUNTDOWN 2",
		"        COUNTDOWN 1",
		"        halt",
	)

	// Each expansion is listed with the macro's own line numbers.
	assert.Equal(2, prog.Opcodes[0].LineNo)
	assert.Equal(2, prog.Opcodes[6].LineNo)

	cpu := NewCpu(prog)
	outputs, status, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATUS_HALTED, status)
	assert.Equal([]int64{2, 1, 1}, outputs)
}

func TestAssemblerRun(t *testing.T) {
	assert := assert.New(t)

	prog := assemble(t,
		".equ N 3",
		"        mov #N count",
		"loop:   out count",
		"        add count #-1 count",
		"        jt count #loop",
		"        halt",
		"count:  .data 0",
	)

	cpu := NewCpu(prog)
	outputs, status, err := cpu.Run()
	assert.NoError(err)
	assert.Equal(STATUS_HALTED, status)
	assert.Equal([]int64{3, 2, 1}, outputs)

	assert.Equal(6, prog.LineNo(cpu.Ip))
	assert.Equal(3, prog.LineNo(4))
	assert.Equal(7, prog.LineNo(14))
	assert.Equal(0, prog.LineNo(100))
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		source string
		err    error
	}){
		{"add #1 #2 #3", ErrTargetInvalid},
		{"in #5", ErrTargetInvalid},
		{"bogus 1", ErrOpcodeInvalid},
		{"add 1 2", ErrOpcodeValueMissing},
		{"out 1 2", ErrOpcodeExtraArgs},
		{"x: halt\nx: halt", ErrLabelDuplicate},
		{".equ A 1\n.equ A 2", ErrEquateDuplicate},
		{".equ A", ErrEquateSyntax},
		{".macro M\nhalt", ErrMacroLonely},
		{".endm", ErrMacroLonelyEndm},
		{".macro M\n.macro N", ErrMacroNesting},
		{".macro M\n.endm\n.macro M\n.endm", ErrMacroDuplicate},
		{".macro M a\nout a\n.endm\nM", ErrMacroSyntax},
		{".macro M\nadd 1\n.endm\nM", ErrOpcodeValueMissing},
		{".data", ErrOpcodeValueMissing},
		{".ascii \"a\\q\"", ErrStringSyntax},
	}

	for _, entry := range table {
		asm := &Assembler{}
		_, err := asm.Parse(strings.NewReader(entry.source))
		assert.True(errors.Is(err, entry.err), "%v: %v", entry.source, err)
	}

	asm := &Assembler{}
	_, err := asm.Parse(strings.NewReader("halt\njump #nowhere"))
	var missing ErrLabelMissing
	assert.True(errors.As(err, &missing))
	assert.Equal(ErrLabelMissing("nowhere"), missing)
	var syntax *ErrSyntax
	assert.True(errors.As(err, &syntax))
	assert.Equal(2, syntax.LineNo)

	_, err = asm.Parse(strings.NewReader(".data #1"))
	var operand ErrParseOperand
	assert.True(errors.As(err, &operand))

	_, err = asm.Parse(strings.NewReader("out #$(1 +)"))
	assert.Error(err)
}

func TestAssemblerPredefine(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("ANSWER", "42")

	prog, err := asm.Parse(strings.NewReader("out #ANSWER\nhalt"))
	assert.NoError(err)

	outputs, _, err := NewCpu(prog).Run()
	assert.NoError(err)
	assert.Equal([]int64{42}, outputs)
}
