package emulator

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/io"
)

func assemble(t *testing.T, program []string) *cpu.Program {
	asm := &cpu.Assembler{}
	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	if err != nil {
		t.Fatal(err)
	}
	return prog
}

var echoLine = []string{
	"loop:   in char",
	"        out char",
	"        eq char #'\\n' flag",
	"        jz flag #loop",
	"        out #1000",
	"        halt",
	"char:   .data 0",
	"flag:   .data 0",
}

func TestEmulator(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(cpu.NewProgram(99), nil, nil)

	assert.False(emu.Verbose)
	assert.NotNil(emu.Cpu)
	assert.Equal(0, emu.Pending())

	assert.NoError(emu.Run())
	assert.True(emu.Halted())
}

func TestEmulatorTape(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	tape := &io.Tape{Input: strings.NewReader("hi\nthere\n"), Output: &output}

	emu := NewEmulator(assemble(t, echoLine), tape, tape)
	assert.NoError(emu.Run())

	assert.Equal("hi\n1000\n", output.String())
	assert.Equal([]int64{1000}, tape.Values)

	// Only the first line was consumed.
	output.Reset()
	tape.Values = nil
	emu.Reset()
	assert.NoError(emu.Run())
	assert.Equal("there\n1000\n", output.String())
}

func TestEmulatorInputExhausted(t *testing.T) {
	assert := assert.New(t)

	var output bytes.Buffer
	tape := &io.Tape{Input: strings.NewReader("hi"), Output: &output}

	emu := NewEmulator(assemble(t, echoLine), tape, tape)
	err := emu.Run()
	assert.True(errors.Is(err, ErrInputExhausted))

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(1, runtime.LineNo)
	assert.Equal("hi", output.String())

	// No input channel at all.
	emu = NewEmulator(assemble(t, echoLine), nil, nil)
	err = emu.Run()
	assert.True(errors.Is(err, ErrInputExhausted))
}

func TestEmulatorRuntimeError(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"out #1",
		".data 42",
	}

	emu := NewEmulator(assemble(t, program), nil, io.NewBuffer())
	err := emu.Run()
	assert.True(errors.Is(err, cpu.ErrOpcode(0)))

	var runtime *ErrRuntime
	assert.True(errors.As(err, &runtime))
	assert.Equal(2, runtime.LineNo)
}

func TestEmulatorTick(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"in x",
		"mul x #2 x",
		"out x",
		"halt",
		"x: .data 0",
	}

	prog := assemble(t, program)
	output := io.NewBuffer()
	emu := NewEmulator(prog, io.NewBuffer(21), output)

	// The first tick finds no input queued, and fetches it.
	done, err := emu.Tick()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(int64(0), emu.Ip)
	assert.Equal(1, emu.Pending())

	for _, op := range prog.Opcodes[:3] {
		assert.Equal(op.LineNo, emu.LineNo())
		assert.Equal(op.Ip, emu.Ip)
		done, err = emu.Tick()
		assert.NoError(err, program[op.LineNo-1])
		assert.False(done, program[op.LineNo-1])
	}

	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)

	assert.Equal([]int64{42}, output.Data)

	// Further ticks are no-ops.
	done, err = emu.Tick()
	assert.NoError(err)
	assert.True(done)
}

func TestEmulatorMaxTicks(t *testing.T) {
	assert := assert.New(t)

	emu := NewEmulator(assemble(t, []string{"loop: jump #loop"}), nil, nil)
	emu.MaxTicks = 50

	err := emu.Run()
	assert.True(errors.Is(err, cpu.ErrTickLimit))

	// Reset keeps the tick limit.
	emu.Reset()
	assert.Equal(50, emu.MaxTicks)
	assert.Equal(0, emu.Ticks)
}

func TestEmulatorOutputFull(t *testing.T) {
	assert := assert.New(t)

	program := []string{
		"out #1",
		"out #2",
		"halt",
	}

	output := &io.Buffer{Capacity: 1}
	emu := NewEmulator(assemble(t, program), nil, output)

	err := emu.Run()
	assert.True(errors.Is(err, io.ErrChannelFull))
	assert.Equal([]int64{1}, output.Data)
}
