// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator drives a single Intcode processor against I/O channels.
package emulator

import (
	"errors"
	"log"

	"github.com/ezrec/intcode/cpu"
	"github.com/ezrec/intcode/io"
)

// Emulator state. CPU + input queue + IO channels.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Input  io.Channel // Input channel, drained when the CPU waits for input.
	Output io.Channel // Output channel, sent each output value.

	queue cpu.Queue
}

// NewEmulator creates a new emulator for a program.
func NewEmulator(prog *cpu.Program, input, output io.Channel) (emu *Emulator) {
	emu = &Emulator{
		Program: prog,
		Input:   input,
		Output:  output,
	}

	emu.Reset()

	return
}

// Reset reloads the program image, and discards any pending input.
func (emu *Emulator) Reset() {
	max_ticks := 0
	if emu.Cpu != nil {
		max_ticks = emu.Cpu.MaxTicks
	}

	emu.Cpu = cpu.NewCpu(emu.Program)
	emu.Cpu.MaxTicks = max_ticks
	emu.queue.Reset()
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Ip)
}

// Pending returns the number of input values queued for the CPU.
func (emu *Emulator) Pending() int {
	return emu.queue.Len()
}

// refill moves available input from the input channel to the CPU queue.
func (emu *Emulator) refill() (err error) {
	if emu.Input != nil {
		for value := range emu.Input.Receive() {
			emu.queue.Push(value)
		}
	}

	if emu.queue.Empty() {
		err = ErrInputExhausted
		return
	}

	if emu.Verbose {
		log.Printf("input: %v", emu.queue.Data)
	}

	return
}

// send writes outputs to the output channel.
func (emu *Emulator) send(outputs ...int64) (err error) {
	if emu.Output == nil {
		return
	}

	for _, value := range outputs {
		err = emu.Output.Send(value)
		if err != nil {
			return
		}
	}

	return
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted() {
		done = true
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	value, emitted, err := emu.Cpu.Tick(&emu.queue)
	if err != nil {
		return
	}

	if emitted {
		err = emu.send(value)
		if err != nil {
			return
		}
	}

	if emu.Cpu.Status == cpu.STATUS_SUSPENDED {
		err = emu.refill()
		if err != nil {
			return
		}
	}

	done = emu.Cpu.Halted()

	return
}

// Run executes the program until it halts.
func (emu *Emulator) Run() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	for !emu.Cpu.Halted() {
		var outputs []int64
		var status cpu.Status
		outputs, status, err = emu.Cpu.RunQueue(&emu.queue)
		if err != nil {
			lineno := emu.LineNo()
			var runtime *cpu.ErrRuntime
			if errors.As(err, &runtime) {
				lineno = emu.Program.LineNo(runtime.Ip)
			}
			err = &ErrRuntime{LineNo: lineno, Err: err}
			return
		}

		err = emu.send(outputs...)
		if err != nil {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: err}
			return
		}

		if status == cpu.STATUS_SUSPENDED {
			err = emu.refill()
			if err != nil {
				err = &ErrRuntime{LineNo: emu.LineNo(), Err: err}
				return
			}
		}
	}

	return
}
