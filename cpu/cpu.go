package cpu

import (
	"errors"
	"fmt"
	"log"
)

// Status is the execution state of a Cpu.
type Status int

const (
	STATUS_RUNNING   = Status(0) // running
	STATUS_SUSPENDED = Status(1) // suspended
	STATUS_HALTED    = Status(2) // halted
)

func (status Status) String() string {
	switch status {
	case STATUS_RUNNING:
		return "running"
	case STATUS_SUSPENDED:
		return "suspended"
	case STATUS_HALTED:
		return "halted"
	}
	return fmt.Sprintf("Status(%d)", int(status))
}

// Cpu is the simulation context of a single Intcode processor.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory       *Memory // Tape, holding code and data.
	Ip           int64   // Current instruction pointer.
	RelativeBase int64   // Relative mode base register.
	Status       Status  // Execution state.

	MaxTicks int // If non-zero, the most instructions a single Run may execute.
	Ticks    int // Instructions executed since creation.
}

// NewCpu creates a new CPU with a private copy of the program.
func NewCpu(prog *Program) (cpu *Cpu) {
	cpu = &Cpu{
		Memory: NewMemory(prog.Words),
	}

	return
}

// Clone returns an independent copy of the CPU, including its memory.
func (cpu *Cpu) Clone() *Cpu {
	clone := *cpu
	clone.Memory = cpu.Memory.Clone()
	return &clone
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 6s: %d\n", "ip", cpu.Ip)
	text += fmt.Sprintf("% 6s: %d\n", "rb", cpu.RelativeBase)
	text += fmt.Sprintf("% 6s: %v\n", "status", cpu.Status)
	text += fmt.Sprintf("% 6s: %d\n", "memory", cpu.Memory.Len())
	text += fmt.Sprintf("% 6s: %d\n", "ticks", cpu.Ticks)
	return
}

// Halted returns true once the CPU has executed a halt instruction.
func (cpu *Cpu) Halted() bool {
	return cpu.Status == STATUS_HALTED
}

// Run executes from the current instruction pointer with inputs queued in
// order. Inputs left over when the CPU halts are discarded.
func (cpu *Cpu) Run(inputs ...int64) (outputs []int64, status Status, err error) {
	return cpu.RunQueue(NewQueue(inputs...))
}

// RunQueue executes from the current instruction pointer, consuming input
// from the queue, until the CPU halts or suspends waiting for input.
//
// Outputs are the values emitted during this call only. A halted CPU
// returns no output. Fatal errors are returned as *ErrRuntime, and no
// outputs are returned with them.
func (cpu *Cpu) RunQueue(in *Queue) (outputs []int64, status Status, err error) {
	if cpu.Status == STATUS_HALTED {
		status = cpu.Status
		return
	}

	cpu.Status = STATUS_RUNNING

	for ticks := 0; cpu.Status == STATUS_RUNNING; ticks++ {
		ip := cpu.Ip
		if cpu.MaxTicks > 0 && ticks >= cpu.MaxTicks {
			err = &ErrRuntime{Ip: ip, Err: ErrTickLimit}
			outputs = nil
			return
		}

		var value int64
		var emitted bool
		value, emitted, err = cpu.Tick(in)
		if err != nil {
			err = &ErrRuntime{Ip: ip, Err: err}
			outputs = nil
			return
		}
		if emitted {
			outputs = append(outputs, value)
		}
	}

	status = cpu.Status

	return
}

// Fetch decodes the instruction at the instruction pointer.
func (cpu *Cpu) Fetch() (ins Instruction, err error) {
	word, err := cpu.Memory.Read(cpu.Ip)
	if err != nil {
		return
	}

	ins, err = Decode(word)
	if err != nil {
		err = errors.Join(ErrOpcodeDecode, err)
		return
	}

	return
}

// Tick executes a single instruction cycle.
//
// When the instruction is an input and the queue is empty, the CPU is
// suspended and the instruction pointer is left on the input instruction.
func (cpu *Cpu) Tick(in *Queue) (output int64, emitted bool, err error) {
	if cpu.Status == STATUS_HALTED {
		return
	}

	cpu.Status = STATUS_RUNNING

	ins, err := cpu.Fetch()
	if err != nil {
		return
	}

	return cpu.Execute(ins, in)
}

// Execute executes a single decoded instruction located at the instruction pointer.
func (cpu *Cpu) Execute(ins Instruction, in *Queue) (output int64, emitted bool, err error) {
	if cpu.Verbose {
		log.Printf("%d: %v", cpu.Ip, ins)
	}

	next_ip := cpu.Ip + ins.Width()

	switch ins.Op {
	case OP_ADD, OP_MUL, OP_LT, OP_EQ:
		var a, b, addr int64
		a, err = cpu.getValue(ins, 1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		b, err = cpu.getValue(ins, 2)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		addr, err = cpu.getAddress(ins, 3)
		if err != nil {
			err = errors.Join(ErrOpcodeArg3, err)
			return
		}
		err = cpu.Memory.Write(addr, doAlu(ins.Op, a, b))
		if err != nil {
			err = errors.Join(ErrOpcodeArg3, err)
			return
		}
	case OP_IN:
		if in == nil || in.Empty() {
			// Don't advance to next IP.
			cpu.Status = STATUS_SUSPENDED
			return
		}
		var addr int64
		addr, err = cpu.getAddress(ins, 1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		value, _ := in.Pop()
		err = cpu.Memory.Write(addr, value)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
	case OP_OUT:
		output, err = cpu.getValue(ins, 1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		emitted = true
	case OP_JNZ, OP_JZ:
		var cond, target int64
		cond, err = cpu.getValue(ins, 1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		target, err = cpu.getValue(ins, 2)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		if (cond != 0) == (ins.Op == OP_JNZ) {
			if target < 0 {
				err = errors.Join(ErrOpcodeArg2, ErrAddress(target))
				return
			}
			next_ip = target
		}
	case OP_ARB:
		var offset int64
		offset, err = cpu.getValue(ins, 1)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		cpu.RelativeBase += offset
	case OP_HALT:
		cpu.Status = STATUS_HALTED
		next_ip = cpu.Ip
	default:
		err = ErrOpcode(ins.Word)
		return
	}

	cpu.Ip = next_ip
	cpu.Ticks++

	return
}

// getAddress resolves parameter n, starting at 1, to a memory address.
// Immediate parameters resolve to the address of the parameter itself.
func (cpu *Cpu) getAddress(ins Instruction, n int) (addr int64, err error) {
	param := cpu.Ip + int64(n)

	mode := ins.Mode(n)
	if mode == MODE_IMMEDIATE {
		addr = param
		return
	}

	raw, err := cpu.Memory.Read(param)
	if err != nil {
		return
	}

	switch mode {
	case MODE_POSITION:
		addr = raw
	case MODE_RELATIVE:
		addr = raw + cpu.RelativeBase
	default:
		panic("unknown mode")
	}

	if addr < 0 {
		err = ErrAddress(addr)
		return
	}

	return
}

// getValue returns the value of parameter n, starting at 1.
func (cpu *Cpu) getValue(ins Instruction, n int) (value int64, err error) {
	addr, err := cpu.getAddress(ins, n)
	if err != nil {
		return
	}

	value, err = cpu.Memory.Read(addr)
	return
}

// doAlu performs the arithmetic or comparison operation.
func doAlu(op Op, a, b int64) (output int64) {
	switch op {
	case OP_ADD:
		output = a + b
	case OP_MUL:
		output = a * b
	case OP_LT:
		if a < b {
			output = 1
		}
	case OP_EQ:
		if a == b {
			output = 1
		}
	}

	return
}
