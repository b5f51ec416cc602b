package io

import (
	"bytes"
	"errors"
	"io"
	"iter"

	"github.com/ezrec/intcode/cpu"
)

// Buffer is a replayable integer FIFO, with separate read and write positions.
type Buffer struct {
	Capacity int // If non-zero, the most values the buffer will hold.

	ReadIndex int
	Data      []int64
}

var _ Channel = (*Buffer)(nil)

// NewBuffer creates a buffer holding a copy of values.
func NewBuffer(values ...int64) *Buffer {
	return &Buffer{Data: append([]int64(nil), values...)}
}

// Rewind resets the read position to the start of the buffer.
func (buff *Buffer) Rewind() {
	buff.ReadIndex = 0
}

// Reset empties the buffer.
func (buff *Buffer) Reset() {
	buff.ReadIndex = 0
	buff.Data = buff.Data[:0]
}

// Unmarshal loads buffer data in program text form, replacing any existing data.
func (buff *Buffer) Unmarshal(file io.Reader) (err error) {
	prog, err := cpu.ParseProgram(file)
	if errors.Is(err, cpu.ErrProgramEmpty) {
		buff.Data = nil
		buff.ReadIndex = 0
		err = nil
		return
	}
	if err != nil {
		return
	}

	buff.Data = prog.Words
	buff.ReadIndex = 0

	return
}

// Marshal writes the buffer's data in program text form.
func (buff *Buffer) Marshal(file io.Writer) (err error) {
	var text bytes.Buffer
	if len(buff.Data) > 0 {
		text.WriteString(cpu.NewProgram(buff.Data...).String())
	}
	text.WriteByte('\n')

	_, err = file.Write(text.Bytes())

	return
}

// Receive returns an iterator that yields values from the read position
// up to the last value written.
func (buff *Buffer) Receive() iter.Seq[int64] {
	if buff == nil {
		return func(func(int64) bool) {}
	}

	return func(yield func(value int64) bool) {
		for buff.ReadIndex < len(buff.Data) {
			value := buff.Data[buff.ReadIndex]
			buff.ReadIndex++
			if !yield(value) {
				return
			}
		}
	}
}

// Send appends a value to the buffer.
// Returns ErrChannelFull if the buffer has reached capacity.
func (buff *Buffer) Send(value int64) (err error) {
	if buff == nil {
		err = ErrChannelFull
		return
	}

	if buff.Capacity > 0 && len(buff.Data) >= buff.Capacity {
		err = ErrChannelFull
		return
	}

	buff.Data = append(buff.Data, value)

	return
}
