package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
)

// Tape provides the ASCII terminal convention over byte streams.
//
// Input is served one line at a time, so that interactive programs see
// a response only to their prompt. Output values in the character range
// are written as bytes. Other values are recorded in Values, and written
// as a decimal line.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Values []int64 // Out of band output values.

	reader *bufio.Reader
	source io.Reader
}

var _ Channel = (*Tape)(nil)

// Rewind discards buffered input and recorded values. The streams
// themselves cannot be rewound.
func (tc *Tape) Rewind() {
	tc.reader = nil
	tc.source = nil
	tc.Values = nil
}

// Receive returns an iterator that yields the bytes of the next input line,
// including its newline.
func (tc *Tape) Receive() iter.Seq[int64] {
	return func(yield func(value int64) bool) {
		if tc.Input == nil {
			return
		}
		if tc.reader == nil || tc.source != tc.Input {
			tc.reader = bufio.NewReader(tc.Input)
			tc.source = tc.Input
		}
		for {
			c, err := tc.reader.ReadByte()
			if err != nil {
				return
			}
			if !yield(int64(c)) {
				return
			}
			if c == '\n' {
				return
			}
		}
	}
}

// Send writes a value to the output stream.
func (tc *Tape) Send(value int64) (err error) {
	if value < 0 || value > ASCII_MAX {
		tc.Values = append(tc.Values, value)
		if tc.Output != nil {
			_, err = fmt.Fprintf(tc.Output, "%d\n", value)
		}
		return
	}

	if tc.Output != nil {
		_, err = tc.Output.Write([]byte{byte(value)})
	}

	return
}
