package io

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTape_Receive(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: strings.NewReader("AB\nC\nD")}

	assert.Equal([]int64{'A', 'B', '\n'}, slices.Collect(tape.Receive()))
	assert.Equal([]int64{'C', '\n'}, slices.Collect(tape.Receive()))
	assert.Equal([]int64{'D'}, slices.Collect(tape.Receive()))
	assert.Empty(slices.Collect(tape.Receive()))

	// A new input stream is picked up.
	tape.Input = strings.NewReader("E\n")
	assert.Equal([]int64{'E', '\n'}, slices.Collect(tape.Receive()))

	tape = &Tape{}
	assert.Empty(slices.Collect(tape.Receive()))
}

func TestTape_Send(t *testing.T) {
	assert := assert.New(t)

	var out bytes.Buffer
	tape := &Tape{Output: &out}

	for _, value := range []int64{'o', 'k', '\n', 19355, -4, 255, 256} {
		assert.NoError(tape.Send(value))
	}

	assert.Equal("ok\n19355\n-4\n\xff256\n", out.String())
	assert.Equal([]int64{19355, -4, 256}, tape.Values)

	tape.Rewind()
	assert.Nil(tape.Values)

	// No output stream is not an error.
	tape = &Tape{}
	assert.NoError(tape.Send(1000))
	assert.Equal([]int64{1000}, tape.Values)
}
