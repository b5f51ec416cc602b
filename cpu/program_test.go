package cpu

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProgram(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text  string
		words []int64
	}){
		{"1,0,0,3,99", []int64{1, 0, 0, 3, 99}},
		{"1,0,0,3,99\n", []int64{1, 0, 0, 3, 99}},
		{" 104, -7 ,\t99 \r\n", []int64{104, -7, 99}},
		{"42", []int64{42}},
		{"1125899906842624,99", []int64{1125899906842624, 99}},
	}

	for _, entry := range table {
		prog, err := ParseProgram(strings.NewReader(entry.text))
		assert.NoError(err, entry.text)
		assert.Equal(entry.words, prog.Words, entry.text)
	}
}

func TestParseProgram_Errors(t *testing.T) {
	assert := assert.New(t)

	for _, text := range []string{"", "\n", "   "} {
		_, err := ParseProgram(strings.NewReader(text))
		assert.True(errors.Is(err, ErrProgramEmpty), "%q", text)
	}

	table := [](struct {
		text  string
		index int
		token string
	}){
		{"1,x,3", 1, "x"},
		{"1,,3", 1, ""},
		{"1.5,99", 0, "1.5"},
		{"99999999999999999999", 0, "99999999999999999999"},
	}

	for _, entry := range table {
		_, err := ParseProgram(strings.NewReader(entry.text))
		var parse ErrParseProgram
		assert.True(errors.As(err, &parse), entry.text)
		assert.Equal(entry.index, parse.Index, entry.text)
		assert.Equal(entry.token, parse.Token, entry.text)
	}
}

func TestProgram_String(t *testing.T) {
	assert := assert.New(t)

	text := "3,0,4,0,99,-1"
	prog, err := ParseProgram(strings.NewReader(text + "\n"))
	assert.NoError(err)
	assert.Equal(text, prog.String())

	words := []int64{1, 2, 3}
	prog = NewProgram(words...)
	words[0] = 5
	assert.Equal("1,2,3", prog.String())
}

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := NewProgram(104, 1, 99)
	assert.Nil(prog.Debug(0).Opcode)
	assert.Equal(0, prog.LineNo(0))

	prog = assemble(t, "out #1", "", "halt")

	dbg := prog.Debug(1)
	assert.NotNil(dbg.Opcode)
	assert.Equal(1, dbg.Index)
	assert.Equal(int64(0), dbg.Ip)
	assert.Equal(3, prog.LineNo(2))
}
