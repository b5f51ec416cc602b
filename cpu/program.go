package cpu

import (
	"bufio"
	"bytes"
	"io"
	"slices"
	"strconv"
	"strings"
)

// Program is an Intcode tape image, with an optional assembler listing.
type Program struct {
	Words   []int64  // Initial memory contents.
	Opcodes []Opcode // Assembler listing, if assembled from source.
}

// Opcode represents a line of assembled code with its source location and generated words.
type Opcode struct {
	LineNo int      // Source line number.
	Ip     int64    // Address of the first generated word.
	Words  []string // Source words, after equate substitution.
	Codes  []int64  // Generated words.
}

// Debug locates the listing entry of an address.
type Debug struct {
	*Opcode
	Index int
}

// NewProgram creates a program from a copy of words.
func NewProgram(words ...int64) *Program {
	return &Program{Words: slices.Clone(words)}
}

// scanComma is a bufio.SplitFunc for comma separated tokens.
func scanComma(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexByte(data, ','); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

// ParseProgram reads comma separated decimal integers as a program.
func ParseProgram(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)
	scanner.Split(scanComma)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, strings.TrimSpace(scanner.Text()))
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if len(tokens) == 0 || (len(tokens) == 1 && len(tokens[0]) == 0) {
		err = ErrProgramEmpty
		return
	}

	words := make([]int64, len(tokens))
	for index, token := range tokens {
		words[index], err = strconv.ParseInt(token, 10, 64)
		if err != nil {
			err = ErrParseProgram{Index: index, Token: token}
			return
		}
	}

	prog = &Program{Words: words}

	return
}

// String returns the program in comma separated form.
func (prog *Program) String() string {
	text := make([]string, len(prog.Words))
	for n, word := range prog.Words {
		text[n] = strconv.FormatInt(word, 10)
	}
	return strings.Join(text, ",")
}

// Debug returns the listing entry that generated the word at ip.
func (prog *Program) Debug(ip int64) (dbg Debug) {
	for n, op := range prog.Opcodes {
		if ip >= op.Ip && ip < op.Ip+int64(len(op.Codes)) {
			dbg = Debug{
				Opcode: &prog.Opcodes[n],
				Index:  int(ip - op.Ip),
			}
			break
		}
	}

	return
}

// LineNo returns the source line number of ip, or 0 if unknown.
func (prog *Program) LineNo(ip int64) int {
	dbg := prog.Debug(ip)
	if dbg.Opcode == nil {
		return 0
	}
	return dbg.LineNo
}
