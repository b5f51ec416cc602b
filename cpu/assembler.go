// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":         "0",
	"MODE_POSITION":  fmt.Sprintf("%d", MODE_POSITION),
	"MODE_IMMEDIATE": fmt.Sprintf("%d", MODE_IMMEDIATE),
	"MODE_RELATIVE":  fmt.Sprintf("%d", MODE_RELATIVE),
}

// link is a generated word waiting on a label address.
type link struct {
	opcode int    // Index into Assembler.Opcode.
	code   int    // Index into Opcode.Codes.
	label  string // Label name.
}

// Assembler is a single pass macro assembler for Intcode.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]string   // Predefines
	Label     map[string]int64    // Map of labels to addresses.
	Equate    map[string]string   // Map of equates.
	Macro     map[string](*Macro) // Map of macros.

	links     []link
	expansion int // Count of macro expansions, for local labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// valueOf returns the value of a simple word.
func (asm *Assembler) valueOf(word string) (value int64, err error) {
	value, err = strconv.ParseInt(word, 0, 64)
	if err != nil {
		err = ErrParseNumber(word)
		return
	}

	return
}

var reLabel = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.]*$`)

// operand parses a parameter word.
//
//	N      position mode
//	#N     immediate mode
//	@N     relative mode
//
// N is a number, or a label with an optional +/- offset.
func (asm *Assembler) operand(word string) (mode Mode, value int64, label string, err error) {
	mode = MODE_POSITION
	switch {
	case strings.HasPrefix(word, "#"):
		mode = MODE_IMMEDIATE
		word = word[1:]
	case strings.HasPrefix(word, "@"):
		mode = MODE_RELATIVE
		word = word[1:]
	}

	if len(word) == 0 {
		err = ErrParseOperand(word)
		return
	}

	value, err = asm.valueOf(word)
	if err == nil {
		return
	}

	name := word
	value = 0
	if n := strings.LastIndexAny(word[1:], "+-"); n >= 0 {
		n++
		name = word[:n]
		value, err = asm.valueOf(word[n:])
		if err != nil {
			err = ErrParseOperand(word)
			return
		}
	}

	if !reLabel.MatchString(name) {
		err = ErrParseOperand(word)
		return
	}

	label = name
	err = nil

	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var value64 int64
		value64, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates.
			continue
		}
		pred[key] = starlark.MakeInt64(value64)
	}
	err = nil
	for key, ip := range asm.Label {
		if _, ok := pred[key]; !ok {
			pred[key] = starlark.MakeInt64(ip)
		}
	}
	pred["IP"] = starlark.MakeInt64(asm.currentIp())
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	return
}

var (
	reChar  = regexp.MustCompile(`'\\?[^']'`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
	reAscii = regexp.MustCompile(`^((?:\S+:\s+)*)\.ascii\s+(".*")$`)
)

// asciiData rewrites `.ascii "text"` as `.data` of the character values.
func asciiData(line string) (out string, err error) {
	match := reAscii.FindStringSubmatch(line)
	if match == nil {
		out = line
		return
	}

	text, err := strconv.Unquote(match[2])
	if err != nil {
		err = ErrStringSyntax
		return
	}

	words := []string{match[1] + ".data"}
	for _, c := range []byte(text) {
		words = append(words, strconv.Itoa(int(c)))
	}
	out = strings.Join(words, " ")

	return
}

// parseLine parses a single line as an opcode.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	line, err = asciiData(line)
	if err != nil {
		return
	}

	// Do 'x' evaluations
	line = reChar.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%v", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(line)

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words {
		// Equates may be used bare, or behind a mode prefix.
		prefix := ""
		if strings.HasPrefix(word, "#") || strings.HasPrefix(word, "@") {
			prefix, word = word[:1], word[1:]
		}
		equate, ok := asm.Equate[word]
		if ok {
			words[n] = prefix + equate
		}
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		if asm.Label == nil {
			asm.Label = make(map[string]int64, 16)
		}
		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = words[1+n]
		}
		defer func() { asm.Equate = old_equate }()

		// '%' in a macro body expands to a prefix unique to this expansion.
		asm.expansion++
		local := fmt.Sprintf("%v_%v_", name, asm.expansion)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "%", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, macro.LineNo+n)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int64 {
	if len(asm.Opcode) == 0 {
		return 0
	}

	last := asm.Opcode[len(asm.Opcode)-1]

	return last.Ip + int64(len(last.Codes))
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Opcode = asm.Opcode[:0]
	asm.links = asm.links[:0]
	asm.expansion = 0
	if asm.Macro == nil {
		asm.Macro = make(map[string](*Macro))
	}
	clear(asm.Macro)
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of labels.
	for _, ln := range asm.links {
		op := &asm.Opcode[ln.opcode]
		ip, ok := asm.Label[ln.label]
		if !ok {
			lineno = op.LineNo
			line = strings.Join(op.Words, " ")
			err = ErrLabelMissing(ln.label)
			return
		}
		op.Codes[ln.code] += ip
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}
	for _, op := range prog.Opcodes {
		prog.Words = append(prog.Words, op.Codes...)
	}

	return
}

// stripComment removes a ';' comment, ignoring any inside quotes.
func stripComment(text string) string {
	quoted := false
	for n := 0; n < len(text); n++ {
		switch text[n] {
		case '\\':
			if quoted {
				n++
			}
		case '\'':
			// Character literal, ie ';'
			if !quoted && n+2 < len(text) && text[n+2] == '\'' {
				n += 2
			}
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return text[:n]
			}
		}
	}
	return text
}

// aliasMap maps alternate mnemonics.
var aliasMap = map[string]string{
	"jt":   "jnz",
	"jf":   "jz",
	"mult": "mul",
	"rbo":  "arb",
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []int64
	var labels []string

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 || err != nil {
			return
		}
		for n, label := range labels {
			if len(label) != 0 {
				asm.links = append(asm.links, link{opcode: len(asm.Opcode), code: n, label: label})
			}
		}
		opcode := Opcode{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes}
		asm.Opcode = append(asm.Opcode, opcode)
	}()

	// Alternate syntax substitutions
	if alias, ok := aliasMap[words[0]]; ok {
		words = append([]string{alias}, words[1:]...)
	}
	switch {
	case len(words) == 2 && words[0] == "jump":
		// jump TARGET => jnz #1 TARGET
		words = []string{"jnz", "#1", words[1]}
	case len(words) == 3 && words[0] == "mov":
		// mov SRC DST => add SRC #0 DST
		words = []string{"add", words[1], "#0", words[2]}
	default:
		// unchanged
	}

	switch words[0] {
	case ".data":
		if len(words) < 2 {
			err = ErrOpcodeValueMissing
			return
		}
		for _, word := range words[1:] {
			var mode Mode
			var value int64
			var label string
			mode, value, label, err = asm.operand(word)
			if err != nil {
				return
			}
			if mode != MODE_POSITION {
				err = ErrParseOperand(word)
				return
			}
			codes = append(codes, value)
			labels = append(labels, label)
		}
	case ".zero":
		if len(words) != 2 {
			err = ErrOpcodeValueMissing
			return
		}
		var count int64
		count, err = asm.valueOf(words[1])
		if err != nil {
			return
		}
		if count < 1 {
			err = ErrParseNumber(words[1])
			return
		}
		codes = make([]int64, count)
	default:
		op, ok := opByName[words[0]]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		roles := op.Roles()
		args := words[1:]
		if len(args) < len(roles) {
			err = ErrOpcodeValueMissing
			return
		}
		if len(args) > len(roles) {
			err = ErrOpcodeExtraArgs
			return
		}
		modes := make([]Mode, len(roles))
		values := make([]int64, len(roles))
		labels = make([]string, 1+len(roles))
		for n, role := range roles {
			modes[n], values[n], labels[1+n], err = asm.operand(args[n])
			if err != nil {
				return
			}
			if role == ROLE_WRITE && modes[n] == MODE_IMMEDIATE {
				err = ErrTargetInvalid
				return
			}
		}
		codes = append([]int64{Encode(op, modes...)}, values...)
	}

	return
}
