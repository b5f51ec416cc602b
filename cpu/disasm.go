package cpu

import (
	"fmt"
	"iter"
)

// Listing is a single disassembled entry.
type Listing struct {
	Words []int64 // Words covered by the entry.
	Text  string  // Assembler text of the entry.
	Data  bool    // Set if the words did not decode as an instruction.
}

// Disassemble walks a tape from address 0, yielding each address and its
// listing. Words that do not decode, or whose parameters would run past
// the end of the tape, are listed as .data.
func Disassemble(words []int64) iter.Seq2[int64, Listing] {
	return func(yield func(ip int64, entry Listing) bool) {
		for ip := int64(0); ip < int64(len(words)); {
			var entry Listing
			ins, err := Decode(words[ip])
			if err != nil || ip+ins.Width() > int64(len(words)) {
				entry = Listing{
					Words: words[ip : ip+1],
					Text:  fmt.Sprintf(".data %d", words[ip]),
					Data:  true,
				}
			} else {
				params := words[ip+1 : ip+ins.Width()]
				entry = Listing{
					Words: words[ip : ip+ins.Width()],
					Text:  ins.Format(params...),
				}
			}
			if !yield(ip, entry) {
				return
			}
			ip += int64(len(entry.Words))
		}
	}
}
