// Package cpu implements the Intcode processor and its assembler.
//
// The processor executes a tape of signed 64-bit integers that holds both
// code and data. It has an instruction pointer, a relative base register,
// and a lazily grown memory. Input is consumed from a FIFO queue; when the
// queue runs dry at an input instruction the processor suspends without
// executing it, so that a later Run resumes at the same instruction.
//
// The assembler provides a small assembly language for the Intcode
// instruction set, supporting macros, labels, equates, and compile-time
// expression evaluation.
package cpu
