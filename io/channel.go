// Package io provides I/O channel implementations for Intcode processors.
// It includes the ASCII terminal convention (Tape), a replayable integer
// FIFO (Buffer), and the ASCII encoding helpers.
package io

import (
	"iter"
)

// Channel defines the interface for all I/O channels attached to a processor.
// Channels carry whole integer words.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive returns an iterator that yields the currently available input.
	Receive() iter.Seq[int64]
	// Send writes a single value to the channel.
	Send(value int64) error
}
