package network

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrRoundLimit  = errors.New(f("round limit"))
	ErrNetworkSize = errors.New(f("network size invalid"))
)

// ErrAddressUnknown is a packet sent to an address with no node.
type ErrAddressUnknown struct {
	Source  int64 // Sending node.
	Address int64 // Destination address.
}

func (err ErrAddressUnknown) Error() string {
	return f("node %d: address %d unknown", err.Source, err.Address)
}

// ErrNode indicates the node of a runtime error.
type ErrNode struct {
	Address int64
	Err     error
}

func (err *ErrNode) Error() string {
	return f("node %d %v", err.Address, err.Err)
}

func (err *ErrNode) Unwrap() error {
	return err.Err
}
