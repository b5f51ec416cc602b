package pipeline

import (
	"errors"

	"github.com/ezrec/intcode/translate"
)

var f = translate.From

var (
	ErrNoStages   = errors.New(f("no stages"))
	ErrNoSignal   = errors.New(f("no signal"))
	ErrDeadlock   = errors.New(f("deadlock"))
	ErrRoundLimit = errors.New(f("round limit"))
)

// ErrStage indicates the stage of a runtime error.
type ErrStage struct {
	Stage int
	Err   error
}

func (err *ErrStage) Error() string {
	return f("stage %d %v", err.Stage, err.Err)
}

func (err *ErrStage) Unwrap() error {
	return err.Err
}
