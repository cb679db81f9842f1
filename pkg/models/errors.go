package models

import (
	"errors"
	"fmt"
)

// ErrFatalInput is matched (via errors.Is) by every FatalInputError.
var ErrFatalInput = errors.New("fatal input")

// FatalInputError aborts a run: empty quote sequence, non-numeric or negative
// price field, or a requested window with no price data.
type FatalInputError struct {
	Reason string
}

func (e *FatalInputError) Error() string {
	return fmt.Sprintf("fatal input: %s", e.Reason)
}

// Is reports whether target is ErrFatalInput.
func (e *FatalInputError) Is(target error) bool {
	return target == ErrFatalInput
}

// FatalInput builds a FatalInputError with a formatted reason.
func FatalInput(format string, args ...any) error {
	return &FatalInputError{Reason: fmt.Sprintf(format, args...)}
}
