package toolpath

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax is returned for a word whose value is not a number.
	ErrSyntax = errors.New("toolpath: syntax error")

	// ErrArc is returned for an arc without a usable centre or radius.
	ErrArc = errors.New("toolpath: invalid arc")
)

// LineError reports the input line a parse error occurred on.
type LineError struct {
	Line int // zero-based
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line+1, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
