package hg

import (
	"errors"
	"fmt"
)

var (
	// ErrToolNotFound is returned when the hg executable cannot be found.
	ErrToolNotFound = errors.New("mercurial is not installed")
	// ErrNotARepository is returned when hg status fails at the given root.
	ErrNotARepository = errors.New("not a mercurial repository")
	// ErrDecode is returned when a status capture is not valid UTF-8.
	ErrDecode = errors.New("status output is not valid text")
	// ErrUnknownStatusCode is returned for a status line with an unrecognized leading character.
	ErrUnknownStatusCode = errors.New("unknown status code")
	// ErrMalformedLine is returned for a status line that does not have the "<c> <path>" shape.
	ErrMalformedLine = errors.New("malformed status line")
	// ErrPathOutsideRepository is returned when a queried path is not under the repository root.
	ErrPathOutsideRepository = errors.New("path is outside the repository")
)

// LineError records which line of a capture failed to parse.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("status line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
