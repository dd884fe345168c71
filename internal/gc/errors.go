package gc

import (
	"errors"
	"fmt"
)

var (
	// ErrModelSealed is raised when a sealed log model is mutated.
	ErrModelSealed = errors.New("gc log model is sealed")

	// ErrUnknownCycle is returned when a mutation names a cycle that was never created.
	ErrUnknownCycle = errors.New("unknown cycle")

	// ErrDuplicateCycle is returned when a cycle id is reused.
	ErrDuplicateCycle = errors.New("duplicate cycle id")

	// ErrMalformedRecord is returned when a line carries a known marker but not its expected structure.
	ErrMalformedRecord = errors.New("malformed record")
)

// ParseError ties a failure to the input line it came from. Line holds the
// raw text when it is known.
type ParseError struct {
	Line    string
	LineNum int
	Err     error
}

func (e ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parse error at line %d: %v", e.LineNum, e.Err)
	}
	return fmt.Sprintf("parse error at line %d: %v: %q", e.LineNum, e.Err, e.Line)
}

func (e ParseError) Unwrap() error {
	return e.Err
}
