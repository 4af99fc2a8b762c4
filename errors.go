package bytescan

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPattern is wrapped by every *ParseError.
	ErrInvalidPattern = errors.New("invalid pattern")

	// ErrEmptyPattern is returned when a pattern parses to zero bytes.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrMaskLength is returned when a raw pattern and its mask differ in length.
	ErrMaskLength = errors.New("mask length does not match pattern length")

	// ErrInvalidRange is returned when a process scan is asked for an empty
	// address range. Descriptions never return it; they scan empty ranges as
	// "not found".
	ErrInvalidRange = errors.New("invalid scan range")
)

// ParseError reports the first token a pattern could not be parsed from.
// The Pattern returned alongside it holds every byte parsed before Token.
type ParseError struct {
	Token  string
	Index  int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid pattern token %q at index %d: %s", e.Token, e.Index, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrInvalidPattern }
