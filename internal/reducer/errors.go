package reducer

import (
	"errors"
	"fmt"

	"github.com/sitproject/sit/internal/types"
)

// DecodeError is returned when a reserved text file of a record is not valid
// UTF-8. The fold driver discards every change the record produced.
type DecodeError struct {
	Reducer string
	Hash    string
	Path    string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: record %s: %s is not valid UTF-8", e.Reducer, e.Hash, e.Path)
}

// MissingCompanionError is returned when a record carries a type marker but
// lacks a file the reducer needs to act on it. Only the reporting reducer
// skips the record; the others still process it.
type MissingCompanionError struct {
	Reducer string
	Hash    string
	Type    types.Type
	Path    string
}

func (e *MissingCompanionError) Error() string {
	return fmt.Sprintf("%s: record %s: %s without %s", e.Reducer, e.Hash, e.Type, e.Path)
}

// IsDecodeError reports whether err (or any error joined into it) is a DecodeError.
func IsDecodeError(err error) bool {
	var decodeErr *DecodeError
	return errors.As(err, &decodeErr)
}

// Flatten expands errors produced with errors.Join into their leaves.
func Flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	return []error{err}
}
