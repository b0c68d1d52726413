package keyedarchive

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedArchive          = errors.New("malformed archive")
	ErrDanglingReference         = errors.New("dangling reference")
	ErrCyclicReference           = errors.New("cyclic reference")
	ErrMalformedMutableContainer = errors.New("malformed mutable container")
	ErrTooDeep                   = errors.New("archive nested too deeply")
)

// DecodeError reports where decoding failed.  Err is one of the
// package's sentinel errors.
type DecodeError struct {
	Path    string // location, e.g. "$.'$top'.root.'NS.objects'[2]"
	Ref     int64  // object table index being resolved, or -1
	Message string
	Err     error
}

func (e *DecodeError) Error() string {
	msg := e.Err.Error()
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Path != "" {
		return fmt.Sprintf("decode error at %s: %s", e.Path, msg)
	}
	return fmt.Sprintf("decode error: %s", msg)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
