package capture

import (
	"errors"
	"fmt"
)

// Kind classifies a capture failure.
type Kind int

const (
	KindInvalidURL Kind = iota + 1
	KindFetch
	KindDecode
	KindSerialization
	KindFileRead
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid url"
	case KindFetch:
		return "fetch"
	case KindDecode:
		return "decode"
	case KindSerialization:
		return "serialization"
	case KindFileRead:
		return "file read"
	default:
		return "unknown"
	}
}

// Sentinels for use with errors.Is.
var (
	ErrInvalidURL    = errors.New("invalid url")
	ErrFetch         = errors.New("fetch failed")
	ErrDecode        = errors.New("decode failed")
	ErrSerialization = errors.New("serialization failed")
	ErrFileRead      = errors.New("file read failed")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInvalidURL:
		return ErrInvalidURL
	case KindFetch:
		return ErrFetch
	case KindDecode:
		return ErrDecode
	case KindSerialization:
		return ErrSerialization
	case KindFileRead:
		return ErrFileRead
	}
	return nil
}

// Error is returned by every capture operation. Source is the URL, file path
// or alias being processed. StatusCode is set for fetches that completed with
// a non-success status.
type Error struct {
	Kind       Kind
	Source     string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %q", e.Kind, e.Source)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": status %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

func newError(kind Kind, source string, err error) *Error {
	return &Error{Kind: kind, Source: source, Err: err}
}
