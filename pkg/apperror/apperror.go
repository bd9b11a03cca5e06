// Package apperror defines the error kinds reported by the booking core.
// Every kind is surfaced to the caller verbatim; none is retried internally.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind string

const (
	KindValidation      Kind = "ValidationError"
	KindLocked          Kind = "Locked"
	KindConflict        Kind = "Conflict"
	KindSeatUnavailable Kind = "SeatUnavailable"
	KindInvalidTier     Kind = "InvalidTier"
	KindEmptySelection  Kind = "EmptySelection"
	KindNotFound        Kind = "NotFound"
	KindInvalidState    Kind = "InvalidState"
	KindUnauthorized    Kind = "Unauthorized"
	KindForbidden       Kind = "Forbidden"
	KindInternal        Kind = "Internal"
)

// Sentinels for errors.Is. An *Error matches the sentinel of its kind.
var (
	ErrValidation      = &Error{Kind: KindValidation}
	ErrLocked          = &Error{Kind: KindLocked}
	ErrConflict        = &Error{Kind: KindConflict}
	ErrSeatUnavailable = &Error{Kind: KindSeatUnavailable}
	ErrInvalidTier     = &Error{Kind: KindInvalidTier}
	ErrEmptySelection  = &Error{Kind: KindEmptySelection}
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidState    = &Error{Kind: KindInvalidState}
	ErrUnauthorized    = &Error{Kind: KindUnauthorized}
	ErrForbidden       = &Error{Kind: KindForbidden}
)

type Error struct {
	Kind    Kind
	Message string
	// Fields maps every violated input field to a message (validation only).
	Fields map[string]string
	// Seats names the offending seats of a SeatUnavailable error.
	Seats []string
	Err   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s: %s", k, e.Fields[k])
		}
		b.WriteString(" (")
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == "" && t.Fields == nil && t.Seats == nil
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Fields: fields}
}

func SeatUnavailable(seats []string) *Error {
	return &Error{
		Kind:    KindSeatUnavailable,
		Message: fmt.Sprintf("seats not available: %s", strings.Join(seats, ", ")),
		Seats:   seats,
	}
}

func NotFound(what, id string) *Error {
	return New(KindNotFound, "%s %s not found", what, id)
}

func Locked(format string, args ...any) *Error {
	return New(KindLocked, format, args...)
}

func Conflict(format string, args ...any) *Error {
	return New(KindConflict, format, args...)
}

func InvalidState(format string, args ...any) *Error {
	return New(KindInvalidState, format, args...)
}

func InvalidTier(tier string) *Error {
	return New(KindInvalidTier, "invalid tier %q", tier)
}

// KindOf returns the kind of err, or KindInternal for anything that is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
