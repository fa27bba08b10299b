package domain

import (
	"errors"
	"fmt"
	"time"
)

// Kind is the closed set of failures the core and its collaborators report.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindInvalidRange
	KindDateConflict
	KindStayTooLong
	KindForbidden
	KindValidation
	KindDuplicateKey
	KindUnauthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidRange:
		return "invalid_range"
	case KindDateConflict:
		return "date_conflict"
	case KindStayTooLong:
		return "stay_too_long"
	case KindForbidden:
		return "forbidden"
	case KindValidation:
		return "validation_error"
	case KindDuplicateKey:
		return "duplicate_key"
	case KindUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Error is a tagged failure. Field names the offending input for validation
// and duplicate-key errors; Date is set for DateConflict.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Date    time.Time
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Kind.String()
}

// Is matches on kind only, so errors.Is(err, ErrNotFound) holds for any
// NotFound error regardless of its message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidRange    = &Error{Kind: KindInvalidRange}
	ErrDateConflict    = &Error{Kind: KindDateConflict}
	ErrStayTooLong     = &Error{Kind: KindStayTooLong}
	ErrForbidden       = &Error{Kind: KindForbidden}
	ErrValidation      = &Error{Kind: KindValidation}
	ErrDuplicateKey    = &Error{Kind: KindDuplicateKey}
	ErrUnauthenticated = &Error{Kind: KindUnauthenticated}
)

// KindOf returns the kind of the first *Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Invalid(field, format string, args ...any) error {
	return &Error{Kind: KindValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Duplicate(field, format string, args ...any) error {
	return &Error{Kind: KindDuplicateKey, Field: field, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(msg string) error {
	return &Error{Kind: KindUnauthenticated, Message: msg}
}
