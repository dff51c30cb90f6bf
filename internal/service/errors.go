package service

import "errors"

// Kind classifies service failures so the transport layer can pick a
// response status without knowing the cause.
type Kind int

const (
	// KindInternal is an unclassified failure (store outage, driver error).
	KindInternal Kind = iota
	// KindNotFound means a referenced movie, showtime or booking does not exist.
	KindNotFound
	// KindInvalidArgument means the request carries a value outside its domain.
	KindInvalidArgument
	// KindConflict means the request would break a uniqueness or scheduling invariant.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindInvalidArgument:
		return "invalid_argument"
	case KindConflict:
		return "conflict"
	}
	return "internal"
}

// Error is a tagged service error.  Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches the kind-only sentinels below, so errors.Is(err, ErrConflict)
// holds for every conflict regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

// Kind-only sentinels for errors.Is checks.
var (
	ErrNotFound        = &Error{Kind: KindNotFound}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrConflict        = &Error{Kind: KindConflict}
)

// KindOf returns the kind of err, or KindInternal when err is not a
// service error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func notFound(msg string) error { return &Error{Kind: KindNotFound, Message: msg} }
func invalid(msg string) error  { return &Error{Kind: KindInvalidArgument, Message: msg} }
func conflict(msg string) error { return &Error{Kind: KindConflict, Message: msg} }
