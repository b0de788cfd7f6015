// Package fault classifies domain errors into the small set of kinds callers
// and transports act on.
package fault

import (
	"errors"
	"net/http"
)

// Kind is a machine-readable error class.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindInvalidArgument    Kind = "invalid_argument"
	KindUnauthorized       Kind = "unauthorized"
	KindInvariantViolation Kind = "invariant_violation"
	KindAlreadyDone        Kind = "already_done"
	KindInternal           Kind = "internal"
)

// Error is a classified domain error. Sentinels are declared once per module
// and compared with errors.Is.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf reports the kind of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var classified *Error
	if errors.As(err, &classified) {
		return classified.Kind
	}
	return KindInternal
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// HTTPStatus maps a kind to the status code transports answer with.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusForbidden
	case KindInvariantViolation:
		return http.StatusConflict
	case KindAlreadyDone:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
