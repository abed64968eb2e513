package domain

import (
	"fmt"
	"net/http"
)

type Kind string

const (
	KindUnauthenticated    Kind = "UNAUTHENTICATED"
	KindInvalidToken       Kind = "INVALID_TOKEN"
	KindInvalidRequest     Kind = "INVALID_REQUEST"
	KindMissingField       Kind = "MISSING_FIELD"
	KindInvalidSlug        Kind = "INVALID_SLUG"
	KindSlugConflict       Kind = "SLUG_CONFLICT"
	KindNotFound           Kind = "NOT_FOUND"
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
)

var (
	ErrUnauthenticated = newError(KindUnauthenticated, http.StatusUnauthorized, "Not authenticated")
	ErrInvalidToken    = newError(KindInvalidToken, http.StatusUnauthorized, "Invalid token")
	ErrInvalidRequest  = newError(KindInvalidRequest, http.StatusBadRequest, "Invalid request body")
	ErrMissingField    = newError(KindMissingField, http.StatusBadRequest, "Missing required fields")
	ErrInvalidSlug     = newError(KindInvalidSlug, http.StatusBadRequest,
		"Invalid slug. Slug must contain only lowercase letters, numbers, and hyphens")
	ErrSlugConflict = newError(KindSlugConflict, http.StatusBadRequest, "A property with this slug already exists")
	ErrNotFound     = newError(KindNotFound, http.StatusNotFound, "Property not found")
	ErrPersistence  = newError(KindPersistenceFailure, http.StatusInternalServerError, "Failed to create property")
)

// Error is an immutable coded error; Msg and WithCause return modified copies
// so the package-level sentinels are never mutated.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Fields  []string
	cause   error
}

func newError(kind Kind, status int, msg string) *Error {
	return &Error{Kind: kind, Status: status, Message: msg}
}

func (e Error) Msg(format string, parts ...any) *Error {
	e.Message = fmt.Sprintf(format, parts...)
	return &e
}

func (e Error) WithCause(err error) *Error {
	e.cause = err
	return &e
}

func (e Error) WithFields(fields ...string) *Error {
	e.Fields = fields
	return &e
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.cause }

// Is matches on Kind, so errors.Is(err, ErrSlugConflict) holds for any copy.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
