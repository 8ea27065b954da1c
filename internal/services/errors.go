package services

import "errors"

// Kind classifies a service error so the HTTP layer can pick a status code.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is a failure the caller caused. Message is safe to show to clients.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func validationError(msg string) *Error   { return &Error{Kind: KindValidation, Message: msg} }
func unauthorizedError(msg string) *Error { return &Error{Kind: KindUnauthorized, Message: msg} }
func forbiddenError(msg string) *Error    { return &Error{Kind: KindForbidden, Message: msg} }
func notFoundError(msg string) *Error     { return &Error{Kind: KindNotFound, Message: msg} }
func conflictError(msg string) *Error     { return &Error{Kind: KindConflict, Message: msg} }

// KindOf returns the kind of a service error, or 0 for anything else.
func KindOf(err error) Kind {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Kind
	}
	return 0
}
