package services

import (
	"errors"

	"gorm.io/gorm"
)

// Kind classifies a service error so the HTTP layer can map it to a
// status code without string matching.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
)

// Error is the error type every service returns for expected failures.
// It carries a machine-readable code and optional context details for
// audit correlation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]interface{}
}

func (e *Error) Error() string { return e.Message }

func NewValidation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "ERR_VALIDATION", Message: message}
}

func NewUnauthorized(message string) *Error {
	return &Error{Kind: KindUnauthorized, Code: "ERR_UNAUTHORIZED", Message: message}
}

func NewForbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Code: "ERR_FORBIDDEN", Message: message}
}

func NewNotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Code: "ERR_NOT_FOUND", Message: message}
}

func NewConflict(message string) *Error {
	return &Error{Kind: KindConflict, Code: "ERR_CONFLICT", Message: message}
}

func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// IsKind reports whether err is a service error of the given kind.
func IsKind(err error, kind Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == kind
}

// KindOf returns the kind of a service error, KindInternal otherwise.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// translateEntryCreate maps a unique-constraint violation raised by a
// concurrent create to the same validation error a pre-checked duplicate
// produces. Anything else passes through as-is.
func translateEntryCreate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidation("entry already exists for this section and date")
	}
	return err
}
