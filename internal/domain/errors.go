package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrInvalidHierarchy    = errors.New("invalid hierarchy")
	ErrInvalidReference    = errors.New("invalid reference")
	ErrConcurrencyConflict = errors.New("concurrency conflict")
	ErrValidation          = errors.New("validation failed")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

// Error carries the entity and id a failure refers to. It unwraps to one of
// the sentinel kinds above so callers can branch with errors.Is.
type Error struct {
	Kind   error
	Entity string
	ID     uuid.UUID
	Detail string
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Entity != "" {
		b.WriteString(": ")
		b.WriteString(e.Entity)
		if e.ID != uuid.Nil {
			b.WriteString(" ")
			b.WriteString(e.ID.String())
		}
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Kind }

func NotFound(entity string, id uuid.UUID) error {
	return &Error{Kind: ErrNotFound, Entity: entity, ID: id}
}

func Errorf(kind error, entity string, id uuid.UUID, format string, args ...any) error {
	return &Error{Kind: kind, Entity: entity, ID: id, Detail: fmt.Sprintf(format, args...)}
}

func Invalid(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Detail: fmt.Sprintf(format, args...)}
}
