// Package services holds the portal core: room membership, the per-room
// chat feed and the assignment submission/grading workflow. Handlers pass
// in the authenticated caller's identity explicitly; the core performs no
// session lookups of its own.
package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type ErrorKind int

const (
	// KindValidation: missing or malformed input.
	KindValidation ErrorKind = iota
	// KindNotFound: a referenced entity does not exist (e.g. bad room code).
	KindNotFound
	// KindConflict: a uniqueness constraint was violated (duplicate join,
	// duplicate submission, duplicate username).
	KindConflict
	// KindNotAuthorized: the caller lacks the role or ownership the
	// operation requires.
	KindNotAuthorized
	// KindStorage: an opaque storage-layer failure, surfaced without retry.
	KindStorage
)

type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewValidationError(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func NewNotFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func NewConflictError(msg string) *Error {
	return &Error{Kind: KindConflict, Message: msg}
}

func NewNotAuthorizedError(msg string) *Error {
	return &Error{Kind: KindNotAuthorized, Message: msg}
}

func NewStorageError(err error) *Error {
	return &Error{Kind: KindStorage, Message: "storage failure", Err: err}
}

// IsKind reports whether err is a core *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// IsUniqueViolation reports whether err is a unique-constraint violation
// from the store. Covers gorm's translated errors as well as raw postgres
// error code 23505.
func IsUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
