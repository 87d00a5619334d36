package common

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("record already exists")
	ErrUnauthorized = errors.New("unauthorized access")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// StoreError wraps a failure reported by the database that has no domain meaning.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func NewStoreError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}

// UniqueViolation reports whether err is a unique constraint violation on the named constraint.
func UniqueViolation(err error, constraint string) bool {
	return pqErrorIs(err, pqUniqueViolation, constraint)
}

// ForeignKeyViolation reports whether err is a foreign key violation on the named constraint.
func ForeignKeyViolation(err error, constraint string) bool {
	return pqErrorIs(err, pqForeignKeyViolation, constraint)
}

func pqErrorIs(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == code && pqErr.Constraint == constraint
	}

	return false
}
