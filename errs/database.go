package errs

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUniqueConstraintViolation = errors.New("unique constraint violation")
	ErrTransactionFailed         = errors.New("transaction failed")
)

// NewDatabaseError wraps a backend failure. Every backend error, including a missing
// row, surfaces as a 500 whose details carry the backend message verbatim.
func NewDatabaseError(operation, entity string, cause error) *ApiErr {
	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("Failed to %s %s", operation, entity),
		Cause:      cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

func NewTransactionFailedError(operation string, cause error) *ApiErr {
	e := &ApiErr{
		StatusCode: http.StatusInternalServerError,
		err:        fmt.Errorf("Failed to %s", operation),
		Cause:      fmt.Errorf("%w: %w", ErrTransactionFailed, cause),
		Field:      "transaction",
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// IsUniqueViolation reports whether a driver error is a unique-constraint failure.
// Postgres reports SQLSTATE 23505, sqlite reports "UNIQUE constraint failed".
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUniqueConstraintViolation) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
