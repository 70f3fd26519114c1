package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is a well-formed lookup with zero matching rows, distinct
	// from a failed query.
	ErrNotFound = errors.New("not found")

	// ErrConfirmationRequired gates destructive deletes.
	ErrConfirmationRequired = errors.New("destructive action requires confirmation")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSession          = errors.New("no active session")
)

// QueryError wraps a failed read against the backing store.
type QueryError struct {
	Op  string
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// WriteError wraps a rejected insert, update or delete.
type WriteError struct {
	Op  string
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Op, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// UploadError wraps a file-store rejection.
type UploadError struct {
	Op  string
	Err error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s: %v", e.Op, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
