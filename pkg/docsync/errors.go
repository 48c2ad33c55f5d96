package docsync

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed the session no longer accepts updates
	ErrClosed = errors.New("docsync: session closed")
	// ErrConflict the note changed on the server since baseVersion
	ErrConflict = errors.New("docsync: note was changed elsewhere")
	// ErrNotFound the note is gone or not owned by the caller
	ErrNotFound = errors.New("docsync: note not found")
	// ErrUnauthenticated the token is missing or rejected
	ErrUnauthenticated = errors.New("docsync: unauthenticated")
	// ErrValidation the server rejected the document
	ErrValidation = errors.New("docsync: document rejected")
)

// TransientError wraps a failure worth retrying: transport errors, 5xx and 429
type TransientError struct {
	Status int
	Err    error
}

func (e *TransientError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("docsync: transient failure (http %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("docsync: transient failure: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err should be retried
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
