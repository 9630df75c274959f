// ABOUTME: Error taxonomy shared by every store backend
// ABOUTME: Separates vanished records from transient I/O failures
package store

import (
	"errors"
	"fmt"

	"github.com/harperreed/prospecta/models"
)

var ErrNotFound = errors.New("record not found")

var (
	// ErrUnknownField marks a field or filter key a backend has no column for.
	ErrUnknownField = errors.New("unknown field")
	// ErrCorruptRecord marks stored data that can no longer be decoded.
	ErrCorruptRecord = errors.New("corrupt record")
	// ErrRejected marks a request the backend refused and will refuse again.
	ErrRejected = errors.New("rejected by store")
)

// NotFoundError reports a write that targeted a record no longer present.
type NotFoundError struct {
	Kind Kind
	ID   models.RecordID
}

func (e *NotFoundError) Error() string {
	if e.ID == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, ErrNotFound)
	}
	return fmt.Sprintf("%s %d: %s", e.Kind, e.ID, ErrNotFound)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TransientIOError wraps a failure talking to the backing store. The core
// never retries these; callers may retry the whole operation.
type TransientIOError struct {
	Op   string
	Kind Kind
	Err  error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTransient(err error) bool {
	var t *TransientIOError
	return errors.As(err, &t)
}

// IsPermanent reports faults that repeating the request cannot fix: bad
// kinds, fields or ids, and undecodable data.
func IsPermanent(err error) bool {
	for _, target := range []error{ErrUnknownKind, ErrUnknownField, ErrCorruptRecord, ErrRejected, models.ErrInvalidID} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
