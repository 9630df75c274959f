// ABOUTME: Error types raised by pipeline operations
// ABOUTME: Validation warnings and forward-recoverable partial failures
package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harperreed/prospecta/models"
)

var ErrPartialFailure = errors.New("partial failure")

// ValidationError rejects one input without touching the store. Row is the
// working-list index for reconciliation warnings and -1 otherwise.
type ValidationError struct {
	Row    int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row >= 0 {
		return fmt.Sprintf("row %d: invalid %s: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func invalid(field, reason string) *ValidationError {
	return &ValidationError{Row: -1, Field: field, Reason: reason}
}

// PartialFailure reports a multi-step write whose first steps landed and a
// later one did not. Nothing is rolled back; Resume replays the failed step
// and whatever followed it.
type PartialFailure struct {
	Op         string
	Completed  []string
	Failed     string
	Err        error
	ProspectID models.RecordID
	At         time.Time

	// Ids written by the completed steps, zero when not applicable.
	SampleID   models.RecordID
	ActivityID models.RecordID

	remaining []step
}

func (e *PartialFailure) Error() string {
	return fmt.Sprintf("%s: step %q failed after %s: %v",
		e.Op, e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialFailure) Is(target error) bool {
	return target == ErrPartialFailure
}

func (e *PartialFailure) Unwrap() error {
	return e.Err
}

// Resume re-runs the failed step and the ones after it. Every step that can
// fail after the first is safe to repeat.
func (e *PartialFailure) Resume(ctx context.Context) error {
	for i, st := range e.remaining {
		if err := st.run(ctx); err != nil {
			e.Failed = st.name
			e.Err = err
			e.remaining = e.remaining[i:]
			return e
		}
		e.Completed = append(e.Completed, st.name)
	}
	e.remaining = nil
	return nil
}

// AsPartialFailure extracts a PartialFailure from err.
func AsPartialFailure(err error) (*PartialFailure, bool) {
	var pf *PartialFailure
	if errors.As(err, &pf) {
		return pf, true
	}
	return nil, false
}
