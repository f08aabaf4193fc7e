// Package beaconerr defines the error kinds surfaced by the Beacon core.
//
// The store and handler layers classify failures into a small set of typed
// errors so both front ends can map them to user-facing messages without
// string matching.
package beaconerr

import "fmt"

// PlanNotFoundError indicates the target plan does not exist.
type PlanNotFoundError struct {
	ID int64
}

func (e *PlanNotFoundError) Error() string {
	return fmt.Sprintf("plan %d not found", e.ID)
}

// StepNotFoundError indicates the target step does not exist.
type StepNotFoundError struct {
	ID int64
}

func (e *StepNotFoundError) Error() string {
	return fmt.Sprintf("step %d not found", e.ID)
}

// InvalidInputError indicates a validation failure on a named field.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PlanNotFound constructs a PlanNotFoundError.
func PlanNotFound(id int64) error {
	return &PlanNotFoundError{ID: id}
}

// StepNotFound constructs a StepNotFoundError.
func StepNotFound(id int64) error {
	return &StepNotFoundError{ID: id}
}

// InvalidInput constructs an InvalidInputError.
func InvalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}
