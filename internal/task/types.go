// Package task defines the Beacon domain model: plans, their ordered steps,
// and the value types used to filter and update them.
package task

import (
	"fmt"
	"time"

	"github.com/beaconhq/beacon/internal/beaconerr"
)

// PlanStatus is the lifecycle status of a plan.
type PlanStatus string

const (
	PlanActive   PlanStatus = "active"
	PlanArchived PlanStatus = "archived"
)

// StepStatus is the lifecycle status of a step.
type StepStatus string

const (
	StepTodo       StepStatus = "todo"
	StepInProgress StepStatus = "inprogress"
	StepDone       StepStatus = "done"
)

// Plan is a titled collection of ordered steps with a directory association.
// Steps are loaded eagerly whenever a plan is read.
type Plan struct {
	ID          int64
	Title       string
	Description *string
	Status      PlanStatus
	Directory   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Steps       []Step
}

// Step is a single ordered work item within a plan.
// Result is non-nil iff Status is StepDone.
type Step struct {
	ID                 int64
	PlanID             int64
	Title              string
	Description        *string
	AcceptanceCriteria *string
	References         []string
	Status             StepStatus
	Result             *string
	Order              int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// ParsePlanStatus parses a user-supplied plan status string.
func ParsePlanStatus(s string) (PlanStatus, error) {
	switch PlanStatus(s) {
	case PlanActive, PlanArchived:
		return PlanStatus(s), nil
	}
	return "", beaconerr.InvalidInput("status", fmt.Sprintf("unknown plan status %q (expected active or archived)", s))
}

// ParseStepStatus parses a user-supplied step status string.
func ParseStepStatus(s string) (StepStatus, error) {
	switch StepStatus(s) {
	case StepTodo, StepInProgress, StepDone:
		return StepStatus(s), nil
	}
	return "", beaconerr.InvalidInput("status", fmt.Sprintf("unknown step status %q (expected todo, inprogress, or done)", s))
}
