// Package handler composes store operations into the user-facing workflows
// shared by the CLI and the MCP server: listing with summaries, mutations
// that return a receipt of the pre-state, the delete confirmation guard, and
// validated sparse step updates.
//
// Handlers hold no state between calls; the composite fetch-then-mutate
// pattern is not atomic, and a racing writer merely makes the returned
// receipt stale.
package handler

import (
	"context"
	"strings"

	"github.com/beaconhq/beacon/internal/async"
	"github.com/beaconhq/beacon/internal/beaconerr"
	"github.com/beaconhq/beacon/internal/task"
)

// Handler wraps the async store façade.
type Handler struct {
	store *async.Store
}

// New creates a handler over the given façade.
func New(store *async.Store) *Handler {
	return &Handler{store: store}
}

// Store exposes the underlying façade for callers that need raw operations.
func (h *Handler) Store() *async.Store {
	return h.store
}

// CreatePlan creates a plan and returns it.
func (h *Handler) CreatePlan(ctx context.Context, title string, description, directory *string) (*task.Plan, error) {
	return h.store.CreatePlan(ctx, title, description, directory)
}

// ShowPlan reads a plan; a missing id is PlanNotFound.
func (h *Handler) ShowPlan(ctx context.Context, id int64) (*task.Plan, error) {
	plan, err := h.store.GetPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, beaconerr.PlanNotFound(id)
	}
	return plan, nil
}

// ListPlanSummaries lists plans matching the filter, projected to summaries.
func (h *Handler) ListPlanSummaries(ctx context.Context, filter *task.PlanFilter) ([]task.PlanSummary, error) {
	plans, err := h.store.ListPlans(ctx, filter)
	if err != nil {
		return nil, err
	}
	summaries := make([]task.PlanSummary, len(plans))
	for i, p := range plans {
		summaries[i] = task.Summarize(p)
	}
	return summaries, nil
}

// SearchPlans lists plans whose directory starts with the canonicalized
// query path, projected to summaries.
func (h *Handler) SearchPlans(ctx context.Context, directory string, includeArchived bool) ([]task.PlanSummary, error) {
	plans, err := h.store.SearchByDirectory(ctx, directory, includeArchived)
	if err != nil {
		return nil, err
	}
	summaries := make([]task.PlanSummary, len(plans))
	for i, p := range plans {
		summaries[i] = task.Summarize(p)
	}
	return summaries, nil
}

// ArchivePlan archives a plan and returns its pre-state for the receipt.
func (h *Handler) ArchivePlan(ctx context.Context, id int64) (*task.Plan, error) {
	plan, err := h.ShowPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.store.ArchivePlan(ctx, id); err != nil {
		return nil, err
	}
	return plan, nil
}

// UnarchivePlan unarchives a plan and returns its pre-state for the receipt.
func (h *Handler) UnarchivePlan(ctx context.Context, id int64) (*task.Plan, error) {
	plan, err := h.ShowPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.store.UnarchivePlan(ctx, id); err != nil {
		return nil, err
	}
	return plan, nil
}

// DeletePlan deletes a plan and returns its pre-state. It refuses to delete
// unless confirmed is set.
func (h *Handler) DeletePlan(ctx context.Context, id int64, confirmed bool) (*task.Plan, error) {
	if !confirmed {
		return nil, beaconerr.InvalidInput("confirmed", "deletion requires explicit confirmation")
	}
	plan, err := h.ShowPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := h.store.DeletePlan(ctx, id); err != nil {
		return nil, err
	}
	return plan, nil
}

// AddStep appends a step to a plan.
func (h *Handler) AddStep(ctx context.Context, planID int64, title string, description, acceptance *string, references []string) (*task.Step, error) {
	return h.store.AddStep(ctx, planID, title, description, acceptance, references)
}

// InsertStep inserts a step at a position, shifting later steps.
func (h *Handler) InsertStep(ctx context.Context, planID int64, position int, title string, description, acceptance *string, references []string) (*task.Step, error) {
	return h.store.InsertStep(ctx, planID, position, title, description, acceptance, references)
}

// ShowStep reads a step; a missing id is StepNotFound.
func (h *Handler) ShowStep(ctx context.Context, id int64) (*task.Step, error) {
	step, err := h.store.GetStep(ctx, id)
	if err != nil {
		return nil, err
	}
	if step == nil {
		return nil, beaconerr.StepNotFound(id)
	}
	return step, nil
}

// SwapSteps exchanges the order of two steps.
func (h *Handler) SwapSteps(ctx context.Context, a, b int64) error {
	return h.store.SwapSteps(ctx, a, b)
}

// RemoveStep deletes a step and reindexes its plan.
func (h *Handler) RemoveStep(ctx context.Context, id int64) error {
	return h.store.RemoveStep(ctx, id)
}

// ClaimStep atomically claims a todo step. It returns nil (without error)
// when the step is missing or not claimable.
func (h *Handler) ClaimStep(ctx context.Context, id int64) (*task.Step, error) {
	return h.store.ClaimStep(ctx, id)
}

// UpdateStepInput is the raw sparse update received from a front end.
// Status arrives as an unparsed string.
type UpdateStepInput struct {
	Status             *string
	Title              *string
	Description        *string
	AcceptanceCriteria *string
	References         *[]string
	Result             *string
}

// Fields returns the names of the provided fields, for the update receipt.
func (in UpdateStepInput) Fields() []string {
	var fields []string
	if in.Status != nil {
		fields = append(fields, "status")
	}
	if in.Title != nil {
		fields = append(fields, "title")
	}
	if in.Description != nil {
		fields = append(fields, "description")
	}
	if in.AcceptanceCriteria != nil {
		fields = append(fields, "acceptance_criteria")
	}
	if in.References != nil {
		fields = append(fields, "references")
	}
	if in.Result != nil {
		fields = append(fields, "result")
	}
	return fields
}

// UpdateStep validates the raw input and applies it. The status string is
// parsed and the done-requires-result rule is enforced before the store is
// touched. It returns the updated step and the list of changed field names.
func (h *Handler) UpdateStep(ctx context.Context, id int64, in UpdateStepInput) (*task.Step, []string, error) {
	req := task.UpdateStepRequest{
		Title:              in.Title,
		Description:        in.Description,
		AcceptanceCriteria: in.AcceptanceCriteria,
		References:         in.References,
		Result:             in.Result,
	}
	if in.Status != nil {
		status, err := task.ParseStepStatus(*in.Status)
		if err != nil {
			return nil, nil, err
		}
		if status == task.StepDone && (in.Result == nil || strings.TrimSpace(*in.Result) == "") {
			return nil, nil, beaconerr.InvalidInput("result", "a non-empty result is required to mark a step done")
		}
		req.Status = &status
	}

	step, err := h.store.UpdateStep(ctx, id, req)
	if err != nil {
		return nil, nil, err
	}
	return step, in.Fields(), nil
}
