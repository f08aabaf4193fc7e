package handler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/beaconhq/beacon/internal/async"
	"github.com/beaconhq/beacon/internal/beaconerr"
	"github.com/beaconhq/beacon/internal/task"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	return New(async.New(filepath.Join(t.TempDir(), "beacon.db")))
}

func strPtr(s string) *string { return &s }

func mustCreatePlan(t *testing.T, h *Handler, title string) *task.Plan {
	t.Helper()
	p, err := h.CreatePlan(context.Background(), title, nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan %q: %v", title, err)
	}
	return p
}

func mustAddStep(t *testing.T, h *Handler, planID int64, title string) *task.Step {
	t.Helper()
	st, err := h.AddStep(context.Background(), planID, title, nil, nil, nil)
	if err != nil {
		t.Fatalf("add step %q: %v", title, err)
	}
	return st
}

func TestShowPlanMissingIsNotFound(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.ShowPlan(context.Background(), 404)
	var notFound *beaconerr.PlanNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PlanNotFoundError, got %v", err)
	}
}

func TestShowStepMissingIsNotFound(t *testing.T) {
	h := newTestHandler(t)

	_, err := h.ShowStep(context.Background(), 404)
	var notFound *beaconerr.StepNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected StepNotFoundError, got %v", err)
	}
}

func TestDeletePlanRequiresConfirmation(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	p := mustCreatePlan(t, h, "precious")

	_, err := h.DeletePlan(ctx, p.ID, false)
	var invalid *beaconerr.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if invalid.Field != "confirmed" {
		t.Errorf("error field = %q, want confirmed", invalid.Field)
	}

	// The refusal must not have deleted anything.
	if _, err := h.ShowPlan(ctx, p.ID); err != nil {
		t.Fatalf("plan gone after refused delete: %v", err)
	}
}

func TestDeletePlanReturnsPreState(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	p := mustCreatePlan(t, h, "doomed")
	mustAddStep(t, h, p.ID, "doomed step")

	receipt, err := h.DeletePlan(ctx, p.ID, true)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if receipt.Title != "doomed" || len(receipt.Steps) != 1 {
		t.Errorf("receipt does not reflect pre-state: %+v", receipt)
	}

	_, err = h.ShowPlan(ctx, p.ID)
	var notFound *beaconerr.PlanNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("plan should be gone, got %v", err)
	}
}

func TestArchivePlanReturnsPreState(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	p := mustCreatePlan(t, h, "shelved")

	receipt, err := h.ArchivePlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	// The receipt shows the plan as it was before the mutation.
	if receipt.Status != task.PlanActive {
		t.Errorf("receipt status = %s, want active pre-state", receipt.Status)
	}

	got, err := h.ShowPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if got.Status != task.PlanArchived {
		t.Errorf("stored status = %s, want archived", got.Status)
	}
}

func TestListPlanSummariesCounts(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()
	p := mustCreatePlan(t, h, "countable")
	s1 := mustAddStep(t, h, p.ID, "one")
	mustAddStep(t, h, p.ID, "two")

	if _, _, err := h.UpdateStep(ctx, s1.ID, UpdateStepInput{
		Status: strPtr("done"),
		Result: strPtr("finished"),
	}); err != nil {
		t.Fatalf("complete step: %v", err)
	}

	summaries, err := h.ListPlanSummaries(ctx, nil)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected 1 summary, got %d", len(summaries))
	}
	sum := summaries[0]
	if sum.TotalSteps != 2 || sum.CompletedSteps != 1 || sum.PendingSteps != 1 {
		t.Errorf("counts = %d/%d/%d, want 2/1/1", sum.TotalSteps, sum.CompletedSteps, sum.PendingSteps)
	}
}

func TestUpdateStepRejectsUnknownStatus(t *testing.T) {
	h := newTestHandler(t)
	p := mustCreatePlan(t, h, "p")
	st := mustAddStep(t, h, p.ID, "s")

	_, _, err := h.UpdateStep(context.Background(), st.ID, UpdateStepInput{Status: strPtr("finished")})
	var invalid *beaconerr.InvalidInputError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidInputError, got %v", err)
	}
	if invalid.Field != "status" {
		t.Errorf("error field = %q, want status", invalid.Field)
	}
}

func TestUpdateStepDoneWithoutResultRejectedBeforeStore(t *testing.T) {
	h := newTestHandler(t)
	p := mustCreatePlan(t, h, "p")
	st := mustAddStep(t, h, p.ID, "s")
	ctx := context.Background()

	for _, result := range []*string{nil, strPtr(""), strPtr("   ")} {
		_, _, err := h.UpdateStep(ctx, st.ID, UpdateStepInput{Status: strPtr("done"), Result: result})
		var invalid *beaconerr.InvalidInputError
		if !errors.As(err, &invalid) {
			t.Fatalf("expected InvalidInputError, got %v", err)
		}
		if invalid.Field != "result" {
			t.Errorf("error field = %q, want result", invalid.Field)
		}
	}

	// The rejected update must not have changed the step.
	got, err := h.ShowStep(ctx, st.ID)
	if err != nil {
		t.Fatalf("show step: %v", err)
	}
	if got.Status != task.StepTodo {
		t.Errorf("status changed to %s by a rejected update", got.Status)
	}
}

func TestUpdateStepReportsChangedFields(t *testing.T) {
	h := newTestHandler(t)
	p := mustCreatePlan(t, h, "p")
	st := mustAddStep(t, h, p.ID, "s")

	_, changed, err := h.UpdateStep(context.Background(), st.ID, UpdateStepInput{
		Title:  strPtr("renamed"),
		Status: strPtr("inprogress"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(changed) != 2 {
		t.Fatalf("changed = %v, want two fields", changed)
	}
	want := map[string]bool{"status": true, "title": true}
	for _, f := range changed {
		if !want[f] {
			t.Errorf("unexpected changed field %q", f)
		}
	}
}

func TestClaimStepPassesThroughNil(t *testing.T) {
	h := newTestHandler(t)
	p := mustCreatePlan(t, h, "p")
	st := mustAddStep(t, h, p.ID, "s")
	ctx := context.Background()

	first, err := h.ClaimStep(ctx, st.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if first == nil || first.Status != task.StepInProgress {
		t.Fatalf("expected winning claim, got %+v", first)
	}

	second, err := h.ClaimStep(ctx, st.ID)
	if err != nil {
		t.Fatalf("second claim: %v", err)
	}
	if second != nil {
		t.Errorf("expected nil losing claim, got %+v", second)
	}
}

func TestSearchPlansSummarizes(t *testing.T) {
	h := newTestHandler(t)
	ctx := context.Background()

	p, err := h.CreatePlan(ctx, "here", nil, strPtr("/srv/app"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	mustAddStep(t, h, p.ID, "one")

	summaries, err := h.SearchPlans(ctx, "/srv/app", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(summaries) != 1 || summaries[0].TotalSteps != 1 {
		t.Fatalf("unexpected summaries: %+v", summaries)
	}
}
