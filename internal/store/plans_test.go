package store

import (
	"context"
	"errors"
	"testing"

	"github.com/beaconhq/beacon/internal/beaconerr"
	"github.com/beaconhq/beacon/internal/task"
)

func TestCreatePlanCanonicalizesDirectory(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlan(ctx, "messy dir", nil, strPtr("/srv/./projects/../work/"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if p.Directory == nil || *p.Directory != "/srv/work" {
		t.Errorf("expected canonical directory /srv/work, got %v", p.Directory)
	}

	// The stored row must match what the create returned.
	got, err := s.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.Directory == nil || *got.Directory != "/srv/work" {
		t.Errorf("stored directory = %v, want /srv/work", got.Directory)
	}
}

func TestGetPlanMissingReturnsNil(t *testing.T) {
	s := newTestStore(t)

	p, err := s.GetPlan(context.Background(), 9999)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p != nil {
		t.Errorf("expected nil plan, got %+v", p)
	}
}

func TestGetPlanLoadsStepsInOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlan(ctx, "with steps", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	for _, title := range []string{"first", "second", "third"} {
		if _, err := s.AddStep(ctx, p.ID, title, nil, nil, nil); err != nil {
			t.Fatalf("add step %q: %v", title, err)
		}
	}

	got, err := s.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if len(got.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(got.Steps))
	}
	for i, want := range []string{"first", "second", "third"} {
		if got.Steps[i].Title != want {
			t.Errorf("step %d: got %q, want %q", i, got.Steps[i].Title, want)
		}
		if got.Steps[i].Order != i {
			t.Errorf("step %d: order %d", i, got.Steps[i].Order)
		}
	}
}

func TestListPlansExcludesArchivedByDefault(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	active, err := s.CreatePlan(ctx, "active plan", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	archived, err := s.CreatePlan(ctx, "archived plan", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if err := s.ArchivePlan(ctx, archived.ID); err != nil {
		t.Fatalf("archive plan: %v", err)
	}

	plans, err := s.ListPlans(ctx, nil)
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != active.ID {
		t.Fatalf("expected only the active plan, got %d plans", len(plans))
	}

	all, err := s.ListPlans(ctx, &task.PlanFilter{IncludeArchived: true})
	if err != nil {
		t.Fatalf("list all plans: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 plans with IncludeArchived, got %d", len(all))
	}
}

func TestListPlansTitleFilterIsCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePlan(ctx, "Deploy API Gateway", nil, strPtr("/tmp")); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := s.CreatePlan(ctx, "write docs", nil, strPtr("/tmp")); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	plans, err := s.ListPlans(ctx, &task.PlanFilter{TitleContains: strPtr("api")})
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 || plans[0].Title != "Deploy API Gateway" {
		t.Fatalf("expected the gateway plan, got %d plans", len(plans))
	}
}

func TestListPlansCompletionBuckets(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	empty, err := s.CreatePlan(ctx, "empty", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	partial, err := s.CreatePlan(ctx, "partial", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	full, err := s.CreatePlan(ctx, "full", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	_ = empty

	p1, err := s.AddStep(ctx, partial.ID, "open", nil, nil, nil)
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	_ = p1
	f1, err := s.AddStep(ctx, full.ID, "closed", nil, nil, nil)
	if err != nil {
		t.Fatalf("add step: %v", err)
	}
	done := task.StepDone
	if _, err := s.UpdateStep(ctx, f1.ID, task.UpdateStepRequest{Status: &done, Result: strPtr("did it")}); err != nil {
		t.Fatalf("complete step: %v", err)
	}

	tests := []struct {
		name       string
		completion task.CompletionFilter
		wantTitles []string
	}{
		{"complete", task.CompletionComplete, []string{"full"}},
		{"incomplete", task.CompletionIncomplete, []string{"partial"}},
		{"empty", task.CompletionEmpty, []string{"empty"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plans, err := s.ListPlans(ctx, &task.PlanFilter{Completion: tt.completion})
			if err != nil {
				t.Fatalf("list plans: %v", err)
			}
			if len(plans) != len(tt.wantTitles) {
				t.Fatalf("expected %d plans, got %d", len(tt.wantTitles), len(plans))
			}
			for i, want := range tt.wantTitles {
				if plans[i].Title != want {
					t.Errorf("plan %d: got %q, want %q", i, plans[i].Title, want)
				}
			}
		})
	}
}

func TestArchiveUnarchivePlan(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlan(ctx, "lifecycle", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}

	if err := s.ArchivePlan(ctx, p.ID); err != nil {
		t.Fatalf("archive: %v", err)
	}
	got, err := s.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.Status != task.PlanArchived {
		t.Errorf("status after archive = %s", got.Status)
	}

	// Archiving again is an idempotent no-op.
	if err := s.ArchivePlan(ctx, p.ID); err != nil {
		t.Errorf("second archive should be a no-op, got %v", err)
	}

	if err := s.UnarchivePlan(ctx, p.ID); err != nil {
		t.Fatalf("unarchive: %v", err)
	}
	got, err = s.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if got.Status != task.PlanActive {
		t.Errorf("status after unarchive = %s", got.Status)
	}
}

func TestArchiveMissingPlan(t *testing.T) {
	s := newTestStore(t)

	err := s.ArchivePlan(context.Background(), 404)
	var notFound *beaconerr.PlanNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PlanNotFoundError, got %v", err)
	}
	if notFound.ID != 404 {
		t.Errorf("error carries id %d, want 404", notFound.ID)
	}
}

func TestDeletePlanRemovesSteps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	p, err := s.CreatePlan(ctx, "doomed", nil, strPtr("/tmp"))
	if err != nil {
		t.Fatalf("create plan: %v", err)
	}
	step, err := s.AddStep(ctx, p.ID, "doomed step", nil, nil, nil)
	if err != nil {
		t.Fatalf("add step: %v", err)
	}

	if err := s.DeletePlan(ctx, p.ID); err != nil {
		t.Fatalf("delete plan: %v", err)
	}

	gone, err := s.GetPlan(ctx, p.ID)
	if err != nil {
		t.Fatalf("get plan: %v", err)
	}
	if gone != nil {
		t.Error("plan still present after delete")
	}
	orphan, err := s.GetStep(ctx, step.ID)
	if err != nil {
		t.Fatalf("get step: %v", err)
	}
	if orphan != nil {
		t.Error("step survived plan delete")
	}
}

func TestDeleteMissingPlan(t *testing.T) {
	s := newTestStore(t)

	err := s.DeletePlan(context.Background(), 404)
	var notFound *beaconerr.PlanNotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected PlanNotFoundError, got %v", err)
	}
}

// A plan filed under one spelling of a directory must be found through any
// equivalent spelling of the same directory.
func TestSearchByDirectoryEquivalentSpellings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePlan(ctx, "repo work", nil, strPtr("/home/dev/repo/")); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := s.CreatePlan(ctx, "elsewhere", nil, strPtr("/var/other")); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	for _, query := range []string{"/home/dev/repo", "/home/dev/repo/", "/home/dev/./repo", "/home/dev/x/../repo"} {
		plans, err := s.SearchByDirectory(ctx, query, false)
		if err != nil {
			t.Fatalf("search %q: %v", query, err)
		}
		if len(plans) != 1 || plans[0].Title != "repo work" {
			t.Errorf("search %q: expected the repo plan, got %d plans", query, len(plans))
		}
	}
}

// LIKE wildcards in a stored directory must be treated literally.
func TestSearchByDirectoryEscapesWildcards(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePlan(ctx, "underscore", nil, strPtr("/srv/app_v2")); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := s.CreatePlan(ctx, "lookalike", nil, strPtr("/srv/appXv2")); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	plans, err := s.SearchByDirectory(ctx, "/srv/app_v2", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(plans) != 1 || plans[0].Title != "underscore" {
		t.Errorf("underscore query should not match the lookalike, got %d plans", len(plans))
	}
}

func TestSearchByDirectoryPrefixMatch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.CreatePlan(ctx, "parent", nil, strPtr("/home/dev")); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	if _, err := s.CreatePlan(ctx, "child", nil, strPtr("/home/dev/repo")); err != nil {
		t.Fatalf("create plan: %v", err)
	}

	plans, err := s.SearchByDirectory(ctx, "/home/dev", false)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(plans) != 2 {
		t.Errorf("expected prefix search to match parent and child, got %d", len(plans))
	}
}
