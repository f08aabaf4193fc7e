package render

import (
	"strings"
	"testing"
	"time"

	"github.com/beaconhq/beacon/internal/task"
)

func strPtr(s string) *string { return &s }

func samplePlan() *task.Plan {
	created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &task.Plan{
		ID:        7,
		Title:     "Ship the feature",
		Status:    task.PlanActive,
		Directory: strPtr("/srv/app"),
		CreatedAt: created,
		UpdatedAt: created,
		Steps: []task.Step{
			{ID: 11, PlanID: 7, Title: "design", Status: task.StepDone, Result: strPtr("doc written"), Order: 0},
			{ID: 12, PlanID: 7, Title: "build", Status: task.StepInProgress, Order: 1},
			{ID: 13, PlanID: 7, Title: "test", Status: task.StepTodo, Order: 2},
		},
	}
}

func TestGlyphs(t *testing.T) {
	tests := []struct {
		status task.StepStatus
		want   string
	}{
		{task.StepTodo, "○"},
		{task.StepInProgress, "➤"},
		{task.StepDone, "✓"},
	}
	for _, tt := range tests {
		if got := Glyph(tt.status); got != tt.want {
			t.Errorf("Glyph(%s) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestPlanRendersHeaderAndSteps(t *testing.T) {
	out := Plan(samplePlan())

	for _, want := range []string{
		"# Plan 7: Ship the feature",
		"- **Status:** active",
		"- **Directory:** `/srv/app`",
		"## Steps",
		"1. ✓ design (step 11)",
		"2. ➤ build (step 12)",
		"3. ○ test (step 13)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestPlanWithoutSteps(t *testing.T) {
	p := samplePlan()
	p.Steps = nil

	out := Plan(p)
	if !strings.Contains(out, "_No steps yet._") {
		t.Errorf("expected empty-steps placeholder:\n%s", out)
	}
}

func TestStepRendersSections(t *testing.T) {
	s := &task.Step{
		ID:                 11,
		PlanID:             7,
		Title:              "design",
		Description:        strPtr("sketch the API"),
		AcceptanceCriteria: strPtr("reviewed by the team"),
		References:         []string{"docs/api.md"},
		Status:             task.StepDone,
		Result:             strPtr("doc written"),
		Order:              0,
	}

	out := Step(s)
	for _, want := range []string{
		"# Step 11: design",
		"- **Status:** ✓ done",
		"## Description",
		"sketch the API",
		"## Acceptance Criteria",
		"reviewed by the team",
		"## References",
		"- docs/api.md",
		"## Result",
		"doc written",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("step output missing %q:\n%s", want, out)
		}
	}
}

func TestStepOmitsEmptySections(t *testing.T) {
	s := &task.Step{ID: 1, PlanID: 1, Title: "bare", Status: task.StepTodo}

	out := Step(s)
	for _, section := range []string{"## Description", "## Acceptance Criteria", "## References", "## Result"} {
		if strings.Contains(out, section) {
			t.Errorf("bare step should not contain %q:\n%s", section, out)
		}
	}
}

func TestPlanListTable(t *testing.T) {
	summaries := []task.PlanSummary{
		{ID: 1, Title: "one", Status: task.PlanActive, Directory: strPtr("/a"), TotalSteps: 3, CompletedSteps: 1},
	}

	out := PlanList(summaries)
	if !strings.Contains(out, "| ID | Title | Status | Steps | Directory |") {
		t.Errorf("missing table header:\n%s", out)
	}
	if !strings.Contains(out, "| 1 | one | active | 1/3 done | `/a` |") {
		t.Errorf("missing summary row:\n%s", out)
	}
}

func TestPlanListEmpty(t *testing.T) {
	if out := PlanList(nil); !strings.Contains(out, "_No plans found._") {
		t.Errorf("unexpected empty list output: %q", out)
	}
}

func TestStepUpdatedNamesChangedFields(t *testing.T) {
	s := &task.Step{ID: 12, PlanID: 7, Title: "build", Status: task.StepInProgress, Order: 1}

	out := StepUpdated(s, []string{"status", "title"})
	if !strings.Contains(out, "Updated step 12 (status, title)") {
		t.Errorf("missing changed-field list:\n%s", out)
	}

	unchanged := StepUpdated(s, nil)
	if !strings.Contains(unchanged, "unchanged") {
		t.Errorf("expected unchanged notice:\n%s", unchanged)
	}
}

func TestPlanDeletedCountsSteps(t *testing.T) {
	p := samplePlan()
	out := PlanDeleted(p)
	if !strings.Contains(out, "3 steps removed") {
		t.Errorf("missing step count:\n%s", out)
	}

	p.Steps = p.Steps[:1]
	if out := PlanDeleted(p); !strings.Contains(out, "1 step removed") {
		t.Errorf("singular form wrong:\n%s", out)
	}
}

func TestSuccessFailureLines(t *testing.T) {
	if got := Success("did it"); got != "✓ did it\n" {
		t.Errorf("Success = %q", got)
	}
	if got := Failure("nope"); got != "✗ nope\n" {
		t.Errorf("Failure = %q", got)
	}
}

func TestTimestampFormat(t *testing.T) {
	instant := time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)
	got := Timestamp(instant)
	// Rendered in the local zone; the shape is fixed even when the zone isn't.
	if len(got) < len("2006-01-02 15:04:05") {
		t.Fatalf("timestamp too short: %q", got)
	}
	if !strings.Contains(got, "2025-03-01") && !strings.Contains(got, "2025-02-28") && !strings.Contains(got, "2025-03-02") {
		t.Errorf("timestamp date out of range: %q", got)
	}
}
