// Package render formats domain values as Markdown. Both front ends use
// these wrappers, so CLI output and MCP tool results read identically. All
// functions are pure.
package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/beaconhq/beacon/internal/task"
)

// Status glyphs. Fixed; front ends must not restyle them.
const (
	GlyphTodo       = "○"
	GlyphInProgress = "➤"
	GlyphDone       = "✓"
)

// Glyph returns the fixed glyph for a step status.
func Glyph(status task.StepStatus) string {
	switch status {
	case task.StepInProgress:
		return GlyphInProgress
	case task.StepDone:
		return GlyphDone
	default:
		return GlyphTodo
	}
}

// Timestamp renders a stored UTC instant in the system time zone.
func Timestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05 MST")
}

// Plan renders a full plan with its steps.
func Plan(p *task.Plan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Plan %d: %s\n\n", p.ID, p.Title)
	fmt.Fprintf(&b, "- **Status:** %s\n", p.Status)
	if p.Directory != nil {
		fmt.Fprintf(&b, "- **Directory:** `%s`\n", *p.Directory)
	}
	fmt.Fprintf(&b, "- **Created:** %s\n", Timestamp(p.CreatedAt))
	fmt.Fprintf(&b, "- **Updated:** %s\n", Timestamp(p.UpdatedAt))
	if p.Description != nil && *p.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", *p.Description)
	}

	b.WriteString("\n## Steps\n\n")
	if len(p.Steps) == 0 {
		b.WriteString("_No steps yet._\n")
		return b.String()
	}
	for _, s := range p.Steps {
		fmt.Fprintf(&b, "%d. %s %s (step %d)\n", s.Order+1, Glyph(s.Status), s.Title, s.ID)
	}
	return b.String()
}

// Step renders a single step in full.
func Step(s *task.Step) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Step %d: %s\n\n", s.ID, s.Title)
	fmt.Fprintf(&b, "- **Status:** %s %s\n", Glyph(s.Status), s.Status)
	fmt.Fprintf(&b, "- **Plan:** %d\n", s.PlanID)
	fmt.Fprintf(&b, "- **Position:** %d\n", s.Order)
	fmt.Fprintf(&b, "- **Created:** %s\n", Timestamp(s.CreatedAt))
	fmt.Fprintf(&b, "- **Updated:** %s\n", Timestamp(s.UpdatedAt))

	if s.Description != nil && *s.Description != "" {
		fmt.Fprintf(&b, "\n## Description\n\n%s\n", *s.Description)
	}
	if s.AcceptanceCriteria != nil && *s.AcceptanceCriteria != "" {
		fmt.Fprintf(&b, "\n## Acceptance Criteria\n\n%s\n", *s.AcceptanceCriteria)
	}
	if len(s.References) > 0 {
		b.WriteString("\n## References\n\n")
		for _, ref := range s.References {
			fmt.Fprintf(&b, "- %s\n", ref)
		}
	}
	if s.Result != nil && *s.Result != "" {
		fmt.Fprintf(&b, "\n## Result\n\n%s\n", *s.Result)
	}
	return b.String()
}

// PlanList renders plan summaries as a table, newest first.
func PlanList(summaries []task.PlanSummary) string {
	if len(summaries) == 0 {
		return "_No plans found._\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Plans (%d)\n\n", len(summaries))
	b.WriteString("| ID | Title | Status | Steps | Directory |\n")
	b.WriteString("|---:|-------|--------|-------|-----------|\n")
	for _, s := range summaries {
		dir := ""
		if s.Directory != nil {
			dir = *s.Directory
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %d/%d done | `%s` |\n",
			s.ID, s.Title, s.Status, s.CompletedSteps, s.TotalSteps, dir)
	}
	return b.String()
}

// StepList renders steps in order.
func StepList(steps []task.Step) string {
	if len(steps) == 0 {
		return "_No steps._\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "# Steps (%d)\n\n", len(steps))
	for _, s := range steps {
		fmt.Fprintf(&b, "%d. %s %s (step %d)\n", s.Order+1, Glyph(s.Status), s.Title, s.ID)
	}
	return b.String()
}

// Success renders a success status line.
func Success(msg string) string {
	return "✓ " + msg + "\n"
}

// Failure renders a failure status line.
func Failure(msg string) string {
	return "✗ " + msg + "\n"
}

// PlanCreated is the receipt for a newly created plan.
func PlanCreated(p *task.Plan) string {
	var b strings.Builder
	b.WriteString(Success(fmt.Sprintf("Created plan %d: %s", p.ID, p.Title)))
	if p.Directory != nil {
		fmt.Fprintf(&b, "\nDirectory: `%s`\n", *p.Directory)
	}
	return b.String()
}

// StepCreated is the receipt for a newly added or inserted step.
func StepCreated(s *task.Step) string {
	return Success(fmt.Sprintf("Added step %d to plan %d at position %d: %s",
		s.ID, s.PlanID, s.Order, s.Title))
}

// StepUpdated is the receipt for a step update, naming the changed fields.
func StepUpdated(s *task.Step, changed []string) string {
	if len(changed) == 0 {
		return Success(fmt.Sprintf("Step %d unchanged (no fields provided)", s.ID))
	}
	return Success(fmt.Sprintf("Updated step %d (%s)", s.ID, strings.Join(changed, ", "))) +
		"\n" + Step(s)
}

// PlanArchived is the receipt for archiving, rendered from the pre-state.
func PlanArchived(p *task.Plan) string {
	return Success(fmt.Sprintf("Archived plan %d: %s", p.ID, p.Title))
}

// PlanUnarchived is the receipt for unarchiving, rendered from the pre-state.
func PlanUnarchived(p *task.Plan) string {
	return Success(fmt.Sprintf("Unarchived plan %d: %s", p.ID, p.Title))
}

// PlanDeleted is the receipt for deletion, rendered from the pre-state.
func PlanDeleted(p *task.Plan) string {
	steps := "steps"
	if len(p.Steps) == 1 {
		steps = "step"
	}
	return Success(fmt.Sprintf("Deleted plan %d: %s (%d %s removed)",
		p.ID, p.Title, len(p.Steps), steps))
}

// StepsSwapped is the receipt for a swap.
func StepsSwapped(a, b int64) string {
	return Success(fmt.Sprintf("Swapped steps %d and %d", a, b))
}

// StepRemoved is the receipt for removing a step.
func StepRemoved(id int64) string {
	return Success(fmt.Sprintf("Removed step %d", id))
}

// StepClaimed is the receipt for a successful claim.
func StepClaimed(s *task.Step) string {
	return Success(fmt.Sprintf("Claimed step %d: %s", s.ID, s.Title)) + "\n" + Step(s)
}

// StepNotClaimable reports a claim that found no todo step.
func StepNotClaimable(id int64) string {
	return Failure(fmt.Sprintf("Step %d is not available to claim (missing, already claimed, or done)", id))
}
