package task

import "time"

// CompletionFilter buckets plans by how much of their work is done.
type CompletionFilter int

const (
	// CompletionAny matches every plan.
	CompletionAny CompletionFilter = iota
	// CompletionComplete matches plans with at least one step, all done.
	CompletionComplete
	// CompletionIncomplete matches plans with at least one step not done.
	CompletionIncomplete
	// CompletionEmpty matches plans with no steps.
	CompletionEmpty
)

// Matches reports whether a plan with the given step counts falls in the bucket.
func (c CompletionFilter) Matches(total, completed int) bool {
	switch c {
	case CompletionComplete:
		return total > 0 && completed == total
	case CompletionIncomplete:
		return total > 0 && completed < total
	case CompletionEmpty:
		return total == 0
	default:
		return true
	}
}

// PlanFilter narrows ListPlans results. Nil fields match everything.
// IncludeArchived selects which summary view the store queries.
type PlanFilter struct {
	TitleContains   *string
	DirectoryPrefix *string
	CreatedAfter    *time.Time
	CreatedBefore   *time.Time
	Status          *PlanStatus
	Completion      CompletionFilter
	IncludeArchived bool
}
