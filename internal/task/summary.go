package task

import "time"

// PlanSummary is a plan projected to step counts for list views.
type PlanSummary struct {
	ID             int64
	Title          string
	Description    *string
	Status         PlanStatus
	Directory      *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	TotalSteps     int
	CompletedSteps int
	PendingSteps   int
}

// Summarize projects a plan (with eagerly loaded steps) to a PlanSummary.
func Summarize(p Plan) PlanSummary {
	completed := 0
	for _, s := range p.Steps {
		if s.Status == StepDone {
			completed++
		}
	}
	return PlanSummary{
		ID:             p.ID,
		Title:          p.Title,
		Description:    p.Description,
		Status:         p.Status,
		Directory:      p.Directory,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
		TotalSteps:     len(p.Steps),
		CompletedSteps: completed,
		PendingSteps:   len(p.Steps) - completed,
	}
}
