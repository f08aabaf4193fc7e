package task

// UpdateStepRequest is a sparse step update: nil fields preserve the current
// value. Status transitions interact with Result (done requires a result;
// reverting to todo or inprogress clears it); that rule is enforced by the
// store when it merges the request.
type UpdateStepRequest struct {
	Title              *string
	Description        *string
	AcceptanceCriteria *string
	References         *[]string
	Status             *StepStatus
	Result             *string
}

// IsEmpty reports whether the request carries no fields at all.
func (r UpdateStepRequest) IsEmpty() bool {
	return r.Title == nil &&
		r.Description == nil &&
		r.AcceptanceCriteria == nil &&
		r.References == nil &&
		r.Status == nil &&
		r.Result == nil
}
