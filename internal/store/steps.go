package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/beaconhq/beacon/internal/beaconerr"
	"github.com/beaconhq/beacon/internal/sqlutil"
	"github.com/beaconhq/beacon/internal/task"
)

const stepColumns = `id, plan_id, title, description, acceptance_criteria,
	step_references, status, result, step_order, created_at, updated_at`

// AddStep appends a todo step to the end of a plan's order.
func (s *Store) AddStep(ctx context.Context, planID int64, title string, description, acceptance *string, references []string) (*task.Step, error) {
	var step *task.Step
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := planExists(ctx, tx, planID); err != nil {
			return err
		}

		var next int
		if err := tx.QueryRowContext(ctx,
			"SELECT COALESCE(MAX(step_order) + 1, 0) FROM steps WHERE plan_id = ?", planID).Scan(&next); err != nil {
			return fmt.Errorf("failed to compute next step order: %w", err)
		}

		var err error
		step, err = insertStepRow(ctx, tx, planID, next, title, description, acceptance, references)
		return err
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

// InsertStep inserts a todo step at position, shifting later steps up by one.
// Position must be within [0, step count].
func (s *Store) InsertStep(ctx context.Context, planID int64, position int, title string, description, acceptance *string, references []string) (*task.Step, error) {
	var step *task.Step
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := planExists(ctx, tx, planID); err != nil {
			return err
		}

		var count int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM steps WHERE plan_id = ?", planID).Scan(&count); err != nil {
			return fmt.Errorf("failed to count steps: %w", err)
		}
		if position < 0 || position > count {
			return beaconerr.InvalidInput("position",
				fmt.Sprintf("position %d out of range (plan has %d steps)", position, count))
		}

		// Shift before inserting so the new row cannot collide with the
		// UNIQUE(plan_id, step_order) constraint.
		if err := shiftOrders(ctx, tx, planID, position, 1); err != nil {
			return err
		}

		var err error
		step, err = insertStepRow(ctx, tx, planID, position, title, description, acceptance, references)
		return err
	})
	if err != nil {
		return nil, err
	}
	return step, nil
}

func insertStepRow(ctx context.Context, tx *sql.Tx, planID int64, order int, title string, description, acceptance *string, references []string) (*task.Step, error) {
	now := nowUTC()
	res, err := tx.ExecContext(ctx, `
		INSERT INTO steps (plan_id, title, description, acceptance_criteria,
			step_references, status, result, step_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 'todo', NULL, ?, ?, ?)`,
		planID, title, description, acceptance, joinReferences(references), order, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert step: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read step id: %w", err)
	}
	if err := touchPlan(ctx, tx, planID); err != nil {
		return nil, err
	}

	return &task.Step{
		ID:                 id,
		PlanID:             planID,
		Title:              title,
		Description:        description,
		AcceptanceCriteria: acceptance,
		References:         references,
		Status:             task.StepTodo,
		Order:              order,
		CreatedAt:          parseTime(now),
		UpdatedAt:          parseTime(now),
	}, nil
}

// SwapSteps exchanges the order of two steps in the same plan.
func (s *Store) SwapSteps(ctx context.Context, a, b int64) error {
	if a == b {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		stepA, err := getStepTx(ctx, tx, a)
		if err != nil {
			return err
		}
		if stepA == nil {
			return beaconerr.StepNotFound(a)
		}
		stepB, err := getStepTx(ctx, tx, b)
		if err != nil {
			return err
		}
		if stepB == nil {
			return beaconerr.StepNotFound(b)
		}
		if stepA.PlanID != stepB.PlanID {
			return beaconerr.InvalidInput("step_ids",
				fmt.Sprintf("steps %d and %d belong to different plans", a, b))
		}

		now := nowUTC()
		// Park one step on a sentinel order so the unique constraint is
		// never violated mid-swap.
		if _, err := tx.ExecContext(ctx,
			"UPDATE steps SET step_order = -1, updated_at = ? WHERE id = ?", now, a); err != nil {
			return fmt.Errorf("failed to park step %d: %w", a, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE steps SET step_order = ?, updated_at = ? WHERE id = ?", stepA.Order, now, b); err != nil {
			return fmt.Errorf("failed to reorder step %d: %w", b, err)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE steps SET step_order = ?, updated_at = ? WHERE id = ?", stepB.Order, now, a); err != nil {
			return fmt.Errorf("failed to reorder step %d: %w", a, err)
		}
		return touchPlan(ctx, tx, stepA.PlanID)
	})
}

// UpdateStep applies a sparse update to a step: provided fields override,
// absent fields keep their current values. Transitioning to done requires a
// result; reverting to todo or inprogress clears it.
func (s *Store) UpdateStep(ctx context.Context, id int64, req task.UpdateStepRequest) (*task.Step, error) {
	var updated *task.Step
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		current, err := getStepTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return beaconerr.StepNotFound(id)
		}
		if req.IsEmpty() {
			updated = current
			return nil
		}

		merged := *current
		if req.Title != nil {
			merged.Title = *req.Title
		}
		if req.Description != nil {
			merged.Description = req.Description
		}
		if req.AcceptanceCriteria != nil {
			merged.AcceptanceCriteria = req.AcceptanceCriteria
		}
		if req.References != nil {
			merged.References = *req.References
		}

		if req.Status != nil && *req.Status != current.Status {
			merged.Status = *req.Status
			switch *req.Status {
			case task.StepDone:
				if req.Result == nil || strings.TrimSpace(*req.Result) == "" {
					return beaconerr.InvalidInput("result", "a non-empty result is required to mark a step done")
				}
				merged.Result = req.Result
			default:
				// Reverting from done clears the previous result.
				merged.Result = nil
			}
		}
		// A result without a status transition is ignored: the result is
		// written exactly once, when the step is marked done.

		now := nowUTC()
		if _, err := tx.ExecContext(ctx, `
			UPDATE steps
			SET title = ?, description = ?, acceptance_criteria = ?,
				step_references = ?, status = ?, result = ?, updated_at = ?
			WHERE id = ?`,
			merged.Title, merged.Description, merged.AcceptanceCriteria,
			joinReferences(merged.References), string(merged.Status), merged.Result, now, id); err != nil {
			return fmt.Errorf("failed to update step %d: %w", id, err)
		}
		if err := touchPlan(ctx, tx, merged.PlanID); err != nil {
			return err
		}
		merged.UpdatedAt = parseTime(now)
		updated = &merged
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ClaimStep atomically transitions a todo step to inprogress. It returns the
// updated step, or nil if the step is missing or not claimable. The guarded
// WHERE status = 'todo' update is the sole linearization point when several
// agents race for the same step: losers match zero rows and get nil, never
// an error.
func (s *Store) ClaimStep(ctx context.Context, id int64) (*task.Step, error) {
	var claimed *task.Step
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE steps SET status = 'inprogress', updated_at = ?
			WHERE id = ? AND status = 'todo'`, nowUTC(), id)
		if err != nil {
			return fmt.Errorf("failed to claim step %d: %w", id, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		if affected == 0 {
			// Missing, already claimed, or done.
			return nil
		}

		claimed, err = getStepTx(ctx, tx, id)
		if err != nil {
			return err
		}
		return touchPlan(ctx, tx, claimed.PlanID)
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// GetStep reads a single step. A missing id returns (nil, nil).
func (s *Store) GetStep(ctx context.Context, id int64) (*task.Step, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE id = ?", id)
	step, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read step %d: %w", id, err)
	}
	return step, nil
}

// GetSteps reads all steps of a plan ordered by step order.
func (s *Store) GetSteps(ctx context.Context, planID int64) ([]task.Step, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE plan_id = ? ORDER BY step_order ASC", planID)
	if err != nil {
		return nil, fmt.Errorf("failed to list steps for plan %d: %w", planID, err)
	}
	return sqlutil.ScanRows(rows, func(rows *sql.Rows) (task.Step, error) {
		step, err := scanStep(rows)
		if err != nil {
			return task.Step{}, fmt.Errorf("failed to scan step: %w", err)
		}
		return *step, nil
	})
}

// RemoveStep deletes a step and closes the gap in its plan's order.
func (s *Store) RemoveStep(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var planID int64
		var order int
		err := tx.QueryRowContext(ctx,
			"SELECT plan_id, step_order FROM steps WHERE id = ?", id).Scan(&planID, &order)
		if errors.Is(err, sql.ErrNoRows) {
			return beaconerr.StepNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to read step %d: %w", id, err)
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM steps WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete step %d: %w", id, err)
		}
		if err := shiftOrders(ctx, tx, planID, order+1, -1); err != nil {
			return err
		}
		return touchPlan(ctx, tx, planID)
	})
}

func getStepTx(ctx context.Context, tx *sql.Tx, id int64) (*task.Step, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+stepColumns+" FROM steps WHERE id = ?", id)
	step, err := scanStep(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read step %d: %w", id, err)
	}
	return step, nil
}

// shiftOrders moves step_order by delta for every step of the plan with
// step_order >= from. SQLite checks UNIQUE(plan_id, step_order) per updated
// row, so the move goes through a negative parking range to avoid transient
// collisions regardless of row visit order. The range starts at -2; -1 is the
// swap sentinel.
func shiftOrders(ctx context.Context, tx *sql.Tx, planID int64, from, delta int) error {
	if _, err := tx.ExecContext(ctx, `
		UPDATE steps SET step_order = -(step_order + 2)
		WHERE plan_id = ? AND step_order >= ?`, planID, from); err != nil {
		return fmt.Errorf("failed to shift step orders: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE steps SET step_order = -step_order - 2 + ?
		WHERE plan_id = ? AND step_order <= -2`, delta, planID); err != nil {
		return fmt.Errorf("failed to shift step orders: %w", err)
	}
	return nil
}

func planExists(ctx context.Context, tx *sql.Tx, planID int64) error {
	var exists int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM plans WHERE id = ?", planID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return beaconerr.PlanNotFound(planID)
	}
	if err != nil {
		return fmt.Errorf("failed to check plan existence: %w", err)
	}
	return nil
}

// touchPlan advances the owning plan's updated_at; any step mutation counts
// as a plan mutation.
func touchPlan(ctx context.Context, tx *sql.Tx, planID int64) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE plans SET updated_at = ? WHERE id = ?", nowUTC(), planID); err != nil {
		return fmt.Errorf("failed to touch plan %d: %w", planID, err)
	}
	return nil
}

func scanStep(row rowScanner) (*task.Step, error) {
	var st task.Step
	var refs *string
	var status string
	var createdAt, updatedAt string
	if err := row.Scan(&st.ID, &st.PlanID, &st.Title, &st.Description,
		&st.AcceptanceCriteria, &refs, &status, &st.Result, &st.Order,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	st.References = splitReferences(refs)
	st.Status = task.StepStatus(status)
	st.CreatedAt = parseTime(createdAt)
	st.UpdatedAt = parseTime(updatedAt)
	return &st, nil
}
