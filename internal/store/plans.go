package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/beaconhq/beacon/internal/beaconerr"
	"github.com/beaconhq/beacon/internal/pathutil"
	"github.com/beaconhq/beacon/internal/sqlutil"
	"github.com/beaconhq/beacon/internal/task"
)

// CreatePlan inserts a new active plan. The directory is canonicalized; an
// empty directory means the current working directory.
func (s *Store) CreatePlan(ctx context.Context, title string, description *string, directory *string) (*task.Plan, error) {
	dir := ""
	if directory != nil {
		dir = *directory
	}
	canonical, err := pathutil.Canonicalize(dir)
	if err != nil {
		return nil, err
	}

	now := nowUTC()
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO plans (title, description, status, directory, created_at, updated_at)
		VALUES (?, ?, 'active', ?, ?, ?)`,
		title, description, canonical, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert plan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read plan id: %w", err)
	}

	return &task.Plan{
		ID:          id,
		Title:       title,
		Description: description,
		Status:      task.PlanActive,
		Directory:   &canonical,
		CreatedAt:   parseTime(now),
		UpdatedAt:   parseTime(now),
	}, nil
}

// GetPlan reads a plan and eagerly loads its steps in order.
// A missing id returns (nil, nil).
func (s *Store) GetPlan(ctx context.Context, id int64) (*task.Plan, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, status, directory, created_at, updated_at
		FROM plans WHERE id = ?`, id)

	p, err := scanPlan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read plan %d: %w", id, err)
	}

	p.Steps, err = s.GetSteps(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListPlans selects plans matching the filter, newest first, with steps
// eagerly loaded. The archived view is used iff filter.IncludeArchived.
func (s *Store) ListPlans(ctx context.Context, filter *task.PlanFilter) ([]task.Plan, error) {
	if filter == nil {
		filter = &task.PlanFilter{}
	}

	view := "plan_summaries"
	if filter.IncludeArchived {
		view = "all_plan_summaries"
	}

	var conds []string
	var args []any
	if filter.TitleContains != nil && *filter.TitleContains != "" {
		conds = append(conds, `LOWER(title) LIKE ? ESCAPE '\'`)
		args = append(args, "%"+sqlutil.EscapeLike(strings.ToLower(*filter.TitleContains))+"%")
	}
	if filter.DirectoryPrefix != nil && *filter.DirectoryPrefix != "" {
		conds = append(conds, `directory LIKE ? ESCAPE '\'`)
		args = append(args, sqlutil.EscapeLike(*filter.DirectoryPrefix)+"%")
	}
	if filter.CreatedAfter != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.CreatedAfter.UTC().Format(timeFormat))
	}
	if filter.CreatedBefore != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, filter.CreatedBefore.UTC().Format(timeFormat))
	}
	if filter.Status != nil {
		conds = append(conds, "status = ?")
		args = append(args, string(*filter.Status))
	}

	query := `
		SELECT id, title, description, status, directory, created_at, updated_at,
		       total_steps, completed_steps, pending_steps
		FROM ` + view
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}
	defer rows.Close()

	var plans []task.Plan
	for rows.Next() {
		var p task.Plan
		var status, createdAt, updatedAt string
		var total, completed, pending int
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &status, &p.Directory,
			&createdAt, &updatedAt, &total, &completed, &pending); err != nil {
			return nil, fmt.Errorf("failed to scan plan summary: %w", err)
		}
		// The completion bucket is applied in memory using the view counts.
		if !filter.Completion.Matches(total, completed) {
			continue
		}
		p.Status = task.PlanStatus(status)
		p.CreatedAt = parseTime(createdAt)
		p.UpdatedAt = parseTime(updatedAt)
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	for i := range plans {
		steps, err := s.GetSteps(ctx, plans[i].ID)
		if err != nil {
			return nil, err
		}
		plans[i].Steps = steps
	}
	return plans, nil
}

// ArchivePlan transitions a plan to archived. Archiving an already-archived
// plan is a no-op success; a missing plan is PlanNotFound.
func (s *Store) ArchivePlan(ctx context.Context, id int64) error {
	return s.setPlanStatus(ctx, id, task.PlanArchived, task.PlanActive)
}

// UnarchivePlan transitions a plan back to active, with the same idempotence.
func (s *Store) UnarchivePlan(ctx context.Context, id int64) error {
	return s.setPlanStatus(ctx, id, task.PlanActive, task.PlanArchived)
}

func (s *Store) setPlanStatus(ctx context.Context, id int64, target, from task.PlanStatus) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE plans SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(target), nowUTC(), id, string(from))
	if err != nil {
		return fmt.Errorf("failed to update plan status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// The guarded update matched nothing: either the plan is missing or it
	// already has the target status.
	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT 1 FROM plans WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return beaconerr.PlanNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("failed to check plan existence: %w", err)
	}
	return nil
}

// DeletePlan removes a plan and all its steps in one transaction.
func (s *Store) DeletePlan(ctx context.Context, id int64) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var exists int
		err := tx.QueryRowContext(ctx, "SELECT 1 FROM plans WHERE id = ?", id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return beaconerr.PlanNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("failed to check plan existence: %w", err)
		}

		// The ON DELETE CASCADE would cover the steps; the explicit delete
		// keeps the invariant independent of connection pragmas.
		if _, err := tx.ExecContext(ctx, "DELETE FROM steps WHERE plan_id = ?", id); err != nil {
			return fmt.Errorf("failed to delete steps for plan %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete plan %d: %w", id, err)
		}
		return nil
	})
}

// SearchByDirectory canonicalizes the query path and returns plans whose
// directory starts with it.
func (s *Store) SearchByDirectory(ctx context.Context, queryPath string, includeArchived bool) ([]task.Plan, error) {
	canonical, err := pathutil.Canonicalize(queryPath)
	if err != nil {
		return nil, err
	}
	return s.ListPlans(ctx, &task.PlanFilter{
		DirectoryPrefix: &canonical,
		IncludeArchived: includeArchived,
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlan(row rowScanner) (*task.Plan, error) {
	var p task.Plan
	var status, createdAt, updatedAt string
	if err := row.Scan(&p.ID, &p.Title, &p.Description, &status, &p.Directory,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}
	p.Status = task.PlanStatus(status)
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return &p, nil
}
