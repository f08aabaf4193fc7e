// Package async wraps the synchronous store so callers can dispatch
// operations concurrently without blocking on SQLite.
//
// Each call opens a fresh database connection, runs the store work on its own
// goroutine, and delivers the result. Cancelling the context abandons only
// the wait: an operation that has begun runs to completion and closes its
// connection. There is no shared in-memory state between calls; the on-disk
// database provides all coordination.
package async

import (
	"context"

	"github.com/beaconhq/beacon/internal/store"
	"github.com/beaconhq/beacon/internal/task"
)

// Store is the concurrency façade over the SQLite store.
type Store struct {
	dbPath string
}

// New creates a façade for the database at dbPath. No connection is opened
// until an operation runs.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

// Path returns the database path this façade operates on.
func (s *Store) Path() string {
	return s.dbPath
}

func run[T any](ctx context.Context, s *Store, fn func(context.Context, *store.Store) (T, error)) (T, error) {
	type outcome struct {
		val T
		err error
	}
	// Buffered so an abandoned operation can still finish and exit.
	ch := make(chan outcome, 1)

	// Cancelling the caller's context abandons the wait below; the store
	// operation itself runs to completion on a detached context.
	opCtx := context.WithoutCancel(ctx)

	go func() {
		var out outcome
		st, err := store.Open(s.dbPath)
		if err != nil {
			out.err = err
			ch <- out
			return
		}
		defer st.Close()
		out.val, out.err = fn(opCtx, st)
		ch <- out
	}()

	select {
	case out := <-ch:
		return out.val, out.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func runErr(ctx context.Context, s *Store, fn func(context.Context, *store.Store) error) error {
	_, err := run(ctx, s, func(ctx context.Context, st *store.Store) (struct{}, error) {
		return struct{}{}, fn(ctx, st)
	})
	return err
}

func (s *Store) CreatePlan(ctx context.Context, title string, description, directory *string) (*task.Plan, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Plan, error) {
		return st.CreatePlan(ctx, title, description, directory)
	})
}

func (s *Store) GetPlan(ctx context.Context, id int64) (*task.Plan, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Plan, error) {
		return st.GetPlan(ctx, id)
	})
}

func (s *Store) ListPlans(ctx context.Context, filter *task.PlanFilter) ([]task.Plan, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) ([]task.Plan, error) {
		return st.ListPlans(ctx, filter)
	})
}

func (s *Store) ArchivePlan(ctx context.Context, id int64) error {
	return runErr(ctx, s, func(ctx context.Context, st *store.Store) error {
		return st.ArchivePlan(ctx, id)
	})
}

func (s *Store) UnarchivePlan(ctx context.Context, id int64) error {
	return runErr(ctx, s, func(ctx context.Context, st *store.Store) error {
		return st.UnarchivePlan(ctx, id)
	})
}

func (s *Store) DeletePlan(ctx context.Context, id int64) error {
	return runErr(ctx, s, func(ctx context.Context, st *store.Store) error {
		return st.DeletePlan(ctx, id)
	})
}

func (s *Store) SearchByDirectory(ctx context.Context, queryPath string, includeArchived bool) ([]task.Plan, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) ([]task.Plan, error) {
		return st.SearchByDirectory(ctx, queryPath, includeArchived)
	})
}

func (s *Store) AddStep(ctx context.Context, planID int64, title string, description, acceptance *string, references []string) (*task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Step, error) {
		return st.AddStep(ctx, planID, title, description, acceptance, references)
	})
}

func (s *Store) InsertStep(ctx context.Context, planID int64, position int, title string, description, acceptance *string, references []string) (*task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Step, error) {
		return st.InsertStep(ctx, planID, position, title, description, acceptance, references)
	})
}

func (s *Store) SwapSteps(ctx context.Context, a, b int64) error {
	return runErr(ctx, s, func(ctx context.Context, st *store.Store) error {
		return st.SwapSteps(ctx, a, b)
	})
}

func (s *Store) UpdateStep(ctx context.Context, id int64, req task.UpdateStepRequest) (*task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Step, error) {
		return st.UpdateStep(ctx, id, req)
	})
}

func (s *Store) ClaimStep(ctx context.Context, id int64) (*task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Step, error) {
		return st.ClaimStep(ctx, id)
	})
}

func (s *Store) GetStep(ctx context.Context, id int64) (*task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) (*task.Step, error) {
		return st.GetStep(ctx, id)
	})
}

func (s *Store) GetSteps(ctx context.Context, planID int64) ([]task.Step, error) {
	return run(ctx, s, func(ctx context.Context, st *store.Store) ([]task.Step, error) {
		return st.GetSteps(ctx, planID)
	})
}

func (s *Store) RemoveStep(ctx context.Context, id int64) error {
	return runErr(ctx, s, func(ctx context.Context, st *store.Store) error {
		return st.RemoveStep(ctx, id)
	})
}
