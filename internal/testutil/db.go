// Package testutil provides reusable test fixtures for Beacon store tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/beaconhq/beacon/internal/store"
	"github.com/beaconhq/beacon/internal/task"
)

// TestDB wraps a store backed by a temporary database file.
type TestDB struct {
	Path  string
	Store *store.Store
	t     *testing.T
}

// NewTestDB opens a store on a fresh database under t.TempDir().
// The store is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "beacon.db")
	st, err := store.Open(path)
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	return &TestDB{Path: path, Store: st, t: t}
}

// MustCreatePlan creates a plan or fails the test.
func (db *TestDB) MustCreatePlan(title string, description, directory *string) *task.Plan {
	db.t.Helper()
	p, err := db.Store.CreatePlan(context.Background(), title, description, directory)
	if err != nil {
		db.t.Fatalf("failed to create plan %q: %v", title, err)
	}
	return p
}

// MustAddStep appends a step or fails the test.
func (db *TestDB) MustAddStep(planID int64, title string) *task.Step {
	db.t.Helper()
	st, err := db.Store.AddStep(context.Background(), planID, title, nil, nil, nil)
	if err != nil {
		db.t.Fatalf("failed to add step %q: %v", title, err)
	}
	return st
}

// MustGetSteps loads a plan's steps in order or fails the test.
func (db *TestDB) MustGetSteps(planID int64) []task.Step {
	db.t.Helper()
	steps, err := db.Store.GetSteps(context.Background(), planID)
	if err != nil {
		db.t.Fatalf("failed to load steps for plan %d: %v", planID, err)
	}
	return steps
}

// AssertOrders fails the test unless the plan's steps have exactly the given
// titles in the given order, with contiguous orders starting at zero.
func (db *TestDB) AssertOrders(planID int64, titles ...string) {
	db.t.Helper()
	steps := db.MustGetSteps(planID)
	if len(steps) != len(titles) {
		db.t.Fatalf("expected %d steps, got %d", len(titles), len(steps))
	}
	for i, st := range steps {
		if st.Order != i {
			db.t.Errorf("step %d: expected order %d, got %d", st.ID, i, st.Order)
		}
		if st.Title != titles[i] {
			db.t.Errorf("position %d: expected title %q, got %q", i, titles[i], st.Title)
		}
	}
}

// StringPtr returns a pointer to s, for optional fields in fixtures.
func StringPtr(s string) *string {
	return &s
}
