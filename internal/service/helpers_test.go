package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
	"polytask/internal/repository"
)

// Monday 2024-03-04 08:00.
var now = time.Date(2024, time.March, 4, 8, 0, 0, 0, time.Local)

func at(day time.Time, h, m int) *time.Time {
	ts := time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, time.Local)
	return &ts
}

func newTaskStore(t *testing.T) *repository.DiskvTaskStore {
	t.Helper()
	return repository.NewDiskvTaskStore(t.TempDir())
}

func newCategoryRepo(t *testing.T) *repository.CategoryRepository {
	t.Helper()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return repository.NewCategoryRepository(db)
}

func mustCreate(t *testing.T, store TaskStore, task model.Task) *model.Task {
	t.Helper()
	if task.Due.IsZero() {
		task.Due = model.EndOfDay(now)
	}
	created, err := store.Create(context.Background(), 1, task)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return created
}

func mustGet(t *testing.T, store TaskStore, id string) *model.Task {
	t.Helper()
	task, err := store.Get(context.Background(), 1, id)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return task
}

func newSession(store TaskStore) *planner.Session {
	return planner.NewSession(store, 1, planner.DefaultUndoCapacity, now)
}
