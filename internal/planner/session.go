package planner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"polytask/internal/model"
)

// Session is one user's calendar view: the day being looked at, the store it
// reads and writes, and its undo history. Sessions are independent of each other.
type Session struct {
	mu        sync.RWMutex
	userID    uint
	day       time.Time
	store     TaskStore
	history   *UndoLog
	scheduler *AutoScheduler
}

func NewSession(store TaskStore, userID uint, undoCapacity int, now time.Time) *Session {
	return &Session{
		userID:    userID,
		day:       model.StartOfDay(now),
		store:     store,
		history:   NewUndoLog(undoCapacity),
		scheduler: NewAutoScheduler(store),
	}
}

func (s *Session) UserID() uint {
	return s.userID
}

func (s *Session) Store() TaskStore {
	return s.store
}

func (s *Session) History() *UndoLog {
	return s.history
}

// Day returns the viewed date at midnight.
func (s *Session) Day() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.day
}

func (s *Session) SetDay(day time.Time) {
	s.mu.Lock()
	s.day = model.StartOfDay(day)
	s.mu.Unlock()
}

// ShiftDay moves the view by n days and returns the new day.
func (s *Session) ShiftDay(n int) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.day = s.day.AddDate(0, 0, n)
	return s.day
}

// Today moves the view to the date of now.
func (s *Session) Today(now time.Time) time.Time {
	s.SetDay(now)
	return s.Day()
}

// IsToday reports whether the viewed day is the date of now.
func (s *Session) IsToday(now time.Time) bool {
	return model.DateKey(s.Day()) == model.DateKey(now)
}

// All returns every stored task of the user.
func (s *Session) All(ctx context.Context) ([]model.Task, error) {
	if s.userID == 0 {
		return nil, nil
	}
	tasks, err := s.store.List(ctx, s.userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Load returns the items of the viewed day, weekly repeats included, sorted by
// start with conflict flags set.
func (s *Session) Load(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.All(ctx)
	if err != nil || len(tasks) == 0 {
		return nil, err
	}
	day := s.Day()
	items := OnDay(ProjectWeekly(tasks, day), day)
	MarkConflicts(items)
	return items, nil
}

func (s *Session) Create(ctx context.Context, task model.Task) (*model.Task, error) {
	if s.userID == 0 {
		return nil, ErrNotAuthenticated
	}
	created, err := s.store.Create(ctx, s.userID, task)
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return created, nil
}

// Update persists patch on the task; virtual occurrence ids resolve to their
// generating task.
func (s *Session) Update(ctx context.Context, id string, patch model.TaskPatch) (*model.Task, error) {
	if s.userID == 0 {
		return nil, ErrNotAuthenticated
	}
	updated, err := s.store.Update(ctx, s.userID, model.SourceID(id), patch)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return updated, nil
}

// Record pushes an undo snapshot taken before a mutation.
func (s *Session) Record(a Action) {
	a.ID = model.SourceID(a.ID)
	s.history.Push(a)
}

// Delete removes the task and records it so Undo can re-create it.
// Repeat occurrences cannot be deleted on their own.
func (s *Session) Delete(ctx context.Context, task model.Task) error {
	if s.userID == 0 {
		return ErrNotAuthenticated
	}
	if task.IsVirtual() {
		return ErrVirtualOccurrence
	}
	if err := s.store.Delete(ctx, s.userID, task.ID); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	task.IsConflict = false
	s.history.Push(DeleteAction(task))
	return nil
}

// Undo reverts the latest recorded action. It returns false when the history is empty.
func (s *Session) Undo(ctx context.Context) (bool, error) {
	return s.history.Undo(ctx, s.store, s.userID)
}

// AutoSchedule places floating tasks into the viewed day.
func (s *Session) AutoSchedule(ctx context.Context) (int, error) {
	return s.scheduler.Run(ctx, s.userID, s.Day())
}
