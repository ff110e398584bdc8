package planner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"polytask/internal/model"
)

// DefaultUndoCapacity bounds the undo log when no capacity is configured.
const DefaultUndoCapacity = 20

type ActionType string

const (
	ActionUpdate ActionType = "update"
	ActionDelete ActionType = "delete"
)

// Action is one reversible mutation. Update actions carry the pre-mutation
// fields in OldPayload; delete actions carry the whole removed task.
type Action struct {
	Type       ActionType
	ID         string
	OldPayload model.TaskPatch
	Deleted    *model.Task
}

// UpdateAction records the fields to restore on task id.
func UpdateAction(id string, old model.TaskPatch) Action {
	return Action{Type: ActionUpdate, ID: id, OldPayload: old}
}

// DeleteAction records a task about to be deleted.
func DeleteAction(t model.Task) Action {
	saved := t
	return Action{Type: ActionDelete, ID: t.ID, Deleted: &saved}
}

// UndoLog is a bounded LIFO of actions. When full, the oldest entry is dropped.
type UndoLog struct {
	mu       sync.Mutex
	actions  []Action
	capacity int
}

func NewUndoLog(capacity int) *UndoLog {
	if capacity <= 0 {
		capacity = DefaultUndoCapacity
	}
	return &UndoLog{capacity: capacity}
}

func (l *UndoLog) Push(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actions = append(l.actions, a)
	if len(l.actions) > l.capacity {
		l.actions = append([]Action(nil), l.actions[len(l.actions)-l.capacity:]...)
	}
}

// Pop removes and returns the most recent action.
func (l *UndoLog) Pop() (Action, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.actions) == 0 {
		return Action{}, false
	}
	last := l.actions[len(l.actions)-1]
	l.actions = l.actions[:len(l.actions)-1]
	return last, true
}

func (l *UndoLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.actions)
}

// Undo pops the latest action and reverts it through store. It returns false
// with a nil error when there is nothing to undo.
func (l *UndoLog) Undo(ctx context.Context, store TaskStore, userID uint) (bool, error) {
	if userID == 0 {
		return false, ErrNotAuthenticated
	}
	a, ok := l.Pop()
	if !ok {
		return false, nil
	}

	switch a.Type {
	case ActionUpdate:
		if _, err := store.Update(ctx, userID, a.ID, a.OldPayload); err != nil {
			return false, fmt.Errorf("undo update %s: %w", a.ID, err)
		}
	case ActionDelete:
		if a.Deleted == nil {
			return false, fmt.Errorf("undo delete %s: no saved task", a.ID)
		}
		if _, err := store.Create(ctx, userID, *a.Deleted); err != nil {
			return false, fmt.Errorf("undo delete %s: %w", a.ID, err)
		}
	default:
		return false, fmt.Errorf("undo: unknown action type %q", a.Type)
	}
	log.Printf("[info] undo %s task=%s user=%d", a.Type, a.ID, userID)
	return true, nil
}
