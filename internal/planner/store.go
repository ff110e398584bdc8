// Package planner holds the day scheduling engine: the occupancy bitmap,
// the auto-scheduler, conflict marking, weekly repeat projection and the
// undo log, tied together by a per-user Session.
package planner

import (
	"context"
	"errors"

	"polytask/internal/model"
)

// ErrNotAuthenticated is returned by mutations issued without a user.
var ErrNotAuthenticated = errors.New("user not authenticated")

// ErrVirtualOccurrence is returned when a weekly repeat occurrence is deleted
// instead of the task that generates it.
var ErrVirtualOccurrence = errors.New("repeat occurrence cannot be deleted on its own")

// TaskStore is the task repository the engine reads and writes through.
type TaskStore interface {
	List(ctx context.Context, userID uint) ([]model.Task, error)
	Create(ctx context.Context, userID uint, task model.Task) (*model.Task, error)
	Update(ctx context.Context, userID uint, id string, patch model.TaskPatch) (*model.Task, error)
	Delete(ctx context.Context, userID uint, id string) error
}
