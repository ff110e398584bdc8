package repository

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"polytask/internal/model"
)

// ErrTaskNotFound is returned when a task does not exist for the user.
var ErrTaskNotFound = errors.New("task not found")

// TaskRepository stores tasks in SQL through gorm. A missing task table is
// provisioned on first use and the operation retried once.
type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// withTable runs op, provisioning the schema and retrying once if the table is missing.
func (r *TaskRepository) withTable(ctx context.Context, op func(db *gorm.DB) error) error {
	err := missingCollection(op(r.db.WithContext(ctx)))
	if !errors.Is(err, ErrCollectionMissing) {
		return err
	}
	log.Printf("[info] task table missing, provisioning")
	if perr := Migrate(r.db.WithContext(ctx)); perr != nil {
		return fmt.Errorf("%w: %v", ErrCollectionMissing, perr)
	}
	return missingCollection(op(r.db.WithContext(ctx)))
}

func (r *TaskRepository) List(ctx context.Context, userID uint) ([]model.Task, error) {
	var tasks []model.Task
	err := r.withTable(ctx, func(db *gorm.DB) error {
		tasks = nil
		return db.Where("user_id = ?", userID).Order("due ASC, created_at ASC").Find(&tasks).Error
	})
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (r *TaskRepository) Get(ctx context.Context, userID uint, id string) (*model.Task, error) {
	var task model.Task
	err := r.withTable(ctx, func(db *gorm.DB) error {
		return db.Where("user_id = ? AND id = ?", userID, id).First(&task).Error
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// Create stores task for the user. A task without an id gets a new UUID; a
// preset id is kept so deleted tasks can be restored as they were.
func (r *TaskRepository) Create(ctx context.Context, userID uint, task model.Task) (*model.Task, error) {
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.UserID = userID
	task.IsConflict = false
	task.Normalize()

	err := r.withTable(ctx, func(db *gorm.DB) error {
		return db.Create(&task).Error
	})
	if err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

func (r *TaskRepository) Update(ctx context.Context, userID uint, id string, patch model.TaskPatch) (*model.Task, error) {
	if !patch.IsEmpty() {
		var affected int64
		err := r.withTable(ctx, func(db *gorm.DB) error {
			res := db.Model(&model.Task{}).Where("user_id = ? AND id = ?", userID, id).Updates(patch.Columns())
			affected = res.RowsAffected
			return res.Error
		})
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
		if affected == 0 {
			return nil, ErrTaskNotFound
		}
	}
	return r.Get(ctx, userID, id)
}

func (r *TaskRepository) Delete(ctx context.Context, userID uint, id string) error {
	var affected int64
	err := r.withTable(ctx, func(db *gorm.DB) error {
		res := db.Where("user_id = ? AND id = ?", userID, id).Delete(&model.Task{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DeleteCompleted removes the user's completed tasks that do not repeat.
func (r *TaskRepository) DeleteCompleted(ctx context.Context, userID uint) (int64, error) {
	var affected int64
	err := r.withTable(ctx, func(db *gorm.DB) error {
		res := db.Where(map[string]interface{}{"user_id": userID, "complete": true, "repeat": false}).Delete(&model.Task{})
		affected = res.RowsAffected
		return res.Error
	})
	if err != nil {
		return 0, fmt.Errorf("delete completed tasks: %w", err)
	}
	return affected, nil
}
