package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"

	"polytask/internal/model"
)

// DiskvTaskStore keeps one JSON file per task under <base>/<userID>/<taskID>.
type DiskvTaskStore struct {
	mu sync.Mutex
	d  *diskv.Diskv
}

func NewDiskvTaskStore(basePath string) *DiskvTaskStore {
	if basePath == "" {
		basePath = "polytask-data"
	}
	return &DiskvTaskStore{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}
}

func keyToPath(key string) *diskv.PathKey {
	parts := strings.Split(key, "/")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKey(pk *diskv.PathKey) string {
	return strings.Join(append(append([]string{}, pk.Path...), pk.FileName), "/")
}

func taskKey(userID uint, id string) string {
	return fmt.Sprintf("%d/%s", userID, id)
}

func (s *DiskvTaskStore) read(key string) (*model.Task, error) {
	raw, err := s.d.Read(key)
	if err != nil {
		return nil, err
	}
	var task model.Task
	if err := json.Unmarshal(raw, &task); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return &task, nil
}

func (s *DiskvTaskStore) write(task *model.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return s.d.Write(taskKey(task.UserID, task.ID), data)
}

func (s *DiskvTaskStore) List(ctx context.Context, userID uint) ([]model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	walkCtx, stop := context.WithCancel(ctx)
	defer stop()

	var tasks []model.Task
	for key := range s.d.KeysPrefix(fmt.Sprintf("%d/", userID), walkCtx.Done()) {
		task, err := s.read(key)
		if err != nil {
			return nil, fmt.Errorf("list tasks: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if !a.Due.Equal(b.Due) {
			return a.Due.Before(b.Due)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return tasks, nil
}

func (s *DiskvTaskStore) Get(ctx context.Context, userID uint, id string) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := taskKey(userID, id)
	if !s.d.Has(key) {
		return nil, ErrTaskNotFound
	}
	return s.read(key)
}

func (s *DiskvTaskStore) Create(ctx context.Context, userID uint, task model.Task) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if s.d.Has(taskKey(userID, task.ID)) {
		return nil, fmt.Errorf("create task: id %s already exists", task.ID)
	}
	task.UserID = userID
	task.IsConflict = false
	task.Normalize()
	now := time.Now()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	if err := s.write(&task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

func (s *DiskvTaskStore) Update(ctx context.Context, userID uint, id string, patch model.TaskPatch) (*model.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := taskKey(userID, id)
	if !s.d.Has(key) {
		return nil, ErrTaskNotFound
	}
	task, err := s.read(key)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if patch.IsEmpty() {
		return task, nil
	}
	patch.Apply(task)
	task.UpdatedAt = time.Now()
	if err := s.write(task); err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return task, nil
}

func (s *DiskvTaskStore) Delete(ctx context.Context, userID uint, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := taskKey(userID, id)
	if !s.d.Has(key) {
		return ErrTaskNotFound
	}
	if err := s.d.Erase(key); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// DeleteCompleted removes the user's completed tasks that do not repeat.
func (s *DiskvTaskStore) DeleteCompleted(ctx context.Context, userID uint) (int64, error) {
	tasks, err := s.List(ctx, userID)
	if err != nil {
		return 0, err
	}
	var n int64
	for _, t := range tasks {
		if !t.Complete || t.Repeat {
			continue
		}
		if err := s.Delete(ctx, userID, t.ID); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}
