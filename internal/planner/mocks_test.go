package planner

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"polytask/internal/model"
)

var ErrMockStore = errors.New("mock store error")

// MockTaskStore is an in-memory TaskStore that records update calls.
type MockTaskStore struct {
	mu          sync.Mutex
	tasks       map[string]model.Task
	nextID      int
	Updates     []UpdateCall
	FailUpdate  int // fail on Nth update (0 = never fail)
	updateCount int
}

type UpdateCall struct {
	ID    string
	Patch model.TaskPatch
}

func NewMockTaskStore(tasks ...model.Task) *MockTaskStore {
	m := &MockTaskStore{tasks: make(map[string]model.Task)}
	for _, t := range tasks {
		if t.UserID == 0 {
			t.UserID = 1
		}
		m.tasks[t.ID] = t
	}
	return m
}

func (m *MockTaskStore) List(ctx context.Context, userID uint) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.tasks {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockTaskStore) Create(ctx context.Context, userID uint, task model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if task.ID == "" {
		m.nextID++
		task.ID = fmt.Sprintf("new-%d", m.nextID)
	}
	task.UserID = userID
	task.Normalize()
	m.tasks[task.ID] = task
	return &task, nil
}

func (m *MockTaskStore) Update(ctx context.Context, userID uint, id string, patch model.TaskPatch) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCount++
	if m.FailUpdate > 0 && m.updateCount >= m.FailUpdate {
		return nil, ErrMockStore
	}
	t, ok := m.tasks[id]
	if !ok || t.UserID != userID {
		return nil, fmt.Errorf("task %s not found", id)
	}
	patch.Apply(&t)
	m.tasks[id] = t
	m.Updates = append(m.Updates, UpdateCall{ID: id, Patch: patch})
	return &t, nil
}

func (m *MockTaskStore) Delete(ctx context.Context, userID uint, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return fmt.Errorf("task %s not found", id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *MockTaskStore) Get(id string) (model.Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	return t, ok
}

// day is a fixed Monday used across tests.
var day = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local)

func at(d time.Time, hour, minute int) *time.Time {
	ts := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, time.Local)
	return &ts
}

func fixed(id string, start *time.Time, minutes int) model.Task {
	return model.Task{ID: id, Name: id, Assigned: start, EstimatedTime: minutes, Due: model.EndOfDay(*start)}
}

func floating(id string, due time.Time, minutes int, priority string) model.Task {
	return model.Task{ID: id, Name: id, Due: model.EndOfDay(due), EstimatedTime: minutes, Priority: priority}
}
