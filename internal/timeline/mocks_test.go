package timeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
)

// MockTaskStore is an in-memory planner.TaskStore.
type MockTaskStore struct {
	mu      sync.Mutex
	tasks   map[string]model.Task
	Updates []model.TaskPatch
}

func NewMockTaskStore(tasks ...model.Task) *MockTaskStore {
	m := &MockTaskStore{tasks: make(map[string]model.Task)}
	for _, t := range tasks {
		t.UserID = 1
		m.tasks[t.ID] = t
	}
	return m
}

func (m *MockTaskStore) List(ctx context.Context, userID uint) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockTaskStore) Create(ctx context.Context, userID uint, task model.Task) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task.UserID = userID
	m.tasks[task.ID] = task
	return &task, nil
}

func (m *MockTaskStore) Update(ctx context.Context, userID uint, id string, patch model.TaskPatch) (*model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, fmt.Errorf("task %s not found", id)
	}
	patch.Apply(&t)
	m.tasks[id] = t
	m.Updates = append(m.Updates, patch)
	return &t, nil
}

func (m *MockTaskStore) Delete(ctx context.Context, userID uint, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

func (m *MockTaskStore) Get(id string) model.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tasks[id]
}

type notice struct {
	Message string
	Kind    NoticeKind
	Action  *NoticeAction
}

// MockNotifier records notices.
type MockNotifier struct {
	mu      sync.Mutex
	Notices []notice
}

func (n *MockNotifier) Notify(message string, kind NoticeKind, action *NoticeAction) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.Notices = append(n.Notices, notice{Message: message, Kind: kind, Action: action})
}

func (n *MockNotifier) Last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.Notices) == 0 {
		return notice{}
	}
	return n.Notices[len(n.Notices)-1]
}

var day = time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local)

func at(hour, minute int) *time.Time {
	ts := time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, time.Local)
	return &ts
}

func task(id string, start *time.Time, minutes int) model.Task {
	return model.Task{
		ID:            id,
		Name:          id,
		Assigned:      start,
		Due:           model.EndOfDay(day),
		EstimatedTime: minutes,
		Color:         "mint",
		Priority:      model.PriorityMedium,
	}
}

func newTestController(hooks Hooks, tasks ...model.Task) (*Controller, *MockTaskStore, *MockNotifier) {
	store := NewMockTaskStore(tasks...)
	notifier := &MockNotifier{}
	now := day.Add(8 * time.Hour)
	session := planner.NewSession(store, 1, 20, now)
	c := NewController(session, NewGeometry(0), notifier, hooks, WithClock(func() time.Time { return now }))
	return c, store, notifier
}
