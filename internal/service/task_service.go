package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"polytask/internal/model"
	"polytask/internal/parser"
	"polytask/internal/planner"
)

// ErrValidation is wrapped by every ValidationError.
var ErrValidation = errors.New("validation failed")

// ValidationError carries a message that can be shown to the user as is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// TaskStore is a task repository with the lookups the services need on top of
// what the planner uses.
type TaskStore interface {
	planner.TaskStore
	Get(ctx context.Context, userID uint, id string) (*model.Task, error)
	DeleteCompleted(ctx context.Context, userID uint) (int64, error)
}

// TaskInput represents data required to create a task.
type TaskInput struct {
	Title    string
	Due      time.Time
	Start    *time.Time
	Duration int
	Priority string
	Repeat   bool
}

// Prefill builds a creation form from a smart-input line. Without a date hint
// the task is due today.
func Prefill(text string, now time.Time) TaskInput {
	res := parser.Parse(text, now)
	input := TaskInput{
		Title:    res.Title,
		Due:      model.StartOfDay(now),
		Duration: res.Duration,
	}
	if day, ok := res.Day(now.Location()); ok {
		input.Due = day
	}
	if start, ok := res.Start(now.Location()); ok {
		input.Start = &start
	}
	return input
}

func (in TaskInput) validate() error {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return invalid("title", "Task name is required")
	}
	if utf8.RuneCountInString(title) > model.MaxNameLength {
		return invalid("title", fmt.Sprintf("Task name must be at most %d characters", model.MaxNameLength))
	}
	if in.Due.IsZero() {
		return invalid("due", "Due date is required")
	}
	return nil
}

// EditInput is the full edit form of an existing task.
type EditInput struct {
	Title    string
	Date     string // YYYY-MM-DD
	Start    string // HH:MM
	Duration int
	Priority string
	Category string
	Color    string
	Repeat   bool
	Complete bool
}

var clockRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

// TaskService wraps task-related business logic.
type TaskService struct {
	tasks      TaskStore
	categories *CategoryService
}

func NewTaskService(tasks TaskStore, categories *CategoryService) *TaskService {
	return &TaskService{tasks: tasks, categories: categories}
}

// CreateTask stores a new task for the session user, then runs the
// categorization pass and an auto-schedule of the session day. It returns the
// created task and how many floating tasks were placed.
func (s *TaskService) CreateTask(ctx context.Context, session *planner.Session, input TaskInput) (*model.Task, int, error) {
	if err := input.validate(); err != nil {
		return nil, 0, err
	}
	duration := input.Duration
	if duration <= 0 {
		duration = model.DefaultEstimateMinutes
	}

	task := model.Task{
		Name:          strings.TrimSpace(input.Title),
		Due:           model.EndOfDay(input.Due),
		EstimatedTime: duration,
		Priority:      input.Priority,
		Repeat:        input.Repeat,
	}
	if input.Start != nil {
		task.Assigned = model.TimePtr(*input.Start)
	}

	created, err := session.Create(ctx, task)
	if err != nil {
		return nil, 0, err
	}
	log.Printf("[info] task created user=%d id=%s", session.UserID(), created.ID)

	if s.categories != nil {
		if _, err := s.categories.Categorize(ctx, session.UserID()); err != nil {
			log.Printf("categorize: %v", err)
		}
	}

	placed, err := session.AutoSchedule(ctx)
	if err != nil {
		return created, placed, fmt.Errorf("auto-schedule: %w", err)
	}
	return created, placed, nil
}

// Edit rewrites every editable field of a task. Repeat occurrence ids resolve
// to the task that generates them. The previous state is recorded for undo.
func (s *TaskService) Edit(ctx context.Context, session *planner.Session, id string, input EditInput) (*model.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, invalid("title", "Task name is required")
	}
	if utf8.RuneCountInString(title) > model.MaxNameLength {
		return nil, invalid("title", fmt.Sprintf("Task name must be at most %d characters", model.MaxNameLength))
	}
	if strings.TrimSpace(input.Date) == "" {
		return nil, invalid("date", "Date is required")
	}
	if !clockRe.MatchString(input.Start) {
		return nil, invalid("start", "Start time must look like HH:MM")
	}
	start, err := time.ParseInLocation("2006-01-02 15:04", input.Date+" "+input.Start, time.Local)
	if err != nil {
		return nil, invalid("start", "Start time must look like HH:MM")
	}
	duration := input.Duration
	if duration == 0 {
		duration = model.DefaultEstimateMinutes
	}
	if duration < 1 {
		duration = 1
	}

	if session.UserID() == 0 {
		return nil, planner.ErrNotAuthenticated
	}
	sourceID := model.SourceID(id)
	old, err := s.tasks.Get(ctx, session.UserID(), sourceID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}

	patch := model.TaskPatch{
		Name:          model.StringPtr(title),
		Assigned:      model.TimePtr(start),
		Due:           model.TimePtr(model.EndOfDay(start)),
		EstimatedTime: model.IntPtr(duration),
		Priority:      model.StringPtr(model.NormalizePriority(input.Priority)),
		Category:      model.StringPtr(strings.TrimSpace(input.Category)),
		Color:         model.StringPtr(strings.TrimSpace(input.Color)),
		Repeat:        model.BoolPtr(input.Repeat),
		Complete:      model.BoolPtr(input.Complete),
	}
	if *patch.Color == "" {
		patch.Color = model.StringPtr(old.Color)
	}

	updated, err := session.Update(ctx, sourceID, patch)
	if err != nil {
		return nil, err
	}
	session.Record(planner.UpdateAction(sourceID, model.FullPatch(*old)))
	return updated, nil
}

// ClearCompleted deletes the user's completed tasks that do not repeat.
func (s *TaskService) ClearCompleted(ctx context.Context, userID uint) (int64, error) {
	if userID == 0 {
		return 0, planner.ErrNotAuthenticated
	}
	n, err := s.tasks.DeleteCompleted(ctx, userID)
	if err != nil {
		return 0, err
	}
	log.Printf("[info] cleared completed user=%d count=%d", userID, n)
	return n, nil
}
