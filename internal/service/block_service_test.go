package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"polytask/internal/model"
)

func TestWeekStart(t *testing.T) {
	got := WeekStart(now)
	if model.DateKey(got) != "2024-03-03" || got.Weekday() != time.Sunday {
		t.Errorf("expected Sunday 2024-03-03, got %s", got)
	}
}

func TestParseBlockLines(t *testing.T) {
	def, err := ParseBlockLines("mon 08:00-15:00 School\n\nWednesday 18:00-19:30\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Count() != 2 {
		t.Fatalf("expected 2 intervals, got %d", def.Count())
	}
	if got := def[time.Monday][0]; got.Start != "08:00" || got.End != "15:00" || got.Label != "School" {
		t.Errorf("unexpected monday interval %+v", got)
	}
	if got := def[time.Wednesday][0]; got.Label != "" || got.End != "19:30" {
		t.Errorf("unexpected wednesday interval %+v", got)
	}
	if def.Format() != "mon 08:00-15:00 School\nwed 18:00-19:30" {
		t.Errorf("unexpected format %q", def.Format())
	}

	for _, bad := range []string{"funday 08:00-09:00", "mon 08:00", "mon"} {
		if _, err := ParseBlockLines(bad); !errors.Is(err, ErrValidation) {
			t.Errorf("%q: expected ErrValidation, got %v", bad, err)
		}
	}
}

func TestParseWeekYAML(t *testing.T) {
	data := []byte(`
monday:
  - start: "08:00"
    end: "15:00"
    label: School
fri:
  - start: "16:00"
    end: "17:00"
`)
	def, err := ParseWeekYAML(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Count() != 2 || def[time.Friday][0].Start != "16:00" {
		t.Errorf("unexpected definition %+v", def)
	}
	if _, err := ParseWeekYAML([]byte("someday: []")); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}

func TestBlockService_ApplyLoadDiff(t *testing.T) {
	store := newTaskStore(t)
	svc := NewBlockService(store)
	ctx := context.Background()

	def := WeekDefinition{
		time.Monday:    {{Start: "08:00", End: "15:00", Label: "School"}},
		time.Wednesday: {{Start: "18:00", End: "19:30"}},
	}
	res, err := svc.Apply(ctx, 1, now, def, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != (ApplyResult{Created: 2}) {
		t.Errorf("expected 2 created, got %+v", res)
	}

	loaded, err := svc.Load(ctx, 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	school := loaded[time.Monday]
	if len(school) != 1 || school[0].ID == "" || school[0].Start != "08:00" || school[0].End != "15:00" {
		t.Fatalf("unexpected monday definition %+v", school)
	}
	if got := loaded[time.Wednesday]; len(got) != 1 || got[0].Label != "Blocked time" {
		t.Errorf("expected default label, got %+v", got)
	}

	task := mustGet(t, store, school[0].ID)
	if !task.IsBlocked() || task.Color != model.BlockedColor || !task.Repeat || task.EstimatedTime != 420 {
		t.Errorf("unexpected blocked task %+v", task)
	}
	if model.DateKey(task.Due) != "2024-03-04" {
		t.Errorf("expected due on monday, got %v", task.Due)
	}

	school[0].End = "16:00"
	res, err = svc.Apply(ctx, 1, now, WeekDefinition{time.Monday: school}, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res != (ApplyResult{Updated: 1, Deleted: 1}) {
		t.Errorf("expected 1 updated and 1 deleted, got %+v", res)
	}
	if got := mustGet(t, store, school[0].ID); got.EstimatedTime != 480 {
		t.Errorf("expected 480 minutes, got %d", got.EstimatedTime)
	}
	tasks, _ := store.List(ctx, 1)
	if len(tasks) != 1 {
		t.Errorf("expected 1 blocked task left, got %d", len(tasks))
	}
}

func TestBlockService_ApplyValidation(t *testing.T) {
	store := newTaskStore(t)
	svc := NewBlockService(store)
	ctx := context.Background()
	existing := mustCreate(t, store, model.Task{Name: "Gym", Category: model.CategoryBlocked, Assigned: at(now, 7, 0), Repeat: true})

	bad := WeekDefinition{
		time.Monday:  {{Start: "08:00", End: "09:00"}},
		time.Tuesday: {{Start: "10:00", End: "10:00"}},
	}
	if _, err := svc.Apply(ctx, 1, now, bad, true); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
	if _, err := svc.Apply(ctx, 1, now, WeekDefinition{}, true); !errors.Is(err, ErrValidation) {
		t.Errorf("expected ErrValidation for an empty definition, got %v", err)
	}

	tasks, _ := store.List(ctx, 1)
	if len(tasks) != 1 || tasks[0].ID != existing.ID {
		t.Errorf("expected nothing changed, got %+v", tasks)
	}
}

func TestBlockService_LoadFallsBackToWeek(t *testing.T) {
	store := newTaskStore(t)
	svc := NewBlockService(store)
	mustCreate(t, store, model.Task{Name: "Exam", Category: model.CategoryBlocked, Assigned: at(now, 9, 0), EstimatedTime: 90})
	mustCreate(t, store, model.Task{Name: "Old exam", Category: model.CategoryBlocked, Assigned: at(now.AddDate(0, 0, -7), 9, 0)})

	def, err := svc.Load(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if def.Count() != 1 || def[time.Monday][0].End != "10:30" {
		t.Errorf("expected only this week's block, got %+v", def)
	}
}

func TestBlockService_BlockUntilMidnight(t *testing.T) {
	store := newTaskStore(t)
	svc := NewBlockService(store)
	ctx := context.Background()

	def := WeekDefinition{time.Friday: {{Start: "22:00", End: "24:00", Label: "Sleep"}}}
	if _, err := svc.Apply(ctx, 1, now, def, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := svc.Load(ctx, 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	sleep := loaded[time.Friday]
	if len(sleep) != 1 || sleep[0].End != "24:00" {
		t.Fatalf("expected a block ending at 24:00, got %+v", sleep)
	}
	if got := mustGet(t, store, sleep[0].ID); got.EstimatedTime != 120 {
		t.Errorf("expected 120 minutes, got %d", got.EstimatedTime)
	}

	res, err := svc.Apply(ctx, 1, now, loaded, true)
	if err != nil {
		t.Fatalf("unexpected error re-applying: %v", err)
	}
	if res != (ApplyResult{Updated: 1}) {
		t.Errorf("expected the block kept, got %+v", res)
	}
}
