package service

import (
	"context"
	"strings"
	"testing"

	"polytask/internal/model"
)

func TestReminderService_Agenda(t *testing.T) {
	store := newTaskStore(t)
	svc := NewReminderService(store)

	mustCreate(t, store, model.Task{Name: "Lecture", Assigned: at(now, 9, 0), EstimatedTime: 60})
	mustCreate(t, store, model.Task{Name: "Office hours", Assigned: at(now, 9, 30), EstimatedTime: 30})
	mustCreate(t, store, model.Task{Name: "Piano", Assigned: at(now.AddDate(0, 0, -7), 17, 0), Repeat: true})
	mustCreate(t, store, model.Task{Name: "Laundry", Priority: model.PriorityHigh})
	mustCreate(t, store, model.Task{Name: "Tomorrow", Due: model.EndOfDay(now.AddDate(0, 0, 1))})

	agenda, err := svc.Agenda(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(agenda.Scheduled) != 3 {
		t.Fatalf("expected 3 scheduled items, got %d", len(agenda.Scheduled))
	}
	if agenda.Scheduled[0].Name != "Lecture" || agenda.Scheduled[2].Name != "Piano" {
		t.Errorf("expected items sorted by start, got %s..%s", agenda.Scheduled[0].Name, agenda.Scheduled[2].Name)
	}
	if !agenda.Scheduled[2].IsVirtual() {
		t.Error("expected weekly repeat occurrence")
	}
	if agenda.Conflicts() != 2 {
		t.Errorf("expected 2 conflicting items, got %d", agenda.Conflicts())
	}
	if len(agenda.Floating) != 1 || agenda.Floating[0].Name != "Laundry" {
		t.Errorf("expected Laundry floating, got %+v", agenda.Floating)
	}
}

func TestReminderService_DailySummary(t *testing.T) {
	store := newTaskStore(t)
	svc := NewReminderService(store)
	mustCreate(t, store, model.Task{Name: "Read <b>ch. 3</b>", Assigned: at(now, 9, 0), EstimatedTime: 45})
	mustCreate(t, store, model.Task{Name: "School", Category: model.CategoryBlocked, Assigned: at(now, 12, 0)})

	text, err := svc.DailySummary(context.Background(), model.User{ID: 1}, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Mon, 04 Mar 2024", "09:00–09:45 Read &lt;b&gt;ch. 3&lt;/b&gt;", "⛔ 12:00–13:00 School", "— none"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "overlapping") {
		t.Errorf("expected no conflicts, got:\n%s", text)
	}
}
