package printers

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"polytask/internal/model"
	"polytask/internal/service"
)

func at(h, m int) *time.Time {
	ts := time.Date(2024, time.March, 4, h, m, 0, 0, time.Local)
	return &ts
}

func TestAgendaPrinter(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	agenda := service.Agenda{
		Day: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local),
		Scheduled: []model.Task{
			{ID: "a", Name: "Lecture", Assigned: at(9, 0), EstimatedTime: 60, Category: "Math", IsConflict: true},
			{ID: "b", Name: "Office hours", Assigned: at(9, 30), EstimatedTime: 30, IsConflict: true},
			{ID: "c", Name: "School", Assigned: at(12, 0), EstimatedTime: 180, Category: model.CategoryBlocked},
		},
		Floating: []model.Task{{ID: "d", Name: "Laundry", Priority: model.PriorityHigh, EstimatedTime: 15}},
	}

	var buf bytes.Buffer
	p := NewAgendaPrinter(&buf)
	p.ShowID = true
	p.Print(agenda)
	out := buf.String()

	for _, want := range []string{"Monday, 04 Mar 2024", "09:00-10:00", "! Lecture", "■ School", "12:00-15:00",
		"2 overlapping items", "• Laundry", "15 min"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestAgendaPrinter_Empty(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var buf bytes.Buffer
	NewAgendaPrinter(&buf).Print(service.Agenda{Day: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.Local)})
	out := buf.String()
	if !strings.Contains(out, "nothing scheduled") || !strings.Contains(out, "none") {
		t.Errorf("expected empty sections, got:\n%s", out)
	}
}
