package planner

import (
	"fmt"
	"time"

	"polytask/internal/model"
)

// ProjectWeekly appends a virtual occurrence on day for every repeating task
// whose original weekday matches, unless a real task already sits on day with
// the same name, category and minute. Occurrences are never projected before
// the original date.
func ProjectWeekly(tasks []model.Task, day time.Time) []model.Task {
	key := model.DateKey(day)
	dayStart := model.StartOfDay(day)

	existing := make(map[string]struct{})
	for _, t := range tasks {
		if t.DateKey() != key {
			continue
		}
		existing[signature(t)] = struct{}{}
	}

	out := make([]model.Task, 0, len(tasks))
	out = append(out, tasks...)
	for _, t := range tasks {
		if !t.Repeat || t.Assigned == nil || t.IsVirtual() {
			continue
		}
		base := *t.Assigned
		if base.Weekday() != day.Weekday() {
			continue
		}
		if dayStart.Before(model.StartOfDay(base)) {
			continue
		}
		if _, ok := existing[signature(t)]; ok {
			continue
		}
		occurrence := t
		at := model.AtMinute(day, model.MinuteOfDay(base))
		occurrence.Assigned = &at
		occurrence.ID = model.VirtualID(t.ID, day)
		out = append(out, occurrence)
	}
	return out
}

func signature(t model.Task) string {
	minute := -1
	if t.Assigned != nil {
		minute = model.MinuteOfDay(*t.Assigned)
	}
	return fmt.Sprintf("%s|%s|%d", t.Name, t.Category, minute)
}

// OnDay returns the tasks shown on day: assigned on that date, or floating and due that date.
func OnDay(tasks []model.Task, day time.Time) []model.Task {
	key := model.DateKey(day)
	var out []model.Task
	for _, t := range tasks {
		if t.DateKey() == key {
			out = append(out, t)
		}
	}
	return out
}
