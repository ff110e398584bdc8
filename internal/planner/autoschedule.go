package planner

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"polytask/internal/model"
)

// Placement is one floating task assigned to a start minute.
type Placement struct {
	Task        model.Task
	StartMinute int
	At          time.Time
}

// FixedOn returns the tasks (including weekly repeat occurrences) assigned
// within the calendar date of day.
func FixedOn(tasks []model.Task, day time.Time) []model.Task {
	from := model.StartOfDay(day)
	to := from.AddDate(0, 0, 1)
	var fixed []model.Task
	for _, t := range ProjectWeekly(tasks, day) {
		if t.Assigned == nil {
			continue
		}
		if t.Assigned.Before(from) || !t.Assigned.Before(to) {
			continue
		}
		fixed = append(fixed, t)
	}
	return fixed
}

// Candidates returns floating, incomplete tasks due on day or later.
func Candidates(tasks []model.Task, day time.Time) []model.Task {
	key := model.DateKey(day)
	var out []model.Task
	for _, t := range tasks {
		if t.Assigned != nil || t.Complete || t.IsVirtual() {
			continue
		}
		if t.Due.IsZero() {
			continue
		}
		if model.DateKey(t.Due) < key {
			continue
		}
		out = append(out, t)
	}
	return out
}

// OrderCandidates sorts in place: due on day first, then priority, earlier due,
// longer duration.
func OrderCandidates(cands []model.Task, day time.Time) {
	key := model.DateKey(day)
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		todayA := model.DateKey(a.Due) == key
		todayB := model.DateKey(b.Due) == key
		if todayA != todayB {
			return todayA
		}
		if pa, pb := model.PriorityWeight(a.Priority), model.PriorityWeight(b.Priority); pa != pb {
			return pa > pb
		}
		if !a.Due.Equal(b.Due) {
			return a.Due.Before(b.Due)
		}
		return a.Duration() > b.Duration()
	})
}

// Plan computes first-fit placements for the floating tasks of day without
// touching the store. Candidates that do not fit are skipped.
func Plan(tasks []model.Task, day time.Time) []Placement {
	cands := Candidates(tasks, day)
	if len(cands) == 0 {
		return nil
	}
	OrderCandidates(cands, day)

	occ := BuildOccupancy(FixedOn(tasks, day), DayStartMinute)
	var placements []Placement
	for _, t := range cands {
		duration := t.Duration()
		start, ok := occ.FirstFit(DayStartMinute, duration)
		if !ok {
			continue
		}
		occ.Mark(start, start+duration+BufferMinutes)
		placements = append(placements, Placement{
			Task:        t,
			StartMinute: start,
			At:          model.AtMinute(day, start),
		})
	}
	return placements
}

// AutoScheduler assigns start times to floating tasks through a TaskStore.
type AutoScheduler struct {
	store TaskStore
}

func NewAutoScheduler(store TaskStore) *AutoScheduler {
	return &AutoScheduler{store: store}
}

// Run schedules the user's floating tasks into the free time of day and
// returns how many were placed. A failed write stops the batch; earlier
// writes stay in effect.
func (s *AutoScheduler) Run(ctx context.Context, userID uint, day time.Time) (int, error) {
	if userID == 0 {
		return 0, nil
	}
	tasks, err := s.store.List(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("list tasks: %w", err)
	}

	placements := Plan(tasks, model.StartOfDay(day))
	if len(placements) == 0 {
		log.Printf("[info] auto-schedule user=%d day=%s: nothing to place", userID, model.DateKey(day))
		return 0, nil
	}

	scheduled := 0
	for _, p := range placements {
		at := p.At
		if _, err := s.store.Update(ctx, userID, p.Task.ID, model.TaskPatch{Assigned: &at}); err != nil {
			return scheduled, fmt.Errorf("schedule task %s: %w", p.Task.ID, err)
		}
		scheduled++
	}
	log.Printf("[info] auto-schedule user=%d day=%s placed=%d", userID, model.DateKey(day), scheduled)
	return scheduled, nil
}
