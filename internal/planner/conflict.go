package planner

import (
	"sort"
	"time"

	"polytask/internal/model"
)

// MarkConflicts sorts items by assigned time (unassigned first) and flags every
// pair whose intervals overlap. Flags are a rendering hint only.
func MarkConflicts(items []model.Task) {
	for i := range items {
		items[i].IsConflict = false
	}
	sort.SliceStable(items, func(i, j int) bool {
		return startOf(items[i]).Before(startOf(items[j]))
	})

	for i := 0; i < len(items); i++ {
		a := items[i]
		if a.Assigned == nil {
			continue
		}
		startA := model.MinuteOfDay(*a.Assigned)
		endA := startA + a.Duration()

		for j := i + 1; j < len(items); j++ {
			b := items[j]
			if b.Assigned == nil {
				continue
			}
			startB := model.MinuteOfDay(*b.Assigned)
			if startB >= endA {
				break
			}
			items[i].IsConflict = true
			items[j].IsConflict = true
		}
	}
}

func startOf(t model.Task) time.Time {
	if t.Assigned == nil {
		return time.Unix(0, 0)
	}
	return *t.Assigned
}
