package planner

import (
	"polytask/internal/model"
)

const (
	// MinutesPerDay is the length of the occupancy bitmap.
	MinutesPerDay = 1440
	// DayStartMinute is 06:00; earlier minutes are never schedulable.
	DayStartMinute = 6 * 60
	// BufferMinutes is left free after every auto-placed task.
	BufferMinutes = 15
)

// Occupancy is a per-minute busy map of one day.
type Occupancy struct {
	busy [MinutesPerDay]bool
}

// BuildOccupancy marks the pre-dawn blackout [0, dayStart) and every fixed
// task's [start, start+duration) interval, clipped to the day.
func BuildOccupancy(fixed []model.Task, dayStart int) *Occupancy {
	o := &Occupancy{}
	o.Mark(0, dayStart)
	for _, t := range fixed {
		if t.Assigned == nil {
			continue
		}
		start := model.MinuteOfDay(*t.Assigned)
		o.Mark(start, start+t.Duration())
	}
	return o
}

// Mark sets [start, end) busy, clipped to [0, MinutesPerDay).
func (o *Occupancy) Mark(start, end int) {
	if start < 0 {
		start = 0
	}
	if end > MinutesPerDay {
		end = MinutesPerDay
	}
	for i := start; i < end; i++ {
		o.busy[i] = true
	}
}

// Occupied reports whether minute is busy. Out-of-range minutes count as busy.
func (o *Occupancy) Occupied(minute int) bool {
	if minute < 0 || minute >= MinutesPerDay {
		return true
	}
	return o.busy[minute]
}

// Free reports whether [start, start+duration) is entirely free.
func (o *Occupancy) Free(start, duration int) bool {
	if start < 0 || start+duration > MinutesPerDay {
		return false
	}
	for k := 0; k < duration; k++ {
		if o.busy[start+k] {
			return false
		}
	}
	return true
}

// FirstFit scans forward from `from` for the first start whose window of
// duration minutes is free. Starts stop before MinutesPerDay-duration.
func (o *Occupancy) FirstFit(from, duration int) (int, bool) {
	if duration < 1 {
		duration = 1
	}
	for i := from; i < MinutesPerDay-duration; i++ {
		if o.Free(i, duration) {
			return i, true
		}
	}
	return -1, false
}

// BusyMinutes counts the occupied minutes.
func (o *Occupancy) BusyMinutes() int {
	n := 0
	for _, b := range o.busy {
		if b {
			n++
		}
	}
	return n
}
