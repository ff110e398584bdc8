package planner

import (
	"testing"

	"polytask/internal/model"
)

func TestBuildOccupancy_MarksUnionOfFixedIntervals(t *testing.T) {
	tasks := []model.Task{
		fixed("a", at(day, 9, 0), 60),
		fixed("b", at(day, 13, 30), 45),
		fixed("c", at(day, 23, 30), 90), // clipped at midnight
	}
	occ := BuildOccupancy(tasks, DayStartMinute)

	want := make(map[int]bool)
	for m := 0; m < DayStartMinute; m++ {
		want[m] = true
	}
	for m := 540; m < 600; m++ {
		want[m] = true
	}
	for m := 810; m < 855; m++ {
		want[m] = true
	}
	for m := 1410; m < MinutesPerDay; m++ {
		want[m] = true
	}

	for m := 0; m < MinutesPerDay; m++ {
		if occ.Occupied(m) != want[m] {
			t.Fatalf("minute %d: expected occupied=%v", m, want[m])
		}
	}
	if occ.BusyMinutes() != len(want) {
		t.Errorf("expected %d busy minutes, got %d", len(want), occ.BusyMinutes())
	}
}

func TestBuildOccupancy_SkipsFloatingTasks(t *testing.T) {
	occ := BuildOccupancy([]model.Task{floating("f", day, 60, "")}, DayStartMinute)
	if occ.BusyMinutes() != DayStartMinute {
		t.Errorf("expected only the blackout busy, got %d minutes", occ.BusyMinutes())
	}
}

func TestOccupancy_FirstFit(t *testing.T) {
	occ := BuildOccupancy([]model.Task{fixed("a", at(day, 6, 0), 120)}, DayStartMinute)

	start, ok := occ.FirstFit(DayStartMinute, 30)
	if !ok || start != 480 {
		t.Errorf("expected 480, got %d (ok=%v)", start, ok)
	}

	full := BuildOccupancy(nil, MinutesPerDay)
	if _, ok := full.FirstFit(DayStartMinute, 15); ok {
		t.Error("expected no fit on a fully occupied day")
	}
}

func TestOccupancy_OutOfRangeIsBusy(t *testing.T) {
	occ := BuildOccupancy(nil, DayStartMinute)
	if !occ.Occupied(-1) || !occ.Occupied(MinutesPerDay) {
		t.Error("expected out-of-range minutes to be busy")
	}
	if occ.Free(1430, 30) {
		t.Error("expected window past midnight to be unavailable")
	}
}
