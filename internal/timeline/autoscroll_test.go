package timeline

import (
	"sync"
	"testing"
	"time"
)

func TestEdgeSpeed(t *testing.T) {
	cases := []struct {
		y    float64
		want float64
	}{
		{10, -ScrollSpeed},
		{59, -ScrollSpeed},
		{60, 0},
		{400, 0},
		{741, ScrollSpeed},
		{799, ScrollSpeed},
	}
	for _, tc := range cases {
		if got := EdgeSpeed(tc.y, 800); got != tc.want {
			t.Errorf("y=%v: expected %v, got %v", tc.y, tc.want, got)
		}
	}
}

func TestAutoScroller_StopsWhenStale(t *testing.T) {
	var mu sync.Mutex
	var scrolled []float64
	a := NewAutoScroller(func(dy float64) {
		mu.Lock()
		scrolled = append(scrolled, dy)
		mu.Unlock()
	}, time.Hour)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return start }

	a.Observe(790, 800)
	if !a.Running() || a.Speed() != ScrollSpeed {
		t.Fatalf("expected running at %v, got %v %v", ScrollSpeed, a.Running(), a.Speed())
	}

	if !a.step(start.Add(50 * time.Millisecond)) {
		t.Fatal("expected loop to continue within the stale window")
	}
	if a.step(start.Add(DragStaleAfter + time.Millisecond)) {
		t.Fatal("expected loop to stop after the stale window")
	}
	if a.Running() || a.Speed() != 0 {
		t.Error("expected scroller stopped")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(scrolled) != 1 || scrolled[0] != ScrollSpeed {
		t.Errorf("expected one scroll of %v, got %v", ScrollSpeed, scrolled)
	}
}

func TestAutoScroller_PausesAwayFromEdges(t *testing.T) {
	a := NewAutoScroller(nil, time.Hour)
	start := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return start }

	a.Observe(5, 800)
	a.Observe(400, 800)
	if a.step(start) {
		t.Error("expected loop to end once the pointer leaves the edge")
	}

	a.Observe(5, 800)
	if !a.Running() || a.Speed() != -ScrollSpeed {
		t.Error("expected scrolling to restart upward")
	}
	a.Stop()
	if a.Running() {
		t.Error("expected stopped")
	}
}
