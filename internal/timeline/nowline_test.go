package timeline

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestNowLineTimer_Restart(t *testing.T) {
	var ticks int32
	n := NewNowLineTimer(5*time.Millisecond, func(time.Time) { atomic.AddInt32(&ticks, 1) })
	defer n.Stop()

	n.Restart(true)
	n.Restart(true)
	if !n.Active() {
		t.Fatal("expected timer active")
	}

	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&ticks) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&ticks) == 0 {
		t.Fatal("expected at least one tick")
	}

	n.Restart(false)
	if n.Active() {
		t.Error("expected timer stopped when the view is not today")
	}
}
