package timeline

import (
	"sync"
	"time"
)

// EdgeSpeed returns the scroll step for a pointer at clientY in a viewport of
// the given height: negative near the top edge, positive near the bottom.
func EdgeSpeed(clientY, viewportHeight float64) float64 {
	switch {
	case clientY < EdgeZone:
		return -ScrollSpeed
	case viewportHeight-clientY < EdgeZone:
		return ScrollSpeed
	default:
		return 0
	}
}

// AutoScroller scrolls the viewport while a gesture hovers near an edge. The
// loop stops itself once no pointer event arrived for DragStaleAfter.
type AutoScroller struct {
	mu       sync.Mutex
	scroll   func(dy float64)
	frame    time.Duration
	now      func() time.Time
	speed    float64
	lastSeen time.Time
	running  bool
	stop     chan struct{}
}

// NewAutoScroller calls scroll once per frame while active. A nil scroll is a no-op.
func NewAutoScroller(scroll func(dy float64), frame time.Duration) *AutoScroller {
	if scroll == nil {
		scroll = func(float64) {}
	}
	if frame <= 0 {
		frame = 16 * time.Millisecond
	}
	return &AutoScroller{scroll: scroll, frame: frame, now: time.Now}
}

// Observe records a pointer event and starts or pauses scrolling.
func (a *AutoScroller) Observe(clientY, viewportHeight float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastSeen = a.now()
	a.speed = EdgeSpeed(clientY, viewportHeight)
	if a.speed != 0 && !a.running {
		a.running = true
		a.stop = make(chan struct{})
		go a.loop(a.stop)
	}
}

// Stop ends scrolling immediately.
func (a *AutoScroller) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.speed = 0
	if a.running {
		close(a.stop)
		a.running = false
	}
}

func (a *AutoScroller) Running() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

func (a *AutoScroller) Speed() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.speed
}

func (a *AutoScroller) loop(stop chan struct{}) {
	ticker := time.NewTicker(a.frame)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if !a.step(now) {
				return
			}
		}
	}
}

// step scrolls once and reports whether the loop should continue.
func (a *AutoScroller) step(now time.Time) bool {
	a.mu.Lock()
	if !a.running {
		a.mu.Unlock()
		return false
	}
	if a.speed == 0 || now.Sub(a.lastSeen) > DragStaleAfter {
		a.speed = 0
		a.running = false
		close(a.stop)
		a.mu.Unlock()
		return false
	}
	speed := a.speed
	a.mu.Unlock()

	a.scroll(speed)
	return true
}
