package timeline

import (
	"sync"
	"time"
)

// NowLineTimer redraws the current-time line on a fixed interval. Each
// Restart replaces the previous ticker, so timers never pile up across renders.
type NowLineTimer struct {
	mu       sync.Mutex
	interval time.Duration
	onTick   func(now time.Time)
	stop     chan struct{}
}

func NewNowLineTimer(interval time.Duration, onTick func(now time.Time)) *NowLineTimer {
	if interval <= 0 {
		interval = NowLineRefresh
	}
	return &NowLineTimer{interval: interval, onTick: onTick}
}

// Restart stops any running ticker and, when active, starts a new one.
func (n *NowLineTimer) Restart(active bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
	if !active || n.onTick == nil {
		return
	}
	stop := make(chan struct{})
	n.stop = stop
	go func() {
		ticker := time.NewTicker(n.interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				n.onTick(now)
			}
		}
	}()
}

func (n *NowLineTimer) Stop() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.stopLocked()
}

// Active reports whether a ticker is running.
func (n *NowLineTimer) Active() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.stop != nil
}

func (n *NowLineTimer) stopLocked() {
	if n.stop != nil {
		close(n.stop)
		n.stop = nil
	}
}
