package timeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
)

func TestController_DragAndDrop(t *testing.T) {
	c, store, notifier := newTestController(Hooks{}, task("a", at(9, 0), 60))
	defer c.Close()
	ctx := context.Background()
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.BeginDrag("a", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != Dragging {
		t.Fatalf("expected dragging, got %s", c.State())
	}
	if err := c.BeginResize("a", 0); !errors.Is(err, ErrBusy) {
		t.Errorf("expected ErrBusy, got %v", err)
	}
	if err := c.DragOver(400, 800); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	g := NewGeometry(0)
	// 14:07 under the item top snaps to 14:00.
	y := g.YFor(14*60+7) + 10
	if err := c.Drop(ctx, y); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State() != Idle {
		t.Errorf("expected idle, got %s", c.State())
	}

	got := store.Get("a")
	if model.MinuteOfDay(*got.Assigned) != 14*60 {
		t.Errorf("expected 14:00, got %v", got.Assigned)
	}
	if len(store.Updates) != 1 || store.Updates[0].EstimatedTime != nil {
		t.Errorf("expected one assigned-only update, got %+v", store.Updates)
	}
	last := notifier.Last()
	if last.Message != "Task moved" || last.Action == nil {
		t.Errorf("unexpected notice %+v", last)
	}

	if err := last.Action.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Get("a"); model.MinuteOfDay(*got.Assigned) != 9*60 {
		t.Errorf("expected undo back to 09:00, got %v", got.Assigned)
	}
}

func TestController_DropWithoutDrag(t *testing.T) {
	c, _, _ := newTestController(Hooks{})
	defer c.Close()
	if err := c.Drop(context.Background(), 0); !errors.Is(err, ErrNoGesture) {
		t.Errorf("expected ErrNoGesture, got %v", err)
	}
}

func TestController_BlockedIsNotInteractive(t *testing.T) {
	blocked := task("b", at(8, 0), 60)
	blocked.Category = model.CategoryBlocked
	opened := false
	c, _, _ := newTestController(Hooks{OpenSchedule: func() { opened = true }}, blocked)
	defer c.Close()
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.BeginDrag("b", 0); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("expected ErrNotInteractive on drag, got %v", err)
	}
	if err := c.ResizeTo(ctx, "b", 30); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("expected ErrNotInteractive on resize, got %v", err)
	}
	if err := c.Complete(ctx, "b"); !errors.Is(err, ErrNotInteractive) {
		t.Errorf("expected ErrNotInteractive on complete, got %v", err)
	}
	if err := c.Click("b"); err != nil || !opened {
		t.Errorf("expected schedule flow to open, got %v", err)
	}
	if c.Session().History().Len() != 0 {
		t.Error("expected no undo entries")
	}
}

func TestController_Resize(t *testing.T) {
	c, store, notifier := newTestController(Hooks{}, task("a", at(9, 0), 60))
	defer c.Close()
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.BeginResize("a", 200); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	height, minutes, err := c.ResizeMove(296, 500, 800)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if height != 288 || minutes != 90 {
		t.Errorf("expected 288px/90m, got %v/%d", height, minutes)
	}
	if err := c.EndResize(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Get("a"); got.EstimatedTime != 90 {
		t.Errorf("expected 90 minutes, got %d", got.EstimatedTime)
	}
	if notifier.Last().Message != "Duration updated" {
		t.Errorf("unexpected notice %+v", notifier.Last())
	}
}

func TestController_ResizeUnchangedSkipsWrite(t *testing.T) {
	c, store, _ := newTestController(Hooks{}, task("a", at(9, 0), 60))
	defer c.Close()
	ctx := context.Background()
	c.Refresh(ctx)

	c.BeginResize("a", 200)
	c.ResizeMove(201, 500, 800)
	if err := c.EndResize(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(store.Updates) != 0 {
		t.Errorf("expected no writes, got %d", len(store.Updates))
	}
}

func TestController_ResizeWithoutMoveKeepsDuration(t *testing.T) {
	cases := map[string]model.Task{
		"floored": task("a", at(9, 0), 5),
		"clipped": task("a", at(23, 30), 60),
	}
	for name, tk := range cases {
		t.Run(name, func(t *testing.T) {
			c, store, _ := newTestController(Hooks{}, tk)
			defer c.Close()
			ctx := context.Background()
			c.Refresh(ctx)

			if err := c.BeginResize("a", 300); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if err := c.EndResize(ctx); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(store.Updates) != 0 {
				t.Errorf("expected no writes, got %d", len(store.Updates))
			}
			if got := store.Get("a").EstimatedTime; got != tk.EstimatedTime {
				t.Errorf("expected %d minutes, got %d", tk.EstimatedTime, got)
			}
		})
	}
}

func TestController_ResizeFloorsAtMinHeight(t *testing.T) {
	c, _, _ := newTestController(Hooks{}, task("a", at(9, 0), 60))
	defer c.Close()
	c.Refresh(context.Background())

	c.BeginResize("a", 500)
	height, minutes, _ := c.ResizeMove(0, 500, 800)
	if height != MinItemHeight || minutes != 6 {
		t.Errorf("expected %vpx/6m, got %v/%d", MinItemHeight, height, minutes)
	}
}

func TestController_CompleteAndUndo(t *testing.T) {
	celebrated := false
	c, store, notifier := newTestController(Hooks{Celebrate: func(model.Task) { celebrated = true }}, task("a", at(9, 0), 60))
	defer c.Close()
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.Complete(ctx, "a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := store.Get("a")
	if !got.Complete || got.Color != model.DoneColor {
		t.Errorf("expected complete and gray, got %+v", got)
	}
	if !celebrated {
		t.Error("expected celebrate hook")
	}
	if item, _ := c.View().Find("a"); item.Completable {
		t.Error("expected completed item to be final")
	}

	ok, err := c.Undo(ctx)
	if err != nil || !ok {
		t.Fatalf("expected undo, got %v %v", ok, err)
	}
	got = store.Get("a")
	if got.Complete || got.Color != "mint" {
		t.Errorf("expected mint and open, got %+v", got)
	}

	ok, _ = c.Undo(ctx)
	if ok || notifier.Last().Message != "Nothing to undo" {
		t.Errorf("expected nothing to undo, got %v %+v", ok, notifier.Last())
	}
}

func TestController_MoveToAndResizeTo(t *testing.T) {
	c, store, _ := newTestController(Hooks{}, task("a", at(9, 0), 60))
	defer c.Close()
	ctx := context.Background()
	c.Refresh(ctx)

	if err := c.MoveTo(ctx, "a", 13*60+50); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Get("a"); model.MinuteOfDay(*got.Assigned) != 13*60+45 {
		t.Errorf("expected 13:45, got %v", got.Assigned)
	}
	if err := c.ResizeTo(ctx, "a", 25); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := store.Get("a"); got.EstimatedTime != 25 {
		t.Errorf("expected 25, got %d", got.EstimatedTime)
	}
	if c.Session().History().Len() != 2 {
		t.Errorf("expected 2 undo entries, got %d", c.Session().History().Len())
	}
}

func TestController_DoubleClickAndClick(t *testing.T) {
	var createdDay time.Time
	createdMinute := -1
	var edited string
	hooks := Hooks{
		OpenCreate: func(d time.Time, m int) { createdDay, createdMinute = d, m },
		OpenEdit:   func(t model.Task) { edited = t.ID },
	}
	c, _, _ := newTestController(hooks, task("a", at(9, 0), 60))
	defer c.Close()
	c.Refresh(context.Background())

	g := NewGeometry(0)
	c.DoubleClick(g.YFor(10*60+20), true)
	if createdMinute != -1 {
		t.Error("expected double click on an item to be ignored")
	}
	c.DoubleClick(g.YFor(10*60+20), false)
	if createdMinute != 10*60+15 || !createdDay.Equal(day) {
		t.Errorf("expected 10:15 on %v, got %d on %v", day, createdMinute, createdDay)
	}

	if err := c.Click("a"); err != nil || edited != "a" {
		t.Errorf("expected editor for a, got %q %v", edited, err)
	}
	if err := c.Click("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("expected ErrItemNotFound, got %v", err)
	}
}

func TestController_DragScrollsNearEdge(t *testing.T) {
	store := NewMockTaskStore(task("a", at(9, 0), 60))
	now := day.Add(8 * time.Hour)
	session := planner.NewSession(store, 1, 20, now)
	c := NewController(session, NewGeometry(0), &MockNotifier{}, Hooks{},
		WithClock(func() time.Time { return now }),
		WithScroll(func(dy float64) {}),
	)
	defer c.Close()
	ctx := context.Background()
	if _, err := c.Refresh(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := c.BeginDrag("a", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := c.DragOver(790, 800); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !c.Scroller().Running() || c.Scroller().Speed() != ScrollSpeed {
		t.Errorf("expected scrolling down near the bottom edge")
	}

	if err := c.Drop(ctx, NewGeometry(0).YFor(10*60)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Scroller().Running() {
		t.Error("expected the drop to stop scrolling")
	}
}
