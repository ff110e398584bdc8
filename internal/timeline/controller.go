package timeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
)

var (
	ErrBusy           = errors.New("timeline: another gesture is in progress")
	ErrNoGesture      = errors.New("timeline: no gesture in progress")
	ErrNotInteractive = errors.New("timeline: item is not interactive")
	ErrItemNotFound   = errors.New("timeline: item not on the current day")
)

// State is the gesture the controller is in.
type State int

const (
	Idle State = iota
	Dragging
	Resizing
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Resizing:
		return "resizing"
	default:
		return "idle"
	}
}

type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
	NoticeInfo    NoticeKind = "info"
)

// NoticeAction is an optional button attached to a notice.
type NoticeAction struct {
	Label string
	Run   func(ctx context.Context) error
}

// Notifier shows short messages to the user. Delivery is fire-and-forget.
type Notifier interface {
	Notify(message string, kind NoticeKind, action *NoticeAction)
}

// Hooks open the flows that live outside the timeline. Nil hooks are skipped.
type Hooks struct {
	OpenCreate   func(day time.Time, minute int)
	OpenEdit     func(task model.Task)
	OpenSchedule func()
	Celebrate    func(task model.Task)
	Redraw       func(view View)
}

type Option func(*Controller)

func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

// WithScroll sets the function the auto-scroller moves the viewport with.
func WithScroll(scroll func(dy float64)) Option {
	return func(c *Controller) { c.scroller = NewAutoScroller(scroll, 0) }
}

func WithNowLineInterval(interval time.Duration) Option {
	return func(c *Controller) { c.nowLineInterval = interval }
}

// Controller is the interaction state machine of one day view.
type Controller struct {
	mu       sync.Mutex
	session  *planner.Session
	geo      Geometry
	notifier Notifier
	hooks    Hooks
	now      func() time.Time

	view  View
	state State

	active       Item
	grabOffset   float64
	resizeStartY float64
	liveHeight   float64

	scroller        *AutoScroller
	nowLine         *NowLineTimer
	nowLineInterval time.Duration
}

func NewController(session *planner.Session, geo Geometry, notifier Notifier, hooks Hooks, opts ...Option) *Controller {
	c := &Controller{
		session:  session,
		geo:      geo,
		notifier: notifier,
		hooks:    hooks,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scroller == nil {
		c.scroller = NewAutoScroller(nil, 0)
	}
	c.nowLine = NewNowLineTimer(c.nowLineInterval, c.tickNowLine)
	return c
}

func (c *Controller) Session() *planner.Session {
	return c.session
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) Scroller() *AutoScroller {
	return c.scroller
}

// Refresh reloads the viewed day and renders it. The now-line timer is
// restarted and only runs while the view shows today.
func (c *Controller) Refresh(ctx context.Context) (View, error) {
	tasks, err := c.session.Load(ctx)
	if err != nil {
		return View{}, fmt.Errorf("load day: %w", err)
	}
	view := Render(tasks, c.session.Day(), c.now(), c.geo)

	c.mu.Lock()
	c.view = view
	c.mu.Unlock()

	c.nowLine.Restart(c.session.IsToday(c.now()))
	if c.hooks.Redraw != nil {
		c.hooks.Redraw(view)
	}
	return view, nil
}

// Close stops the controller's timers.
func (c *Controller) Close() {
	c.scroller.Stop()
	c.nowLine.Stop()
}

func (c *Controller) tickNowLine(now time.Time) {
	c.mu.Lock()
	c.view.NowLine, c.view.ShowNowLine = c.geo.NowLineOffset(c.view.Day, now)
	view := c.view
	c.mu.Unlock()
	if c.hooks.Redraw != nil {
		c.hooks.Redraw(view)
	}
}

// lookup finds an interactive item while idle. Callers hold c.mu.
func (c *Controller) lookup(id string) (Item, error) {
	if c.state != Idle {
		return Item{}, ErrBusy
	}
	it, ok := c.view.Find(id)
	if !ok {
		return Item{}, ErrItemNotFound
	}
	return it, nil
}

// BeginDrag enters Dragging for item id and records its slot for undo.
// grabOffset is the pointer distance from the item's top edge.
func (c *Controller) BeginDrag(id string, grabOffset float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, err := c.lookup(id)
	if err != nil {
		return err
	}
	if !it.Draggable {
		return ErrNotInteractive
	}
	c.session.Record(planner.UpdateAction(it.Task.ID, model.SlotSnapshot(it.Task)))
	c.active = it
	c.grabOffset = grabOffset
	c.state = Dragging
	return nil
}

// DragOver feeds pointer movement during a drag to the auto-scroller.
func (c *Controller) DragOver(clientY, viewportHeight float64) error {
	if c.State() != Dragging {
		return ErrNoGesture
	}
	c.scroller.Observe(clientY, viewportHeight)
	return nil
}

// Drop ends the drag at layer offset y and moves the item to the snapped minute.
func (c *Controller) Drop(ctx context.Context, y float64) error {
	c.mu.Lock()
	if c.state != Dragging {
		c.mu.Unlock()
		return ErrNoGesture
	}
	it := c.active
	minute := c.geo.SnapDrop(y - c.grabOffset)
	c.state = Idle
	c.active = Item{}
	c.mu.Unlock()

	c.scroller.Stop()
	return c.move(ctx, it, minute)
}

// MoveTo runs a whole drag gesture that drops item id at minute.
func (c *Controller) MoveTo(ctx context.Context, id string, minute int) error {
	if err := c.BeginDrag(id, 0); err != nil {
		return err
	}
	return c.Drop(ctx, c.geo.YFor(SnapMinute(float64(minute))))
}

func (c *Controller) move(ctx context.Context, it Item, minute int) error {
	assigned := model.AtMinute(c.session.Day(), minute)
	if _, err := c.session.Update(ctx, it.Task.ID, model.TaskPatch{Assigned: &assigned}); err != nil {
		log.Printf("move task %s: %v", it.Task.ID, err)
		c.notify("Move failed", NoticeError, nil)
		return err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return err
	}
	c.notify("Task moved", NoticeSuccess, c.undoAction())
	return nil
}

// BeginResize enters Resizing for item id with the pointer at pointerY.
func (c *Controller) BeginResize(id string, pointerY float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, err := c.lookup(id)
	if err != nil {
		return err
	}
	if !it.Resizable {
		return ErrNotInteractive
	}
	c.session.Record(planner.UpdateAction(it.Task.ID, model.SlotSnapshot(it.Task)))
	c.active = it
	c.resizeStartY = pointerY
	c.liveHeight = it.Height
	c.state = Resizing
	return nil
}

// ResizeMove updates the live height for the pointer at pointerY and returns
// it with the duration label value.
func (c *Controller) ResizeMove(pointerY, clientY, viewportHeight float64) (float64, int, error) {
	c.mu.Lock()
	if c.state != Resizing {
		c.mu.Unlock()
		return 0, 0, ErrNoGesture
	}
	height := c.active.Height + (pointerY - c.resizeStartY)
	if height < MinItemHeight {
		height = MinItemHeight
	}
	c.liveHeight = height
	minutes := c.geo.ResizedDuration(c.active.Task.Duration(), c.active.Height, height)
	c.mu.Unlock()

	c.scroller.Observe(clientY, viewportHeight)
	return height, minutes, nil
}

// EndResize finishes the resize. The duration is persisted only if it changed.
func (c *Controller) EndResize(ctx context.Context) error {
	c.mu.Lock()
	if c.state != Resizing {
		c.mu.Unlock()
		return ErrNoGesture
	}
	it := c.active
	minutes := c.geo.ResizedDuration(it.Task.Duration(), it.Height, c.liveHeight)
	c.state = Idle
	c.active = Item{}
	c.mu.Unlock()

	c.scroller.Stop()
	return c.resize(ctx, it, minutes)
}

// ResizeTo runs a whole resize gesture that sets item id to minutes.
func (c *Controller) ResizeTo(ctx context.Context, id string, minutes int) error {
	if minutes < 1 {
		minutes = 1
	}
	c.mu.Lock()
	it, err := c.lookup(id)
	if err == nil && !it.Resizable {
		err = ErrNotInteractive
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.session.Record(planner.UpdateAction(it.Task.ID, model.SlotSnapshot(it.Task)))
	c.mu.Unlock()
	return c.resize(ctx, it, minutes)
}

func (c *Controller) resize(ctx context.Context, it Item, minutes int) error {
	if minutes == it.Task.Duration() {
		_, err := c.Refresh(ctx)
		return err
	}
	if _, err := c.session.Update(ctx, it.Task.ID, model.TaskPatch{EstimatedTime: &minutes}); err != nil {
		log.Printf("resize task %s: %v", it.Task.ID, err)
		c.notify("Resize failed", NoticeError, nil)
		c.Refresh(ctx)
		return err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return err
	}
	c.notify("Duration updated", NoticeSuccess, nil)
	return nil
}

// Complete marks item id done. The view turns gray before the write lands.
func (c *Controller) Complete(ctx context.Context, id string) error {
	c.mu.Lock()
	it, err := c.lookup(id)
	if err == nil && !it.Completable {
		err = ErrNotInteractive
	}
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.session.Record(planner.UpdateAction(it.Task.ID, model.CompletionSnapshot(it.Task)))
	for i := range c.view.Items {
		if c.view.Items[i].Task.ID == id {
			c.view.Items[i].Background = model.ResolveColor(model.DoneColor)
			c.view.Items[i].Foreground = model.TextColorFor(c.view.Items[i].Background)
			c.view.Items[i].Completable = false
		}
	}
	c.mu.Unlock()

	if c.hooks.Celebrate != nil {
		c.hooks.Celebrate(it.Task)
	}
	patch := model.TaskPatch{Complete: model.BoolPtr(true), Color: model.StringPtr(model.DoneColor)}
	if _, err := c.session.Update(ctx, it.Task.ID, patch); err != nil {
		log.Printf("complete task %s: %v", it.Task.ID, err)
		c.notify("Could not complete task", NoticeError, nil)
		c.Refresh(ctx)
		return err
	}
	if _, err := c.Refresh(ctx); err != nil {
		return err
	}
	c.notify("Task completed", NoticeSuccess, c.undoAction())
	return nil
}

// DoubleClick opens task creation at the snapped minute under y. Double
// clicks that land on an item are ignored.
func (c *Controller) DoubleClick(y float64, onItem bool) {
	if onItem || c.hooks.OpenCreate == nil {
		return
	}
	c.hooks.OpenCreate(c.session.Day(), c.geo.SnapCreate(y))
}

// Click opens the weekly schedule for blocked items and the editor for the rest.
func (c *Controller) Click(id string) error {
	it, ok := c.View().Find(id)
	if !ok {
		return ErrItemNotFound
	}
	if it.Task.IsBlocked() {
		if c.hooks.OpenSchedule != nil {
			c.hooks.OpenSchedule()
		}
		return nil
	}
	if c.hooks.OpenEdit != nil {
		c.hooks.OpenEdit(it.Task)
	}
	return nil
}

// Undo reverts the latest recorded change and re-renders.
func (c *Controller) Undo(ctx context.Context) (bool, error) {
	ok, err := c.session.Undo(ctx)
	if err != nil {
		log.Printf("undo: %v", err)
		c.notify("Undo failed", NoticeError, nil)
		return false, err
	}
	if !ok {
		c.notify("Nothing to undo", NoticeInfo, nil)
		return false, nil
	}
	if _, err := c.Refresh(ctx); err != nil {
		return true, err
	}
	c.notify("Undone", NoticeSuccess, nil)
	return true, nil
}

func (c *Controller) undoAction() *NoticeAction {
	return &NoticeAction{
		Label: "Undo",
		Run: func(ctx context.Context) error {
			_, err := c.Undo(ctx)
			return err
		},
	}
}

func (c *Controller) notify(msg string, kind NoticeKind, action *NoticeAction) {
	if c.notifier != nil {
		c.notifier.Notify(msg, kind, action)
	}
}
