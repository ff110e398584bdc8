package timeline

import (
	"fmt"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
)

// Item is one task placed on the day layer.
type Item struct {
	Task        model.Task
	StartMinute int
	Top         float64
	Height      float64
	Background  string
	Foreground  string
	Floating    bool
	Draggable   bool
	Resizable   bool
	Completable bool
}

// Label is the hover text of the item: title, category and duration.
func (it Item) Label() string {
	if it.Task.Category != "" {
		return fmt.Sprintf("%s · %s · %d min", it.Task.Name, it.Task.Category, it.Task.Duration())
	}
	return fmt.Sprintf("%s · %d min", it.Task.Name, it.Task.Duration())
}

// Clock returns the item's start as HH:MM.
func (it Item) Clock() string {
	return fmt.Sprintf("%02d:%02d", it.StartMinute/60, it.StartMinute%60)
}

// View is a rendered day.
type View struct {
	Day         time.Time
	Items       []Item
	Geometry    Geometry
	NowLine     float64
	ShowNowLine bool
}

// Find returns the item with id.
func (v View) Find(id string) (Item, bool) {
	for _, it := range v.Items {
		if it.Task.ID == id {
			return it, true
		}
	}
	return Item{}, false
}

// At returns the item at 1-based position n, the numbering shown to users.
func (v View) At(n int) (Item, bool) {
	if n < 1 || n > len(v.Items) {
		return Item{}, false
	}
	return v.Items[n-1], true
}

// Render places the tasks of day on the layer. Conflict flags are recomputed
// on a copy of tasks; the caller's slice is left as is.
func Render(tasks []model.Task, day, now time.Time, geo Geometry) View {
	items := make([]model.Task, len(tasks))
	copy(items, tasks)
	planner.MarkConflicts(items)

	view := View{Day: model.StartOfDay(day), Geometry: geo}
	for _, t := range items {
		view.Items = append(view.Items, place(t, geo))
	}
	view.NowLine, view.ShowNowLine = geo.NowLineOffset(day, now)
	return view
}

func place(t model.Task, geo Geometry) Item {
	it := Item{Task: t, Floating: t.Assigned == nil}
	if t.Assigned != nil {
		it.StartMinute = model.MinuteOfDay(*t.Assigned)
	} else {
		it.StartMinute = FloatingStartMinute
	}
	it.Top, it.Height = geo.Place(it.StartMinute, t.Duration())

	blocked := t.IsBlocked()
	switch {
	case blocked:
		it.Background = model.ResolveColor(model.BlockedColor)
	case t.Complete:
		it.Background = model.ResolveColor(model.DoneColor)
	default:
		it.Background = model.ResolveColor(t.Color)
	}
	it.Foreground = model.TextColorFor(it.Background)

	interactive := !blocked && !t.Complete && !t.IsVirtual()
	it.Draggable = interactive
	it.Resizable = interactive
	it.Completable = interactive
	return it
}
