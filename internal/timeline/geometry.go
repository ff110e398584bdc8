// Package timeline lays a day's tasks out on a vertical 06:00-24:00 axis and
// drives the drag, resize, complete and create gestures on it.
package timeline

import (
	"math"
	"time"

	"polytask/internal/model"
)

const (
	DayStartMinute = 6 * 60
	DayEndMinute   = 24 * 60
	VisibleMinutes = DayEndMinute - DayStartMinute
	SlotMinutes    = 15
	SlotCount      = VisibleMinutes / SlotMinutes

	// DefaultSlotHeight is used when the slot height was never measured.
	DefaultSlotHeight = 48.0
	MinItemHeight     = 20.0

	// EdgeZone is the distance from a viewport edge that starts auto-scroll.
	EdgeZone    = 60.0
	ScrollSpeed = 15.0

	DragStaleAfter = 100 * time.Millisecond
	NowLineRefresh = 60 * time.Second

	// FloatingStartMinute is where unassigned items due on the day are drawn.
	FloatingStartMinute = 9 * 60
)

// Geometry converts between minutes of the day and pixel offsets in the day layer.
type Geometry struct {
	SlotHeight float64
}

// NewGeometry uses the measured slot height, or DefaultSlotHeight if unmeasured.
func NewGeometry(measuredSlotHeight float64) Geometry {
	if measuredSlotHeight <= 0 {
		measuredSlotHeight = DefaultSlotHeight
	}
	return Geometry{SlotHeight: measuredSlotHeight}
}

func (g Geometry) slotHeight() float64 {
	if g.SlotHeight <= 0 {
		return DefaultSlotHeight
	}
	return g.SlotHeight
}

func (g Geometry) DayHeight() float64 {
	return g.slotHeight() * SlotCount
}

func (g Geometry) PxPerMinute() float64 {
	return g.DayHeight() / VisibleMinutes
}

// Place returns the top offset and height of an item starting at startMinute.
// The duration is clipped so the item never runs past 24:00.
func (g Geometry) Place(startMinute, duration int) (top, height float64) {
	rel := clamp(startMinute-DayStartMinute, 0, VisibleMinutes)
	remaining := VisibleMinutes - rel
	if duration > remaining {
		duration = remaining
	}
	if duration < 0 {
		duration = 0
	}
	ppm := g.PxPerMinute()
	top = math.Round(float64(rel) * ppm)
	height = math.Max(MinItemHeight, math.Round(float64(duration)*ppm))
	return top, height
}

// MinuteAt returns the unrounded minute of the day at layer offset y.
func (g Geometry) MinuteAt(y float64) float64 {
	return DayStartMinute + y/g.PxPerMinute()
}

// YFor returns the layer offset of minute.
func (g Geometry) YFor(minute int) float64 {
	return float64(minute-DayStartMinute) * g.PxPerMinute()
}

// SnapMinute rounds minute to the nearest slot boundary and clamps it to
// [06:00, 23:45].
func SnapMinute(minute float64) int {
	snapped := int(math.Round(minute/SlotMinutes)) * SlotMinutes
	return clamp(snapped, DayStartMinute, DayEndMinute-SlotMinutes)
}

// SnapDrop converts a drop offset into a start minute.
func (g Geometry) SnapDrop(y float64) int {
	return SnapMinute(g.MinuteAt(y))
}

// SnapCreate converts a double-click offset into a start minute for a new task.
func (g Geometry) SnapCreate(y float64) int {
	return SnapMinute(g.MinuteAt(y))
}

// DurationForHeight converts an item height to whole minutes, at least 1.
func (g Geometry) DurationForHeight(height float64) int {
	minutes := int(math.Round(height / g.PxPerMinute()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ResizedDuration applies a height change from fromHeight to toHeight to a
// duration. The rendered height may be floored or clipped, so only the
// delta counts.
func (g Geometry) ResizedDuration(duration int, fromHeight, toHeight float64) int {
	minutes := duration + int(math.Round((toHeight-fromHeight)/g.PxPerMinute()))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// NowLineOffset returns the offset of the current-time line for day, and
// false when day is not today or now is before 06:00.
func (g Geometry) NowLineOffset(day, now time.Time) (float64, bool) {
	if model.DateKey(day) != model.DateKey(now) {
		return 0, false
	}
	minute := model.MinuteOfDay(now)
	if minute < DayStartMinute {
		return 0, false
	}
	return math.Round(float64(minute-DayStartMinute) * g.PxPerMinute()), true
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
