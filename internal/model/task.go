package model

import (
	"strings"
	"time"
)

const (
	// DefaultEstimateMinutes is used when a task carries no estimate.
	DefaultEstimateMinutes = 60
	// MaxNameLength is the stored name limit.
	MaxNameLength = 50

	CategoryGeneral = "General"
	CategoryBlocked = "Blocked"

	DefaultColor = "cadet"
	DoneColor    = "gray"
	BlockedColor = "black"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"

	// VirtualPrefix marks render-only weekly repeat occurrences.
	VirtualPrefix = "virt-"
)

// Task is a single calendar item owned by one user.
// A task with Assigned set is fixed on the timeline; without it the task is floating.
type Task struct {
	ID            string `gorm:"primaryKey;size:36"`
	UserID        uint   `gorm:"index"`
	Name          string `gorm:"size:50;not null"`
	Due           time.Time
	Assigned      *time.Time
	Category      string `gorm:"size:20"`
	Color         string `gorm:"size:20;default:cadet"`
	EstimatedTime int
	Complete      bool   `gorm:"default:false"`
	Repeat        bool   `gorm:"default:false"`
	Priority      string `gorm:"size:20;default:medium"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// IsConflict is recomputed on every render and never stored.
	IsConflict bool `gorm:"-" json:"-"`
}

// Duration returns the estimate in minutes, never below 1.
func (t Task) Duration() int {
	if t.EstimatedTime <= 0 {
		return DefaultEstimateMinutes
	}
	return t.EstimatedTime
}

func (t Task) IsFixed() bool {
	return t.Assigned != nil
}

// IsBlocked reports whether the task is a blocked-time calendar block.
func (t Task) IsBlocked() bool {
	return strings.EqualFold(strings.TrimSpace(t.Category), CategoryBlocked)
}

// IsUncategorized reports whether the category is a placeholder the classifier may replace.
func (t Task) IsUncategorized() bool {
	c := strings.TrimSpace(t.Category)
	return c == "" || c == CategoryGeneral
}

func (t Task) IsVirtual() bool {
	return strings.HasPrefix(t.ID, VirtualPrefix)
}

// SourceID returns the id of the generating task for virtual occurrences.
func (t Task) SourceID() string {
	return SourceID(t.ID)
}

// SourceID strips the virtual prefix and date suffix from a repeat occurrence id.
func SourceID(id string) string {
	if !strings.HasPrefix(id, VirtualPrefix) {
		return id
	}
	rest := strings.TrimPrefix(id, VirtualPrefix)
	// suffix is "-YYYY-MM-DD"
	if len(rest) > 11 && rest[len(rest)-11] == '-' {
		return rest[:len(rest)-11]
	}
	return rest
}

// VirtualID builds the id of a repeat occurrence of sourceID on day.
func VirtualID(sourceID string, day time.Time) string {
	return VirtualPrefix + sourceID + "-" + DateKey(day)
}

// PriorityWeight maps a priority to its scheduling weight.
func PriorityWeight(p string) int {
	switch strings.ToLower(strings.TrimSpace(p)) {
	case PriorityHigh:
		return 3
	case PriorityLow:
		return 1
	default:
		return 2
	}
}

// NormalizePriority folds unknown values to medium.
func NormalizePriority(p string) string {
	switch v := strings.ToLower(strings.TrimSpace(p)); v {
	case PriorityHigh, PriorityLow:
		return v
	default:
		return PriorityMedium
	}
}

// Normalize fills the defaults a freshly created task must carry.
func (t *Task) Normalize() {
	t.Name = strings.TrimSpace(t.Name)
	if t.Color == "" {
		t.Color = DefaultColor
	}
	if t.EstimatedTime <= 0 {
		t.EstimatedTime = DefaultEstimateMinutes
	}
	t.Priority = NormalizePriority(t.Priority)
}

// DateKey formats the local calendar date of ts as YYYY-MM-DD.
func DateKey(ts time.Time) string {
	return ts.Format("2006-01-02")
}

// StartOfDay truncates ts to local midnight.
func StartOfDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// EndOfDay returns 23:59:59 on the calendar date of ts.
func EndOfDay(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, ts.Location())
}

// MinuteOfDay returns the wall-clock minute of ts in [0, 1440).
func MinuteOfDay(ts time.Time) int {
	return ts.Hour()*60 + ts.Minute()
}

// AtMinute returns day's midnight plus minute.
func AtMinute(day time.Time, minute int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, minute/60, minute%60, 0, 0, day.Location())
}

// DateKey returns the calendar date the task is shown on: assigned date, else due date.
func (t Task) DateKey() string {
	if t.Assigned != nil {
		return DateKey(*t.Assigned)
	}
	if t.Due.IsZero() {
		return ""
	}
	return DateKey(t.Due)
}
