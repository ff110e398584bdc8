package service

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"polytask/internal/model"
	"polytask/internal/planner"
)

const defaultBlockLabel = "Blocked time"

// Interval is one blocked stretch on a weekday. ID is set for intervals that
// already exist as tasks.
type Interval struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
	Label string `yaml:"label,omitempty"`
	ID    string `yaml:"id,omitempty"`
}

// WeekDefinition holds the blocked intervals of each weekday.
type WeekDefinition map[time.Weekday][]Interval

// Count returns the number of intervals over all days.
func (w WeekDefinition) Count() int {
	n := 0
	for _, list := range w {
		n += len(list)
	}
	return n
}

// ApplyResult counts what Apply changed.
type ApplyResult struct {
	Created int
	Updated int
	Deleted int
}

// WeekStart returns the Sunday that opens the week of day.
func WeekStart(day time.Time) time.Time {
	d := model.StartOfDay(day)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "mon": time.Monday, "tue": time.Tuesday, "wed": time.Wednesday,
	"thu": time.Thursday, "fri": time.Friday, "sat": time.Saturday,
}

// ParseWeekday accepts full or abbreviated English weekday names.
func ParseWeekday(name string) (time.Weekday, bool) {
	n := strings.ToLower(strings.TrimSpace(name))
	if len(n) < 3 {
		return 0, false
	}
	wd, ok := weekdayNames[n[:3]]
	return wd, ok
}

// ParseWeekYAML reads a definition keyed by weekday name:
//
//	monday:
//	  - start: "08:00"
//	    end: "15:00"
//	    label: School
func ParseWeekYAML(data []byte) (WeekDefinition, error) {
	var raw map[string][]Interval
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse block schedule: %w", err)
	}
	def := make(WeekDefinition)
	for name, list := range raw {
		wd, ok := ParseWeekday(name)
		if !ok {
			return nil, invalid("weekday", fmt.Sprintf("Unknown weekday %q", name))
		}
		def[wd] = append(def[wd], list...)
	}
	return def, nil
}

// ParseBlockLines reads one "day HH:MM-HH:MM label" interval per line.
func ParseBlockLines(text string) (WeekDefinition, error) {
	def := make(WeekDefinition)
	sc := bufio.NewScanner(strings.NewReader(text))
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			return nil, invalid("line", fmt.Sprintf("Line %d: expected \"day HH:MM-HH:MM label\"", line))
		}
		wd, ok := ParseWeekday(fields[0])
		if !ok {
			return nil, invalid("weekday", fmt.Sprintf("Line %d: unknown weekday %q", line, fields[0]))
		}
		start, end, found := strings.Cut(fields[1], "-")
		if !found {
			return nil, invalid("line", fmt.Sprintf("Line %d: expected a HH:MM-HH:MM range", line))
		}
		def[wd] = append(def[wd], Interval{Start: start, End: end, Label: strings.Join(fields[2:], " ")})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return def, nil
}

// parseClock reads HH:MM as a minute of the day. "24:00" is midnight at the
// end of the day.
func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "24:00" {
		return planner.MinutesPerDay, true
	}
	ts, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return model.MinuteOfDay(ts), true
}

func formatClock(minute int) string {
	if minute > planner.MinutesPerDay {
		minute = planner.MinutesPerDay
	}
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// BlockService manages the weekly blocked-time definition of a user.
type BlockService struct {
	tasks TaskStore
}

func NewBlockService(tasks TaskStore) *BlockService {
	return &BlockService{tasks: tasks}
}

// current returns the blocked tasks making up the definition: the repeating
// ones if there are any, else those placed inside the week of day.
func (s *BlockService) current(ctx context.Context, userID uint, day time.Time) ([]model.Task, error) {
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	var repeating, inWeek []model.Task
	from := WeekStart(day)
	to := from.AddDate(0, 0, 7)
	for _, t := range tasks {
		if !t.IsBlocked() {
			continue
		}
		if t.Repeat {
			repeating = append(repeating, t)
			continue
		}
		if t.Assigned != nil && !t.Assigned.Before(from) && t.Assigned.Before(to) {
			inWeek = append(inWeek, t)
		}
	}
	if len(repeating) > 0 {
		return repeating, nil
	}
	return inWeek, nil
}

// Load returns the current definition for the week of day.
func (s *BlockService) Load(ctx context.Context, userID uint, day time.Time) (WeekDefinition, error) {
	tasks, err := s.current(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	placed := tasks[:0]
	for _, t := range tasks {
		if t.Assigned != nil {
			placed = append(placed, t)
		}
	}
	sort.SliceStable(placed, func(i, j int) bool {
		a, b := *placed[i].Assigned, *placed[j].Assigned
		if a.Weekday() != b.Weekday() {
			return a.Weekday() < b.Weekday()
		}
		return model.MinuteOfDay(a) < model.MinuteOfDay(b)
	})
	def := make(WeekDefinition)
	for _, t := range placed {
		start := *t.Assigned
		def[start.Weekday()] = append(def[start.Weekday()], Interval{
			Start: start.Format("15:04"),
			End:   formatClock(model.MinuteOfDay(start) + t.Duration()),
			Label: t.Name,
			ID:    t.ID,
		})
	}
	return def, nil
}

// Apply replaces the user's blocked time with def, placed in the week of day.
// Intervals carrying the id of a loaded task update it, the others are created,
// and loaded tasks missing from def are deleted. Nothing is written when def
// does not validate.
func (s *BlockService) Apply(ctx context.Context, userID uint, day time.Time, def WeekDefinition, repeat bool) (ApplyResult, error) {
	var res ApplyResult
	if userID == 0 {
		return res, fmt.Errorf("apply blocks: user not authenticated")
	}

	type block struct {
		iv         Interval
		start, end int
		date       time.Time
	}
	weekStart := WeekStart(day)
	var blocks []block
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for _, iv := range def[wd] {
			start, ok := parseClock(iv.Start)
			if !ok {
				return res, invalid("start", fmt.Sprintf("%s: invalid start %q", wd, iv.Start))
			}
			end, ok := parseClock(iv.End)
			if !ok {
				return res, invalid("end", fmt.Sprintf("%s: invalid end %q", wd, iv.End))
			}
			if end <= start {
				return res, invalid("end", fmt.Sprintf("%s: end time must be after start time", wd))
			}
			blocks = append(blocks, block{iv: iv, start: start, end: end, date: weekStart.AddDate(0, 0, int(wd))})
		}
	}
	if len(blocks) == 0 {
		return res, invalid("intervals", "Add at least one blocked interval")
	}

	existing, err := s.current(ctx, userID, day)
	if err != nil {
		return res, err
	}
	loaded := make(map[string]bool, len(existing))
	for _, t := range existing {
		loaded[t.ID] = true
	}

	seen := make(map[string]bool)
	for _, b := range blocks {
		label := strings.TrimSpace(b.iv.Label)
		if label == "" {
			label = defaultBlockLabel
		}
		assigned := model.AtMinute(b.date, b.start)
		duration := b.end - b.start
		if duration < 1 {
			duration = 1
		}

		if b.iv.ID != "" && loaded[b.iv.ID] {
			seen[b.iv.ID] = true
			patch := model.TaskPatch{
				Name:          model.StringPtr(label),
				Due:           model.TimePtr(model.EndOfDay(b.date)),
				Assigned:      model.TimePtr(assigned),
				Category:      model.StringPtr(model.CategoryBlocked),
				Color:         model.StringPtr(model.BlockedColor),
				EstimatedTime: model.IntPtr(duration),
				Repeat:        model.BoolPtr(repeat),
			}
			if _, err := s.tasks.Update(ctx, userID, b.iv.ID, patch); err != nil {
				return res, fmt.Errorf("update block %s: %w", b.iv.ID, err)
			}
			res.Updated++
			continue
		}

		task := model.Task{
			Name:          label,
			Due:           model.EndOfDay(b.date),
			Assigned:      model.TimePtr(assigned),
			Category:      model.CategoryBlocked,
			Color:         model.BlockedColor,
			EstimatedTime: duration,
			Repeat:        repeat,
			Priority:      model.PriorityMedium,
		}
		if _, err := s.tasks.Create(ctx, userID, task); err != nil {
			return res, fmt.Errorf("create block: %w", err)
		}
		res.Created++
	}

	for _, t := range existing {
		if seen[t.ID] {
			continue
		}
		if err := s.tasks.Delete(ctx, userID, t.ID); err != nil {
			return res, fmt.Errorf("delete block %s: %w", t.ID, err)
		}
		res.Deleted++
	}
	log.Printf("[info] blocks applied user=%d created=%d updated=%d deleted=%d", userID, res.Created, res.Updated, res.Deleted)
	return res, nil
}

// Format renders def as the line format ParseBlockLines reads.
func (w WeekDefinition) Format() string {
	var sb strings.Builder
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		for _, iv := range w[wd] {
			fmt.Fprintf(&sb, "%s %s-%s %s\n", strings.ToLower(wd.String()[:3]), iv.Start, iv.End, iv.Label)
		}
	}
	return strings.TrimSpace(sb.String())
}
