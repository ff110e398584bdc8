package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"polytask/internal/model"
	"polytask/internal/planner"
)

// Agenda is one day of a user's calendar split into placed and floating tasks.
type Agenda struct {
	Day       time.Time
	Scheduled []model.Task
	Floating  []model.Task
}

// Conflicts returns the number of scheduled items that overlap another.
func (a Agenda) Conflicts() int {
	n := 0
	for _, t := range a.Scheduled {
		if t.IsConflict {
			n++
		}
	}
	return n
}

// ReminderService builds human-readable summaries for daily notifications.
type ReminderService struct {
	tasks TaskStore
}

func NewReminderService(tasks TaskStore) *ReminderService {
	return &ReminderService{tasks: tasks}
}

// Agenda returns the items shown on day, weekly repeats included. Floating
// tasks due that day are listed separately.
func (s *ReminderService) Agenda(ctx context.Context, userID uint, day time.Time) (Agenda, error) {
	agenda := Agenda{Day: model.StartOfDay(day)}
	tasks, err := s.tasks.List(ctx, userID)
	if err != nil {
		return agenda, err
	}
	for _, t := range planner.OnDay(planner.ProjectWeekly(tasks, agenda.Day), agenda.Day) {
		if t.IsFixed() {
			agenda.Scheduled = append(agenda.Scheduled, t)
		} else {
			agenda.Floating = append(agenda.Floating, t)
		}
	}
	planner.MarkConflicts(agenda.Scheduled)
	return agenda, nil
}

func (s *ReminderService) DailySummary(ctx context.Context, user model.User, now time.Time) (string, error) {
	agenda, err := s.Agenda(ctx, user.ID, now)
	if err != nil {
		return "", err
	}

	var builder strings.Builder
	builder.WriteString("📋 <b>Daily agenda</b>\n")
	builder.WriteString(fmt.Sprintf("🗓 %s\n\n", agenda.Day.Format("Mon, 02 Jan 2006")))

	builder.WriteString("🕒 <b>Timeline</b>\n")
	if len(agenda.Scheduled) == 0 {
		builder.WriteString("— nothing scheduled\n")
	} else {
		for _, task := range agenda.Scheduled {
			builder.WriteString(formatScheduled(task))
		}
	}
	if n := agenda.Conflicts(); n > 0 {
		builder.WriteString(fmt.Sprintf("⚠️ %d overlapping items\n", n))
	}

	builder.WriteString("\n📥 <b>Not scheduled yet</b>\n")
	if len(agenda.Floating) == 0 {
		builder.WriteString("— none\n")
	} else {
		for _, task := range agenda.Floating {
			builder.WriteString(formatFloating(task))
		}
	}

	return strings.TrimSpace(builder.String()), nil
}

func formatScheduled(task model.Task) string {
	var sb strings.Builder

	icon := "▫️"
	switch {
	case task.IsBlocked():
		icon = "⛔"
	case task.Complete:
		icon = "✅"
	case task.IsConflict:
		icon = "⚠️"
	}

	start := *task.Assigned
	end := start.Add(time.Duration(task.Duration()) * time.Minute)
	sb.WriteString(fmt.Sprintf("%s %s–%s %s", icon, start.Format("15:04"), end.Format("15:04"),
		html.EscapeString(strings.TrimSpace(task.Name))))
	if cat := strings.TrimSpace(task.Category); cat != "" && !task.IsBlocked() {
		sb.WriteString(fmt.Sprintf(" <i>(%s)</i>", html.EscapeString(cat)))
	}
	if task.Repeat {
		sb.WriteString(" ♻️")
	}
	sb.WriteByte('\n')
	return sb.String()
}

func formatFloating(task model.Task) string {
	icon := "🟢"
	switch task.Priority {
	case model.PriorityHigh:
		icon = "🔥"
	case model.PriorityLow:
		icon = "🔹"
	}
	if task.Complete {
		icon = "✅"
	}
	return fmt.Sprintf("%s %s · %d min\n", icon, html.EscapeString(strings.TrimSpace(task.Name)), task.Duration())
}
