// Package printers renders planner data for the terminal.
package printers

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"polytask/internal/model"
	"polytask/internal/service"
)

// AgendaPrinter prints one day as a table of timeline items followed by the
// floating tasks.
type AgendaPrinter struct {
	Out    io.Writer
	ShowID bool
}

func NewAgendaPrinter(out io.Writer) *AgendaPrinter {
	if out == nil {
		out = color.Output
	}
	return &AgendaPrinter{Out: out}
}

func (p *AgendaPrinter) Print(agenda service.Agenda) {
	title := color.New(color.Bold, color.Underline)
	faint := color.New(color.Faint, color.Italic)

	_, _ = title.Fprintln(p.Out, agenda.Day.Format("Monday, 02 Jan 2006"))
	if len(agenda.Scheduled) == 0 {
		_, _ = faint.Fprintln(p.Out, " nothing scheduled")
	} else {
		_, _ = fmt.Fprintln(p.Out, p.timeline(agenda.Scheduled))
	}
	if n := agenda.Conflicts(); n > 0 {
		_, _ = color.New(color.FgRed).Fprintf(p.Out, "%d overlapping items\n", n)
	}

	_, _ = fmt.Fprintln(p.Out, "")
	_, _ = title.Fprintln(p.Out, "Not scheduled")
	if len(agenda.Floating) == 0 {
		_, _ = faint.Fprintln(p.Out, " none")
		return
	}
	_, _ = fmt.Fprintln(p.Out, p.floating(agenda.Floating))
}

func (p *AgendaPrinter) timeline(items []model.Task) *uitable.Table {
	bold := color.New(color.Bold)
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.MaxColWidth = 60

	header := []interface{}{bold.Sprint("Time"), bold.Sprint("Task"), bold.Sprint("Category"), bold.Sprint("Min")}
	if p.ShowID {
		header = append(header, bold.Sprint("ID"))
	}
	tbl.AddRow(header...)

	for _, t := range items {
		start := *t.Assigned
		end := start.Add(time.Duration(t.Duration()) * time.Minute)
		style := itemStyle(t)
		row := []interface{}{
			style.Sprintf("%s-%s", start.Format("15:04"), end.Format("15:04")),
			style.Sprint(marker(t) + t.Name),
			t.Category,
			t.Duration(),
		}
		if p.ShowID {
			row = append(row, t.ID)
		}
		tbl.AddRow(row...)
	}
	tbl.RightAlign(3)
	return tbl
}

func (p *AgendaPrinter) floating(items []model.Task) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	for _, t := range items {
		row := []interface{}{itemStyle(t).Sprint(marker(t) + t.Name), t.Priority, fmt.Sprintf("%d min", t.Duration())}
		if p.ShowID {
			row = append(row, t.ID)
		}
		tbl.AddRow(row...)
	}
	return tbl
}

func itemStyle(t model.Task) *color.Color {
	switch {
	case t.IsBlocked():
		return color.New(color.Faint)
	case t.Complete:
		return color.New(color.CrossedOut, color.Faint)
	case t.IsConflict:
		return color.New(color.FgRed)
	case t.Priority == model.PriorityHigh:
		return color.New(color.FgHiYellow)
	default:
		return color.New()
	}
}

func marker(t model.Task) string {
	switch {
	case t.IsBlocked():
		return "■ "
	case t.Complete:
		return "✓ "
	case t.IsConflict:
		return "! "
	case t.IsVirtual():
		return "↻ "
	default:
		return "• "
	}
}
