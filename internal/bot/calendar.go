package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"polytask/internal/model"
	"polytask/internal/parser"
	"polytask/internal/planner"
	"polytask/internal/repository"
	"polytask/internal/service"
	"polytask/internal/timeline"
)

const doneButtonsPerRow = 4

// describe turns an error into a message for the chat.
func describe(err error) string {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		return "⚠️ " + escape(verr.Message)
	case errors.Is(err, timeline.ErrNotInteractive):
		return "⚠️ That item can't be changed. Blocked time, completed tasks and weekly repeats stay as they are."
	case errors.Is(err, timeline.ErrItemNotFound):
		return "⚠️ That item is no longer on this day. Send /day to refresh."
	case errors.Is(err, timeline.ErrBusy):
		return "⚠️ Another change is still running."
	case errors.Is(err, planner.ErrVirtualOccurrence):
		return "⚠️ This is a weekly repeat. Delete the original task to remove the series."
	case errors.Is(err, planner.ErrNotAuthenticated):
		return "⚠️ Send /start first."
	case errors.Is(err, repository.ErrCategoryNotFound):
		return "⚠️ No such category. See /categories."
	case errors.Is(err, repository.ErrTaskNotFound):
		return "⚠️ Task not found."
	default:
		return fmt.Sprintf("⚠️ Something went wrong: %s", escape(err.Error()))
	}
}

func parsePositive(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("%d is not positive", n)
	}
	return n, nil
}

func parseClock(s string) (int, error) {
	ts, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return model.MinuteOfDay(ts), nil
}

func (b *Bot) handleDay(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	arg := strings.TrimSpace(msg.CommandArguments())
	switch {
	case arg == "":
	case strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-"):
		n, err := strconv.Atoi(arg)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Use /day +1 or /day -2 to move by days.")
		}
		ws.session.ShiftDay(n)
	default:
		day, err := time.ParseInLocation("2006-01-02", arg, time.Local)
		if err != nil {
			return b.sendText(msg.Chat.ID, "Use a date like <code>2024-03-04</code>.")
		}
		ws.session.SetDay(day)
	}
	return b.showDay(ctx, msg.Chat.ID, ws)
}

// handleShift shows today for n == 0 and otherwise moves the view by n days.
func (b *Bot) handleShift(ctx context.Context, msg *tgbotapi.Message, n int) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		ws.session.Today(b.now())
	} else {
		ws.session.ShiftDay(n)
	}
	return b.showDay(ctx, msg.Chat.ID, ws)
}

func (b *Bot) handleAdd(ctx context.Context, msg *tgbotapi.Message) error {
	text := strings.TrimSpace(msg.CommandArguments())
	if text == "" {
		return b.sendText(msg.Chat.ID, "Tell me the task: <code>/add Essay draft tomorrow 4pm for 90m</code>")
	}
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	return b.createTask(ctx, msg.Chat.ID, ws, service.Prefill(text, b.now()))
}

func (b *Bot) createTask(ctx context.Context, chatID int64, ws *workspace, input service.TaskInput) error {
	task, placed, err := b.deps.TaskSvc.CreateTask(ctx, ws.session, input)
	if task == nil {
		return b.sendText(chatID, describe(err))
	}
	log.Printf("[info] task created id=%s user=%d", task.ID, ws.session.UserID())
	ws.notifier.Notify(fmt.Sprintf("Task created: %s", task.Name), timeline.NoticeSuccess, nil)
	if err != nil {
		ws.notifier.Notify("Auto-schedule failed", timeline.NoticeError, nil)
	} else if placed > 0 {
		ws.notifier.Notify(fmt.Sprintf("Auto-scheduled %d tasks", placed), timeline.NoticeSuccess, nil)
	}
	return b.showDay(ctx, chatID, ws)
}

func (b *Bot) handleAutoSchedule(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	n, err := ws.session.AutoSchedule(ctx)
	if err != nil {
		log.Printf("auto-schedule: %v", err)
		ws.notifier.Notify("Auto-schedule failed", timeline.NoticeError, nil)
	} else if n == 0 {
		ws.notifier.Notify("Nothing to schedule", timeline.NoticeInfo, nil)
	} else {
		ws.notifier.Notify(fmt.Sprintf("Auto-scheduled %d tasks", n), timeline.NoticeSuccess, nil)
	}
	return b.showDay(ctx, msg.Chat.ID, ws)
}

// itemAt resolves the 1-based item number of the last rendered day.
func (b *Bot) itemAt(ctx context.Context, ws *workspace, arg string) (timeline.Item, error) {
	n, err := parsePositive(arg)
	if err != nil {
		return timeline.Item{}, &service.ValidationError{Field: "n", Message: "Item numbers are the ones shown by /day"}
	}
	if len(ws.ctrl.View().Items) == 0 {
		if _, err := ws.ctrl.Refresh(ctx); err != nil {
			return timeline.Item{}, err
		}
	}
	it, ok := ws.ctrl.View().At(n)
	if !ok {
		return timeline.Item{}, &service.ValidationError{Field: "n", Message: fmt.Sprintf("There is no item %d on this day", n)}
	}
	return it, nil
}

func (b *Bot) handleMove(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /move &lt;n&gt; &lt;HH:MM&gt;")
	}
	minute, err := parseClock(args[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The time must look like <code>14:30</code>.")
	}
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	it, err := b.itemAt(ctx, ws, args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	if err := ws.ctrl.MoveTo(ctx, it.Task.ID, minute); err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	return b.sendView(msg.Chat.ID, ws)
}

func (b *Bot) handleResize(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) != 2 {
		return b.sendText(msg.Chat.ID, "Usage: /resize &lt;n&gt; &lt;minutes&gt;")
	}
	minutes, err := parsePositive(args[1])
	if err != nil {
		return b.sendText(msg.Chat.ID, "The length must be a positive number of minutes.")
	}
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	it, err := b.itemAt(ctx, ws, args[0])
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	if err := ws.ctrl.ResizeTo(ctx, it.Task.ID, minutes); err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	return b.sendView(msg.Chat.ID, ws)
}

func (b *Bot) handleDone(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	it, err := b.itemAt(ctx, ws, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	return b.complete(ctx, msg.Chat.ID, ws, it.Task.ID)
}

func (b *Bot) complete(ctx context.Context, chatID int64, ws *workspace, id string) error {
	if err := ws.ctrl.Complete(ctx, id); err != nil {
		return b.sendText(chatID, describe(err))
	}
	return b.sendView(chatID, ws)
}

// handleEdit changes title, date, time or length of an item. Parts missing
// from the text keep their current value.
func (b *Bot) handleEdit(ctx context.Context, msg *tgbotapi.Message) error {
	num, text, _ := strings.Cut(strings.TrimSpace(msg.CommandArguments()), " ")
	if strings.TrimSpace(text) == "" {
		return b.sendText(msg.Chat.ID, "Usage: /edit &lt;n&gt; &lt;text&gt;, for example <code>/edit 2 Lab report 4pm for 90m</code>")
	}
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	it, err := b.itemAt(ctx, ws, num)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	if it.Task.IsBlocked() {
		return b.sendText(msg.Chat.ID, "Blocked time is changed with /block.")
	}

	res := parser.Parse(text, b.now())
	task := it.Task
	input := service.EditInput{
		Title:    task.Name,
		Date:     model.DateKey(ws.session.Day()),
		Start:    res.Time,
		Duration: task.Duration(),
		Priority: task.Priority,
		Category: task.Category,
		Color:    task.Color,
		Repeat:   task.Repeat,
		Complete: task.Complete,
	}
	if strings.TrimSpace(res.Title) != "" {
		input.Title = res.Title
	}
	// A time alone keeps the viewed day; the parser would date it today.
	if res.Date != "" && (res.Time == "" || res.Date != model.DateKey(b.now()) || strings.Contains(strings.ToLower(text), "today")) {
		input.Date = res.Date
	}
	if input.Start == "" && !it.Floating {
		input.Start = it.Clock()
	}
	if input.Start == "" {
		return b.sendText(msg.Chat.ID, "This task has no time yet. Add one, for example <code>4pm</code>.")
	}
	if res.Duration > 0 {
		input.Duration = res.Duration
	}

	updated, err := b.deps.TaskSvc.Edit(ctx, ws.session, task.ID, input)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	log.Printf("[info] task edited id=%s user=%d", updated.ID, ws.session.UserID())
	if _, err := ws.ctrl.Refresh(ctx); err != nil {
		return err
	}
	ws.notifier.Notify("Task updated", timeline.NoticeSuccess, &timeline.NoticeAction{
		Label: "Undo",
		Run: func(ctx context.Context) error {
			_, err := ws.ctrl.Undo(ctx)
			return err
		},
	})
	return b.sendView(msg.Chat.ID, ws)
}

func (b *Bot) handleDelete(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	it, err := b.itemAt(ctx, ws, msg.CommandArguments())
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	if it.Task.IsVirtual() {
		return b.sendText(msg.Chat.ID, describe(planner.ErrVirtualOccurrence))
	}
	b.setConfirmation(msg.From.ID, confirmationRequest{task: it.Task})
	text := fmt.Sprintf("Delete «%s»?", escape(shortTitle(it.Task.Name, 40)))
	return b.sendWithReplyMarkup(msg.Chat.ID, text, confirmKeyboard())
}

func (b *Bot) handleConfirmationResponse(ctx context.Context, msg *tgbotapi.Message, req confirmationRequest) error {
	text := strings.TrimSpace(msg.Text)
	switch {
	case isConfirmInput(text):
		b.clearConfirmation(msg.From.ID)
		ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
		if err != nil {
			return err
		}
		if err := ws.session.Delete(ctx, req.task); err != nil {
			return b.sendText(msg.Chat.ID, describe(err))
		}
		log.Printf("[info] task deleted id=%s user=%d", req.task.ID, ws.session.UserID())
		if _, err := ws.ctrl.Refresh(ctx); err != nil {
			return err
		}
		ws.notifier.Notify("Task deleted", timeline.NoticeSuccess, &timeline.NoticeAction{
			Label: "Undo",
			Run: func(ctx context.Context) error {
				_, err := ws.ctrl.Undo(ctx)
				return err
			},
		})
		return b.sendView(msg.Chat.ID, ws)
	case isCancelInput(text):
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Kept it.")
	default:
		return b.sendWithReplyMarkup(msg.Chat.ID, "Confirm or cancel the deletion.", confirmKeyboard())
	}
}

func (b *Bot) handleUndo(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	ws.notifier.take()
	ok, err := ws.ctrl.Undo(ctx)
	if err != nil || !ok {
		return nil
	}
	return b.sendView(msg.Chat.ID, ws)
}

func (b *Bot) handleBlock(ctx context.Context, msg *tgbotapi.Message) error {
	ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
	if err != nil {
		return err
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		def, err := b.deps.Blocks.Load(ctx, ws.session.UserID(), ws.session.Day())
		if err != nil {
			return b.sendText(msg.Chat.ID, describe(err))
		}
		current := "none yet"
		if def.Count() > 0 {
			current = "\n<pre>" + escape(def.Format()) + "</pre>"
		}
		return b.sendText(msg.Chat.ID, "⛔ <b>Blocked time</b>: "+current+
			"\n\nReplace it by sending one interval per line:\n<pre>/block\nmon 08:00-15:00 School\nwed 18:00-19:30 Practice</pre>")
	}

	def, err := service.ParseBlockLines(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	res, err := b.deps.Blocks.Apply(ctx, ws.session.UserID(), ws.session.Day(), def, true)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	ws.notifier.Notify(fmt.Sprintf("Blocked time saved: %d added, %d changed, %d removed", res.Created, res.Updated, res.Deleted),
		timeline.NoticeSuccess, nil)
	return b.showDay(ctx, msg.Chat.ID, ws)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	data := cb.Data

	switch {
	case strings.HasPrefix(data, cbDonePrefix):
		id := strings.TrimPrefix(data, cbDonePrefix)
		log.Printf("[info] callback complete user=%d task=%s", cb.From.ID, id)
		b.ack(cb, "")
		ws, err := b.workspace(ctx, cb.From, chatID)
		if err != nil {
			return err
		}
		return b.complete(ctx, chatID, ws, id)
	case data == cbUndo:
		log.Printf("[info] callback undo user=%d", cb.From.ID)
		b.ack(cb, "")
		ws, err := b.workspace(ctx, cb.From, chatID)
		if err != nil {
			return err
		}
		if action := ws.notifier.take(); action != nil {
			if err := action.Run(ctx); err != nil {
				return nil
			}
			return b.sendView(chatID, ws)
		}
		if ok, err := ws.ctrl.Undo(ctx); err != nil || !ok {
			return nil
		}
		return b.sendView(chatID, ws)
	default:
		b.ack(cb, "")
		return nil
	}
}

// showDay reloads the viewed day and sends it.
func (b *Bot) showDay(ctx context.Context, chatID int64, ws *workspace) error {
	if _, err := ws.ctrl.Refresh(ctx); err != nil {
		return b.sendText(chatID, describe(err))
	}
	return b.sendView(chatID, ws)
}

// sendView sends the last rendered day with its buttons.
func (b *Bot) sendView(chatID int64, ws *workspace) error {
	view := ws.ctrl.View()
	msg := tgbotapi.NewMessage(chatID, formatDay(view, b.now()))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = dayKeyboard(view)
	_, err := b.api.Send(msg)
	return err
}

func dayKeyboard(view timeline.View) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for i, it := range view.Items {
		if !it.Completable {
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("✅ %d", i+1), cbDonePrefix+it.Task.ID))
		if len(row) == doneButtonsPerRow {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("↩️ Undo", cbUndo)))
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func formatDay(view timeline.View, now time.Time) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🗓 <b>%s</b>", view.Day.Format("Monday, 02 Jan 2006")))
	if model.DateKey(view.Day) == model.DateKey(now) {
		sb.WriteString(" · today")
	}
	sb.WriteString("\n\n")

	var floating []string
	nowMinute := model.MinuteOfDay(now)
	nowShown := !view.ShowNowLine
	scheduled := 0
	for i, it := range view.Items {
		if it.Floating {
			floating = append(floating, formatFloatingItem(i+1, it))
			continue
		}
		if !nowShown && it.StartMinute > nowMinute {
			sb.WriteString(nowMarker(now))
			nowShown = true
		}
		sb.WriteString(formatItem(i+1, it))
		scheduled++
	}
	if !nowShown && scheduled > 0 {
		sb.WriteString(nowMarker(now))
	}
	if scheduled == 0 {
		sb.WriteString("Nothing scheduled.\n")
	}

	if len(floating) > 0 {
		sb.WriteString("\n📥 <b>Not scheduled yet</b>\n")
		sb.WriteString(strings.Join(floating, ""))
	}
	return strings.TrimSpace(sb.String())
}

func nowMarker(now time.Time) string {
	return fmt.Sprintf("── now %s ──\n", now.Format("15:04"))
}

func itemIcon(it timeline.Item) string {
	switch {
	case it.Task.IsBlocked():
		return "⛔"
	case it.Task.Complete:
		return "✅"
	case it.Task.IsConflict:
		return "⚠️"
	case it.Task.IsVirtual():
		return "♻️"
	default:
		return "▫️"
	}
}

func formatItem(n int, it timeline.Item) string {
	end := it.StartMinute + it.Task.Duration()
	line := fmt.Sprintf("%d. %s %s–%02d:%02d %s", n, itemIcon(it), it.Clock(), (end/60)%24, end%60, escape(it.Task.Name))
	if cat := strings.TrimSpace(it.Task.Category); cat != "" && !it.Task.IsBlocked() {
		line += fmt.Sprintf(" <i>(%s)</i>", escape(cat))
	}
	return line + "\n"
}

func formatFloatingItem(n int, it timeline.Item) string {
	return fmt.Sprintf("%d. %s %s · %d min\n", n, itemIcon(it), escape(it.Task.Name), it.Task.Duration())
}
