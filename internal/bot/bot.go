package bot

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"polytask/internal/config"
	"polytask/internal/model"
	"polytask/internal/planner"
	"polytask/internal/repository"
	"polytask/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageText
	stageDuration
	stagePriority
)

const (
	cbDonePrefix = "done:"
	cbUndo       = "undo"
	reportJob    = "report"
)

const (
	btnSkip             = "⏭️ Skip"
	btnConfirm          = "✅ Confirm"
	btnCancel           = "↩️ Cancel"
	btnCancelDialog     = "⏪ Stop"
	btnLow              = "low"
	btnMedium           = "medium"
	btnHigh             = "high"
	menuLabelToday      = "🗓 Today"
	menuLabelNewTask    = "➕ New task"
	menuLabelAuto       = "🪄 Auto-schedule"
	menuLabelUndo       = "↩️ Undo"
	menuLabelCategories = "📂 Categories"
	menuLabelHelp       = "ℹ️ Help"
)

type conversationState struct {
	stage conversationStage
	input service.TaskInput
}

// confirmationRequest is a deletion waiting for the user's answer.
type confirmationRequest struct {
	task model.Task
}

// sender is the part of the Telegram client the bot talks through.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Deps are the stores and services the bot drives.
type Deps struct {
	Users      *repository.UserRepository
	Tasks      service.TaskStore
	TaskSvc    *service.TaskService
	Categories *service.CategoryService
	Blocks     *service.BlockService
	Reminders  *service.ReminderService
	Scheduler  *service.SchedulerService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	client *tgbotapi.BotAPI
	api    sender
	deps   Deps
	config *config.Config
	now    func() time.Time

	conversations map[int64]*conversationState
	confirmations map[int64]confirmationRequest
	workspaces    map[int64]*workspace
	mu            sync.Mutex
}

func New(token string, deps Deps, cfg *config.Config) (*Bot, error) {
	client, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", client.Self.UserName)

	b := newBot(client, deps, cfg)
	b.client = client
	return b, nil
}

func newBot(api sender, deps Deps, cfg *config.Config) *Bot {
	if cfg == nil {
		cfg = &config.Config{}
	}
	return &Bot{
		api:           api,
		deps:          deps,
		config:        cfg,
		now:           time.Now,
		conversations: make(map[int64]*conversationState),
		confirmations: make(map[int64]confirmationRequest),
		workspaces:    make(map[int64]*workspace),
	}
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.client.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.client.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	b.closeWorkspaces()
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Stopped. Send /add or /newtask to start again.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if pending, ok := b.getConfirmation(msg.From.ID); ok {
		return b.handleConfirmationResponse(ctx, msg, pending)
	}

	if b.hasConversation(msg.From.ID) {
		log.Printf("[info] conversation step %d from %d", b.getConversation(msg.From.ID).stage, msg.From.ID)
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /add Math homework tomorrow 5pm, or /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "day":
		return b.handleDay(ctx, msg)
	case "today":
		return b.handleShift(ctx, msg, 0)
	case "next":
		return b.handleShift(ctx, msg, 1)
	case "prev":
		return b.handleShift(ctx, msg, -1)
	case "add":
		return b.handleAdd(ctx, msg)
	case "newtask":
		return b.startNewTaskConversation(ctx, msg)
	case "autoschedule":
		return b.handleAutoSchedule(ctx, msg)
	case "move":
		return b.handleMove(ctx, msg)
	case "resize":
		return b.handleResize(ctx, msg)
	case "done":
		return b.handleDone(ctx, msg)
	case "edit":
		return b.handleEdit(ctx, msg)
	case "delete":
		return b.handleDelete(ctx, msg)
	case "undo":
		return b.handleUndo(ctx, msg)
	case "block":
		return b.handleBlock(ctx, msg)
	case "clear":
		return b.handleClear(ctx, msg)
	case "categories":
		return b.handleCategories(ctx, msg)
	case "color":
		return b.handleColor(ctx, msg)
	case "report":
		return b.handleReport(ctx, msg)
	case "interval":
		return b.handleInterval(msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		b.clearConfirmation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. See /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I keep your day: tasks, blocked time and free slots.</b>\n\n"+
			"Write tasks the way you think them, for example\n<code>/add Essay draft tomorrow 4pm for 90m</code>\n\n"+
			"See /help for everything else.",
		escape(user.DisplayName()),
	)
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Commands</b>\n" +
		"• /day [YYYY-MM-DD|+N|-N] — show a day\n" +
		"• /today, /next, /prev — move between days\n" +
		"• /add &lt;text&gt; — add a task from one line\n" +
		"• /newtask — add a task step by step\n" +
		"• /autoschedule — place floating tasks into free time\n" +
		"• /move &lt;n&gt; &lt;HH:MM&gt; — move item n\n" +
		"• /resize &lt;n&gt; &lt;minutes&gt; — change the length of item n\n" +
		"• /done &lt;n&gt; — complete item n\n" +
		"• /edit &lt;n&gt; &lt;text&gt; — change item n, e.g. <code>/edit 2 Lab report 4pm for 90m</code>\n" +
		"• /delete &lt;n&gt; — delete item n\n" +
		"• /undo — revert the last change\n" +
		"• /block — weekly blocked time, one <code>mon 08:00-15:00 School</code> per line\n" +
		"• /clear — remove completed tasks\n" +
		"• /categories — your categories\n" +
		"• /color &lt;category&gt; &lt;color&gt; — recolor a category\n" +
		"• /report — today's agenda\n" +
		"• /interval &lt;hours&gt; — how often the agenda is sent\n" +
		"• /cancel — stop the current dialog"
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleReport(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	text, err := b.deps.Reminders.DailySummary(ctx, *user, b.now())
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not build the agenda: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleCategories(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	categories, err := b.deps.Categories.List(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not load categories: %s", escape(err.Error())))
	}
	if len(categories) == 0 {
		return b.sendText(msg.Chat.ID, "No categories yet. They appear as tasks get sorted.")
	}
	var builder strings.Builder
	builder.WriteString("📂 <b>Categories</b>\n")
	for _, cat := range categories {
		builder.WriteString(fmt.Sprintf("• %s <code>%s</code>\n", escape(strings.TrimSpace(cat.Name)), escape(model.ResolveColor(cat.Color))))
	}
	return b.sendText(msg.Chat.ID, strings.TrimSpace(builder.String()))
}

func (b *Bot) handleColor(ctx context.Context, msg *tgbotapi.Message) error {
	args := strings.Fields(msg.CommandArguments())
	if len(args) < 2 {
		return b.sendText(msg.Chat.ID, "Usage: /color &lt;category&gt; &lt;color&gt;, for example <code>/color Math coral</code>")
	}
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	name := strings.Join(args[:len(args)-1], " ")
	color := args[len(args)-1]
	n, err := b.deps.Categories.SetColor(ctx, user.ID, name, color)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🎨 %s is now <code>%s</code>, %d tasks repainted.", escape(name), escape(model.ResolveColor(color)), n))
}

func (b *Bot) handleClear(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	n, err := b.deps.TaskSvc.ClearCompleted(ctx, user.ID)
	if err != nil {
		return b.sendText(msg.Chat.ID, describe(err))
	}
	return b.sendText(msg.Chat.ID, fmt.Sprintf("🧹 Removed %d completed tasks.", n))
}

// ScheduleReports registers the agenda job on the scheduler, replacing the
// previous one.
func (b *Bot) ScheduleReports(interval time.Duration) error {
	if b.deps.Scheduler == nil {
		return fmt.Errorf("no scheduler")
	}
	return b.deps.Scheduler.ReplaceInterval(reportJob, interval, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := b.SendDailyReports(ctx); err != nil {
			log.Printf("report: %v", err)
		}
	})
}

// SendDailyReports sends today's agenda to every known user.
func (b *Bot) SendDailyReports(ctx context.Context) error {
	users, err := b.deps.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	now := b.now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		text, err := b.deps.Reminders.DailySummary(ctx, user, now)
		if err != nil {
			log.Printf("build summary for user %d: %v", user.TelegramID, err)
			continue
		}
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send summary to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// AutoScheduleAll fills today for every known user and tells those who got
// tasks placed.
func (b *Bot) AutoScheduleAll(ctx context.Context) error {
	users, err := b.deps.Users.ListAll(ctx)
	if err != nil {
		return err
	}
	scheduler := planner.NewAutoScheduler(b.deps.Tasks)
	today := model.StartOfDay(b.now())
	for _, user := range users {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		n, err := scheduler.Run(ctx, user.ID, today)
		if err != nil {
			log.Printf("auto-schedule user %d: %v", user.TelegramID, err)
			continue
		}
		if n == 0 {
			continue
		}
		if err := b.sendText(user.TelegramID, fmt.Sprintf("🪄 Auto-scheduled %d tasks for today. /today shows them.", n)); err != nil {
			log.Printf("send auto-schedule notice to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) handleInterval(msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}
	args := strings.TrimSpace(msg.CommandArguments())
	if args == "" {
		b.mu.Lock()
		current := b.config.ReportInterval
		b.mu.Unlock()
		return b.sendText(msg.Chat.ID, fmt.Sprintf("The agenda is sent every %d hours. Change it with /interval 4", int(current.Hours())))
	}
	hours, err := parsePositive(args)
	if err != nil {
		return b.sendText(msg.Chat.ID, "The interval must be a positive number of hours, for example /interval 6")
	}
	interval := time.Duration(hours) * time.Hour
	if b.deps.Scheduler != nil {
		if err := b.ScheduleReports(interval); err != nil {
			return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not change the interval: %s", escape(err.Error())))
		}
	}
	b.mu.Lock()
	b.config.ReportInterval = interval
	b.mu.Unlock()
	return b.sendText(msg.Chat.ID, fmt.Sprintf("The agenda will be sent every %d hours.", hours))
}

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	return b.deps.Users.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		log.Printf("callback ack: %v", err)
	}
}

func (b *Bot) getConfirmation(userID int64) (confirmationRequest, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	req, ok := b.confirmations[userID]
	return req, ok
}

func (b *Bot) setConfirmation(userID int64, req confirmationRequest) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.confirmations[userID] = req
}

func (b *Bot) clearConfirmation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.confirmations, userID)
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelToday):
		return true, b.handleShift(ctx, msg, 0)
	case strings.ToLower(menuLabelNewTask):
		return true, b.startNewTaskConversation(ctx, msg)
	case strings.ToLower(menuLabelAuto):
		return true, b.handleAutoSchedule(ctx, msg)
	case strings.ToLower(menuLabelUndo):
		return true, b.handleUndo(ctx, msg)
	case strings.ToLower(menuLabelCategories):
		return true, b.handleCategories(ctx, msg)
	case strings.ToLower(menuLabelHelp):
		return true, b.handleHelp(msg)
	default:
		return false, nil
	}
}

func confirmKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnConfirm),
			tgbotapi.NewKeyboardButton(btnCancel),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelToday),
			tgbotapi.NewKeyboardButton(menuLabelNewTask),
			tgbotapi.NewKeyboardButton(menuLabelAuto),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelUndo),
			tgbotapi.NewKeyboardButton(menuLabelCategories),
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func priorityKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLow),
			tgbotapi.NewKeyboardButton(btnMedium),
			tgbotapi.NewKeyboardButton(btnHigh),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == strings.ToLower(btnSkip) || t == "skip" || t == "-"
}

func isConfirmInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == strings.ToLower(btnConfirm) || t == "yes" || t == "y"
}

func isCancelInput(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return t == strings.ToLower(btnCancel) || t == "no" || t == "n"
}

func isCancelDialogInput(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), btnCancelDialog)
}

func escape(s string) string {
	return html.EscapeString(s)
}

func shortTitle(title string, maxLen int) string {
	clean := strings.Join(strings.Fields(title), " ")
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}
