package bot

import (
	"context"
	"fmt"
	"log"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"polytask/internal/model"
	"polytask/internal/planner"
	"polytask/internal/timeline"
)

// workspace is one chat's calendar: its session, the timeline controller on
// top of it and the notifier that turns notices into messages.
type workspace struct {
	session  *planner.Session
	ctrl     *timeline.Controller
	notifier *chatNotifier
}

// chatNotifier delivers timeline notices as chat messages. The action of the
// latest notice is kept so its inline button can run it.
type chatNotifier struct {
	b      *Bot
	chatID int64

	mu      sync.Mutex
	pending *timeline.NoticeAction
}

func (n *chatNotifier) Notify(message string, kind timeline.NoticeKind, action *timeline.NoticeAction) {
	icon := "ℹ️"
	switch kind {
	case timeline.NoticeSuccess:
		icon = "✅"
	case timeline.NoticeError:
		icon = "⚠️"
	}

	msg := tgbotapi.NewMessage(n.chatID, fmt.Sprintf("%s %s", icon, escape(message)))
	msg.ParseMode = tgbotapi.ModeHTML

	n.mu.Lock()
	n.pending = action
	n.mu.Unlock()
	if action != nil {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("↩️ "+action.Label, cbUndo)),
		)
	}
	if _, err := n.b.api.Send(msg); err != nil {
		log.Printf("send notice to %d: %v", n.chatID, err)
	}
}

// take returns and forgets the action of the latest notice.
func (n *chatNotifier) take() *timeline.NoticeAction {
	n.mu.Lock()
	defer n.mu.Unlock()
	action := n.pending
	n.pending = nil
	return action
}

// workspace returns the chat's workspace, creating it on first use.
func (b *Bot) workspace(ctx context.Context, from *tgbotapi.User, chatID int64) (*workspace, error) {
	b.mu.Lock()
	ws, ok := b.workspaces[from.ID]
	b.mu.Unlock()
	if ok {
		return ws, nil
	}

	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return nil, err
	}

	notifier := &chatNotifier{b: b, chatID: chatID}
	session := planner.NewSession(b.deps.Tasks, user.ID, b.config.UndoCapacity, b.now())
	hooks := timeline.Hooks{
		Celebrate: func(task model.Task) {
			if err := b.sendText(chatID, fmt.Sprintf("🎉 Nice work on «%s»!", escape(task.Name))); err != nil {
				log.Printf("send celebration: %v", err)
			}
		},
	}
	ws = &workspace{
		session:  session,
		ctrl:     timeline.NewController(session, timeline.NewGeometry(0), notifier, hooks, timeline.WithClock(b.now)),
		notifier: notifier,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if existing, ok := b.workspaces[from.ID]; ok {
		ws.ctrl.Close()
		return existing, nil
	}
	b.workspaces[from.ID] = ws
	log.Printf("[info] workspace opened user=%d", user.ID)
	return ws, nil
}

func (b *Bot) closeWorkspaces() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ws := range b.workspaces {
		ws.ctrl.Close()
		delete(b.workspaces, id)
	}
}
