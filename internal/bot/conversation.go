package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"polytask/internal/model"
	"polytask/internal/parser"
	"polytask/internal/service"
)

func (b *Bot) startNewTaskConversation(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.clearConfirmation(msg.From.ID)
	b.setConversation(msg.From.ID, &conversationState{stage: stageText})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		"📝 What is the task? Dates and times work too: <code>Lab report friday 3pm</code>", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}
	text := strings.TrimSpace(msg.Text)

	switch state.stage {
	case stageText:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "Send the task as text.", cancelKeyboard())
		}
		state.input = service.Prefill(text, b.now())
		if strings.TrimSpace(state.input.Title) == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I need a title, not only a date. Try again.", cancelKeyboard())
		}
		if state.input.Duration > 0 {
			state.stage = stagePriority
			return b.sendWithReplyMarkup(msg.Chat.ID, "How important is it?", priorityKeyboard())
		}
		state.stage = stageDuration
		return b.sendWithReplyMarkup(msg.Chat.ID, "How long will it take? <code>45m</code>, <code>1.5h</code> or skip for an hour.", skipKeyboard())

	case stageDuration:
		if isSkipInput(text) {
			state.input.Duration = model.DefaultEstimateMinutes
		} else {
			minutes, err := parsePositive(text)
			if err != nil {
				minutes = parser.Parse(text, b.now()).Duration
			}
			if minutes <= 0 {
				return b.sendWithReplyMarkup(msg.Chat.ID, "Send minutes like <code>45</code> or <code>1h</code>, or skip.", skipKeyboard())
			}
			state.input.Duration = minutes
		}
		state.stage = stagePriority
		return b.sendWithReplyMarkup(msg.Chat.ID, "How important is it?", priorityKeyboard())

	case stagePriority:
		switch strings.ToLower(text) {
		case btnLow, btnMedium, btnHigh:
			state.input.Priority = strings.ToLower(text)
		default:
			return b.sendWithReplyMarkup(msg.Chat.ID, "Pick low, medium or high.", priorityKeyboard())
		}
		b.clearConversation(msg.From.ID)
		ws, err := b.workspace(ctx, msg.From, msg.Chat.ID)
		if err != nil {
			return err
		}
		return b.createTask(ctx, msg.Chat.ID, ws, state.input)

	default:
		b.clearConversation(msg.From.ID)
		return nil
	}
}
