package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chat := chatContext(update)
	if decision := h.deps.Gate.Check(ctx, chat); !decision.Allowed {
		log.InfoContext(ctx, "Start command denied", "chat_id", chat.ChatID, "user_id", chat.UserID, "reason", decision.Reason)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", chat.ChatID, "user_id", chat.UserID)

	_, err := h.deps.Transport.SendMessage(ctx, chat.ChatID, h.deps.Config.Messages.Welcome)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", chat.ChatID)
	}
}
