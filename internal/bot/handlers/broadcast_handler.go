package handlers

import (
	"context"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// NewBroadcastHandler returns a handler for the /broadcast command.
// Registration wraps it in the OwnerOnly middleware.
func NewBroadcastHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return broadcastHandler{deps}.Handle
}

// broadcastHandler replicates the replied-to message into every known
// recipient chat and reports the delivery tally.
type broadcastHandler struct {
	deps HandlerDeps
}

func (h broadcastHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "broadcast")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Broadcast handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	metrics.IncCommand("broadcast")

	if update.Message.ReplyToMessage == nil {
		_, err := h.deps.Transport.SendMessage(ctx, chatID, h.deps.Config.Messages.ReplyToBroadcast,
			telegram.WithReplyTo(update.Message.ID))
		if err != nil {
			log.ErrorContext(ctx, "Failed to send broadcast hint", "error", err, "chat_id", chatID)
		}
		return
	}

	recipients, err := h.deps.Store.Recipients(ctx)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load broadcast recipients", "error", err)
		h.sendOrLog(ctx, log, chatID, h.deps.Config.Messages.GeneralError)
		return
	}
	if len(recipients) == 0 {
		h.sendOrLog(ctx, log, chatID, "No recipients recorded yet.")
		return
	}

	log.InfoContext(ctx, "Starting broadcast", "recipients", len(recipients), "user_id", update.Message.From.ID)

	progress, err := h.deps.Transport.SendMessage(ctx, chatID,
		fmt.Sprintf("📣 Broadcasting to %d chats...", len(recipients)))
	if err != nil {
		log.ErrorContext(ctx, "Failed to send progress message", "error", err, "chat_id", chatID)
	}

	src := telegram.MessageRef{ChatID: chatID, MessageID: update.Message.ReplyToMessage.ID}
	result := h.deps.Fanout.Run(ctx, src, recipients)

	tally := fmt.Sprintf("✅ Broadcast complete.\n\nSent: %d\nFailed: %d\nTotal: %d",
		result.Sent, result.Failed, result.Total)

	if progress != (telegram.MessageRef{}) {
		if err := h.deps.Transport.EditMessage(ctx, progress, tally); err != nil {
			log.ErrorContext(ctx, "Failed to edit progress message", "error", err, "chat_id", chatID)
		}
		return
	}
	h.sendOrLog(ctx, log, chatID, tally)
}

func (h broadcastHandler) sendOrLog(ctx context.Context, log *slog.Logger, chatID int64, text string) {
	if _, err := h.deps.Transport.SendMessage(ctx, chatID, text); err != nil {
		log.ErrorContext(ctx, "Failed to send broadcast reply", "error", err, "chat_id", chatID)
	}
}
