// Package handlers contains Telegram bot command handlers, along with
// their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frappeash/lookupbot/internal/auth"
)

// OwnerOnly creates a middleware that checks if the message sender is the
// configured owner. If not, it replies "Not Authorized" and stops processing.
func OwnerOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			userID := update.Message.From.ID
			if userID != deps.Config.Telegram.OwnerID {
				chatID := update.Message.Chat.ID
				log := deps.Logger.With("middleware", "OwnerOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

				_, err := deps.Transport.SendMessage(ctx, chatID, deps.Config.Messages.NotAuthorized)
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}

// chatContext maps one message update to the view the authorization gate
// decides on.
func chatContext(update *models.Update) auth.ChatContext {
	return auth.ChatContext{
		ChatID:    update.Message.Chat.ID,
		UserID:    update.Message.From.ID,
		ChatType:  auth.ChatType(update.Message.Chat.Type),
		MessageID: update.Message.ID,
	}
}
