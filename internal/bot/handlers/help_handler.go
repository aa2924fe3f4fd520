package handlers

import (
	"context"
	"sort"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frappeash/lookupbot/internal/telegram"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) tgbot.HandlerFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chat := chatContext(update)
	if decision := h.deps.Gate.Check(ctx, chat); !decision.Allowed {
		log.InfoContext(ctx, "Help command denied", "chat_id", chat.ChatID, "user_id", chat.UserID, "reason", decision.Reason)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", chat.ChatID, "user_id", chat.UserID)

	_, err := h.deps.Transport.SendMessage(ctx, chat.ChatID, h.commandList(), telegram.WithMarkdown())
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", chat.ChatID)
	}
}

// commandList renders one line per configured provider, sorted so the
// listing is stable across restarts.
func (h helpHandler) commandList() string {
	commands := make([]string, 0, len(h.deps.Config.Providers))
	for command := range h.deps.Config.Providers {
		commands = append(commands, command)
	}
	sort.Strings(commands)

	var sb strings.Builder
	sb.WriteString("*Available commands:*\n")
	for _, command := range commands {
		pc := h.deps.Config.Providers[command]
		usage := pc.Usage
		if usage == "" {
			usage = "/" + command + " <query>"
		}
		sb.WriteString("\n" + usage + " | " + pc.Title)
	}
	return sb.String()
}
