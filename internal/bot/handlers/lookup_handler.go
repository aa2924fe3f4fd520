package handlers

import (
	"context"
	"log/slog"
	"strings"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/shape"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// NewLookupHandler returns a handler for one provider-backed lookup command.
// The same handler body serves every configured command; only the provider
// binding differs.
func NewLookupHandler(deps HandlerDeps, command string) tgbot.HandlerFunc {
	return lookupHandler{deps: deps, command: command}.Handle
}

// lookupHandler runs the full dispatch pipeline for one command: gate,
// placeholder, provider fetch, shaping, delivery, deferred cleanup.
type lookupHandler struct {
	deps    HandlerDeps
	command string
}

func (h lookupHandler) Handle(ctx context.Context, b *tgbot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "lookup", "command", h.command)

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Lookup handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chat := chatContext(update)
	if decision := h.deps.Gate.Check(ctx, chat); !decision.Allowed {
		log.InfoContext(ctx, "Lookup command denied", "chat_id", chat.ChatID, "user_id", chat.UserID, "reason", decision.Reason)
		return
	}

	metrics.IncCommand(h.command)
	commandRef := telegram.MessageRef{ChatID: chat.ChatID, MessageID: chat.MessageID}

	arg := commandArgument(update.Message.Text)
	if arg == "" {
		h.replyUsage(ctx, log, chat.ChatID, commandRef)
		return
	}

	log.InfoContext(ctx, "Handling lookup command", "chat_id", chat.ChatID, "user_id", chat.UserID)

	placeholder, err := h.deps.Transport.SendMessage(ctx, chat.ChatID, h.deps.Config.Messages.Fetching,
		telegram.WithReplyTo(chat.MessageID))
	if err != nil {
		log.ErrorContext(ctx, "Failed to send placeholder", "error", err, "chat_id", chat.ChatID)
		return
	}

	fetchCtx, cancel := context.WithTimeout(ctx, h.deps.Config.Dispatch.RequestTimeout)
	payload, _ := h.deps.Provider.Fetch(fetchCtx, h.command, arg)
	cancel()

	resp := h.deps.Shaper.Shape(payload, h.deps.Provider.Title(h.command))

	replyRef := placeholder
	switch resp.Mode {
	case shape.ModeAttachment:
		caption := shape.Clamp(resp.Text, h.deps.Config.Dispatch.CaptionLimit)
		docRef, err := h.deps.Transport.SendDocument(ctx, chat.ChatID,
			resp.Attachment.Name, resp.Attachment.Data, caption,
			telegram.WithMarkdown(), telegram.WithReplyTo(chat.MessageID))
		if err != nil {
			log.ErrorContext(ctx, "Failed to send document", "error", err, "chat_id", chat.ChatID)
			h.editOrLog(ctx, log, placeholder, h.deps.Config.Messages.GeneralError)
			break
		}
		if err := h.deps.Transport.DeleteMessage(ctx, placeholder); err != nil {
			log.WarnContext(ctx, "Failed to delete placeholder", "error", err, "chat_id", chat.ChatID)
		}
		replyRef = docRef
	default:
		h.editOrLog(ctx, log, placeholder, resp.Text)
	}

	h.deps.Scheduler.ScheduleDeletion(commandRef, replyRef)
}

// replyUsage answers an argument-less command with its usage line. The hint
// is ephemeral like any other reply.
func (h lookupHandler) replyUsage(ctx context.Context, log *slog.Logger, chatID int64, commandRef telegram.MessageRef) {
	usage := h.deps.Config.Providers[h.command].Usage
	if usage == "" {
		usage = "Usage: /" + h.command + " <query>"
	}

	ref, err := h.deps.Transport.SendMessage(ctx, chatID, usage,
		telegram.WithReplyTo(commandRef.MessageID))
	if err != nil {
		log.WarnContext(ctx, "Failed to send usage hint", "error", err, "chat_id", chatID)
		return
	}
	h.deps.Scheduler.ScheduleDeletion(commandRef, ref)
}

func (h lookupHandler) editOrLog(ctx context.Context, log *slog.Logger, ref telegram.MessageRef, text string) {
	err := h.deps.Transport.EditMessage(ctx, ref, text,
		telegram.WithMarkdown(), telegram.WithoutPreview())
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit placeholder", "error", err, "chat_id", ref.ChatID)
	}
}

// commandArgument extracts everything after the command token, so
// multi-word queries survive intact.
func commandArgument(text string) string {
	_, rest, found := strings.Cut(text, " ")
	if !found {
		return ""
	}
	return strings.TrimSpace(rest)
}
