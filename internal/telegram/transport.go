package telegram

import (
	"bytes"
	"context"
	"errors"
	"strconv"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/frappeash/lookupbot/internal/membership"
)

// MessageRef identifies one sent message for later edit or deletion.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// LinkButton is a single URL button attached below a message.
type LinkButton struct {
	Label string
	URL   string
}

type sendOptions struct {
	markdown  bool
	noPreview bool
	buttons   []LinkButton
	replyToID int
}

// SendOption customizes an outgoing message.
type SendOption func(*sendOptions)

// WithMarkdown renders the message with Markdown formatting.
func WithMarkdown() SendOption {
	return func(o *sendOptions) { o.markdown = true }
}

// WithoutPreview disables link previews for the message.
func WithoutPreview() SendOption {
	return func(o *sendOptions) { o.noPreview = true }
}

// WithButtons attaches one URL button per entry below the message.
func WithButtons(buttons []LinkButton) SendOption {
	return func(o *sendOptions) { o.buttons = buttons }
}

// WithReplyTo sends the message as a reply to the given message id.
func WithReplyTo(messageID int) SendOption {
	return func(o *sendOptions) { o.replyToID = messageID }
}

// ButtonsOf extracts the buttons carried by a set of send options, letting
// collaborator fakes observe what would be attached to a message.
func ButtonsOf(opts []SendOption) []LinkButton {
	return collectOptions(opts).buttons
}

// Transport is the narrow chat-platform surface consumed by the pipeline.
// Every call is a blocking network operation that can fail; callers treat
// failures per the best-effort contract of their step.
type Transport interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts ...SendOption) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, text string, opts ...SendOption) error
	DeleteMessage(ctx context.Context, ref MessageRef) error
	SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string, opts ...SendOption) (MessageRef, error)
	LeaveChat(ctx context.Context, chatID int64) error
	CopyMessage(ctx context.Context, toChatID int64, from MessageRef) error
	ChatMemberStatus(ctx context.Context, channel string, userID int64) (membership.Status, error)
	ChatInviteLink(ctx context.Context, channel string) (string, error)
}

// botTransport implements Transport on top of go-telegram/bot.
type botTransport struct {
	bot *tgbot.Bot
}

// NewTransport wraps a bot instance in the Transport interface.
func NewTransport(b *tgbot.Bot) Transport {
	return &botTransport{bot: b}
}

// IsForbidden reports whether the error is a permission-style platform
// failure (bot blocked by the user or kicked from the chat).
func IsForbidden(err error) bool {
	return errors.Is(err, tgbot.ErrorForbidden)
}

func (t *botTransport) SendMessage(ctx context.Context, chatID int64, text string, opts ...SendOption) (MessageRef, error) {
	o := collectOptions(opts)

	params := &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	}
	applyOptions(params, o)

	msg, err := t.bot.SendMessage(ctx, params)
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

func (t *botTransport) EditMessage(ctx context.Context, ref MessageRef, text string, opts ...SendOption) error {
	o := collectOptions(opts)

	params := &tgbot.EditMessageTextParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
	}
	if o.markdown {
		params.ParseMode = models.ParseModeMarkdownV1
	}
	if o.noPreview {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: tgbot.True()}
	}

	_, err := t.bot.EditMessageText(ctx, params)
	return err
}

func (t *botTransport) DeleteMessage(ctx context.Context, ref MessageRef) error {
	_, err := t.bot.DeleteMessage(ctx, &tgbot.DeleteMessageParams{
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	})
	return err
}

func (t *botTransport) SendDocument(ctx context.Context, chatID int64, filename string, data []byte, caption string, opts ...SendOption) (MessageRef, error) {
	o := collectOptions(opts)

	params := &tgbot.SendDocumentParams{
		ChatID: chatID,
		Document: &models.InputFileUpload{
			Filename: filename,
			Data:     bytes.NewReader(data),
		},
		Caption: caption,
	}
	if o.markdown {
		params.ParseMode = models.ParseModeMarkdownV1
	}

	msg, err := t.bot.SendDocument(ctx, params)
	if err != nil {
		return MessageRef{}, err
	}
	return MessageRef{ChatID: chatID, MessageID: msg.ID}, nil
}

func (t *botTransport) LeaveChat(ctx context.Context, chatID int64) error {
	_, err := t.bot.LeaveChat(ctx, &tgbot.LeaveChatParams{ChatID: chatID})
	return err
}

func (t *botTransport) CopyMessage(ctx context.Context, toChatID int64, from MessageRef) error {
	_, err := t.bot.CopyMessage(ctx, &tgbot.CopyMessageParams{
		ChatID:     toChatID,
		FromChatID: from.ChatID,
		MessageID:  from.MessageID,
	})
	return err
}

func (t *botTransport) ChatMemberStatus(ctx context.Context, channel string, userID int64) (membership.Status, error) {
	member, err := t.bot.GetChatMember(ctx, &tgbot.GetChatMemberParams{
		ChatID: chatIDValue(channel),
		UserID: userID,
	})
	if err != nil {
		return membership.StatusUnknown, err
	}

	switch member.Type {
	case models.ChatMemberTypeLeft:
		return membership.StatusLeft, nil
	case models.ChatMemberTypeBanned:
		return membership.StatusKicked, nil
	case models.ChatMemberTypeOwner, models.ChatMemberTypeAdministrator,
		models.ChatMemberTypeMember, models.ChatMemberTypeRestricted:
		return membership.StatusMember, nil
	default:
		return membership.StatusUnknown, nil
	}
}

func (t *botTransport) ChatInviteLink(ctx context.Context, channel string) (string, error) {
	chat, err := t.bot.GetChat(ctx, &tgbot.GetChatParams{ChatID: chatIDValue(channel)})
	if err != nil {
		return "", err
	}
	if chat.InviteLink != "" {
		return chat.InviteLink, nil
	}
	if chat.Username != "" {
		return "https://t.me/" + chat.Username, nil
	}
	return "", errors.New("chat has no invite link")
}

func collectOptions(opts []SendOption) sendOptions {
	var o sendOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func applyOptions(params *tgbot.SendMessageParams, o sendOptions) {
	if o.markdown {
		params.ParseMode = models.ParseModeMarkdownV1
	}
	if o.noPreview {
		params.LinkPreviewOptions = &models.LinkPreviewOptions{IsDisabled: tgbot.True()}
	}
	if o.replyToID != 0 {
		params.ReplyParameters = &models.ReplyParameters{MessageID: o.replyToID}
	}
	if len(o.buttons) > 0 {
		rows := make([][]models.InlineKeyboardButton, 0, len(o.buttons))
		for _, btn := range o.buttons {
			rows = append(rows, []models.InlineKeyboardButton{{Text: btn.Label, URL: btn.URL}})
		}
		params.ReplyMarkup = &models.InlineKeyboardMarkup{InlineKeyboard: rows}
	}
}

// chatIDValue converts a configured channel reference to the ChatID value
// the API expects: numeric ids as int64, handles as strings.
func chatIDValue(channel string) any {
	if id, err := strconv.ParseInt(channel, 10, 64); err == nil {
		return id
	}
	return channel
}
