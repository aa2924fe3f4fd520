package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frappeash/lookupbot/internal/telegram"
)

// Messenger is the transport surface the policies need for denial notices
// and eviction.
type Messenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts ...telegram.SendOption) (telegram.MessageRef, error)
	LeaveChat(ctx context.Context, chatID int64) error
}

// OpenPolicy allows every group and denies private chats for non-owners.
// This is the default policy.
type OpenPolicy struct {
	ownerID       int64
	registry      Registry
	messenger     Messenger
	deniedPrivate string
	logger        *slog.Logger
}

// NewOpenPolicy creates the allow-all-groups policy. deniedPrivate is the
// notice sent to non-owner private chats.
func NewOpenPolicy(ownerID int64, registry Registry, messenger Messenger, deniedPrivate string, logger *slog.Logger) *OpenPolicy {
	return &OpenPolicy{
		ownerID:       ownerID,
		registry:      registry,
		messenger:     messenger,
		deniedPrivate: deniedPrivate,
		logger:        policyLogger(logger, "open"),
	}
}

func (p *OpenPolicy) Evaluate(ctx context.Context, chat ChatContext) Decision {
	if chat.UserID == p.ownerID {
		registerChat(ctx, p.registry, chat, p.logger)
		return Decision{Allowed: true, Reason: ReasonOwner}
	}

	switch {
	case chat.ChatType == ChatPrivate:
		if _, err := p.messenger.SendMessage(ctx, chat.ChatID, p.deniedPrivate, telegram.WithoutPreview()); err != nil {
			p.logger.WarnContext(ctx, "Failed to send private-chat denial notice", "chat_id", chat.ChatID, "error", err)
		}
		return Decision{Allowed: false, Reason: ReasonDeniedPrivate}

	case chat.IsGroup():
		registerChat(ctx, p.registry, chat, p.logger)
		registerUser(ctx, p.registry, chat, p.logger)
		return Decision{Allowed: true, Reason: ReasonAnyGroup}

	default:
		// Channel posts and anything else are denied silently.
		return Decision{Allowed: false, Reason: ReasonDeniedGroup}
	}
}

// AllowlistPolicy restricts service to the configured official groups and
// actively leaves any other group the bot is added to.
type AllowlistPolicy struct {
	ownerID     int64
	official    map[int64]struct{}
	registry    Registry
	messenger   Messenger
	deniedGroup string
	inviteLink  string
	logger      *slog.Logger
}

// NewAllowlistPolicy creates the official-groups-only policy. deniedGroup is
// a format string receiving the invite link of an official group.
func NewAllowlistPolicy(ownerID int64, officialGroups []int64, registry Registry, messenger Messenger, deniedGroup, inviteLink string, logger *slog.Logger) *AllowlistPolicy {
	official := make(map[int64]struct{}, len(officialGroups))
	for _, id := range officialGroups {
		official[id] = struct{}{}
	}
	return &AllowlistPolicy{
		ownerID:     ownerID,
		official:    official,
		registry:    registry,
		messenger:   messenger,
		deniedGroup: deniedGroup,
		inviteLink:  inviteLink,
		logger:      policyLogger(logger, "allowlist"),
	}
}

func (p *AllowlistPolicy) Evaluate(ctx context.Context, chat ChatContext) Decision {
	if chat.UserID == p.ownerID {
		registerChat(ctx, p.registry, chat, p.logger)
		return Decision{Allowed: true, Reason: ReasonOwner}
	}

	switch {
	case chat.ChatType == ChatPrivate:
		registerUser(ctx, p.registry, chat, p.logger)
		return Decision{Allowed: true, Reason: ReasonPrivateUser}

	case chat.IsGroup():
		if _, ok := p.official[chat.ChatID]; ok {
			registerChat(ctx, p.registry, chat, p.logger)
			registerUser(ctx, p.registry, chat, p.logger)
			return Decision{Allowed: true, Reason: ReasonOfficialGroup}
		}

		notice := fmt.Sprintf(p.deniedGroup, p.inviteLink)
		if _, err := p.messenger.SendMessage(ctx, chat.ChatID, notice, telegram.WithoutPreview()); err != nil {
			p.logger.WarnContext(ctx, "Failed to send group denial notice", "chat_id", chat.ChatID, "error", err)
		}
		// Eviction is best-effort; a failure to leave is swallowed.
		if err := p.messenger.LeaveChat(ctx, chat.ChatID); err != nil {
			p.logger.WarnContext(ctx, "Failed to leave unauthorized group", "chat_id", chat.ChatID, "error", err)
		}
		return Decision{Allowed: false, Reason: ReasonDeniedGroup}

	default:
		return Decision{Allowed: false, Reason: ReasonDeniedGroup}
	}
}

func registerChat(ctx context.Context, registry Registry, chat ChatContext, logger *slog.Logger) {
	var err error
	if chat.ChatType == ChatPrivate {
		err = registry.UpsertUser(ctx, chat.UserID)
	} else {
		err = registry.UpsertGroup(ctx, chat.ChatID)
	}
	if err != nil {
		logger.WarnContext(ctx, "Failed to register chat", "chat_id", chat.ChatID, "error", err)
	}
}

func registerUser(ctx context.Context, registry Registry, chat ChatContext, logger *slog.Logger) {
	if err := registry.UpsertUser(ctx, chat.UserID); err != nil {
		logger.WarnContext(ctx, "Failed to register user", "user_id", chat.UserID, "error", err)
	}
}

func policyLogger(logger *slog.Logger, variant string) *slog.Logger {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger.With("component", "auth", "policy", variant)
}
