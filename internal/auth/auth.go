// Package auth implements the per-update authorization pipeline: chat-type
// rules, the group allow-list, the owner bypass, and the force-subscription
// gate, combined into a single allow/deny decision.
package auth

import "context"

// ChatType classifies the originating chat of an update.
type ChatType string

const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// ChatContext is the immutable per-update view the gate decides on.
type ChatContext struct {
	ChatID    int64
	UserID    int64
	ChatType  ChatType
	MessageID int
}

// IsGroup reports whether the chat is a group or supergroup.
func (c ChatContext) IsGroup() bool {
	return c.ChatType == ChatGroup || c.ChatType == ChatSupergroup
}

// Reason explains an authorization decision.
type Reason string

const (
	ReasonOwner               Reason = "owner"
	ReasonPrivateUser         Reason = "private_user"
	ReasonOfficialGroup       Reason = "official_group"
	ReasonAnyGroup            Reason = "any_group"
	ReasonDeniedPrivate       Reason = "denied_private"
	ReasonDeniedGroup         Reason = "denied_group"
	ReasonMissingSubscription Reason = "missing_subscription"
)

// Decision is the outcome of gating one update. It is produced once per
// update and never persisted.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Registry receives idempotent registration writes for allowed chats.
// Denial paths never write.
type Registry interface {
	UpsertUser(ctx context.Context, userID int64) error
	UpsertGroup(ctx context.Context, chatID int64) error
}

// Policy decides chat-level authorization and performs its side effects
// (registration on allow, notice or eviction on deny).
type Policy interface {
	Evaluate(ctx context.Context, chat ChatContext) Decision
}
