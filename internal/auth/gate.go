package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/frappeash/lookupbot/internal/membership"
	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// Gate combines the chat-level policy with the force-subscription check
// into the single per-update authorization decision.
type Gate struct {
	policy       Policy
	checker      *membership.Checker
	messenger    Messenger
	ownerID      int64
	joinRequired string
	logger       *slog.Logger
}

// NewGate creates the combined authorization gate. joinRequired is the
// denial text shown above the join buttons.
func NewGate(policy Policy, checker *membership.Checker, messenger Messenger, ownerID int64, joinRequired string, logger *slog.Logger) *Gate {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Gate{
		policy:       policy,
		checker:      checker,
		messenger:    messenger,
		ownerID:      ownerID,
		joinRequired: joinRequired,
		logger:       logger.With("component", "auth_gate"),
	}
}

// Check gates one update. The chat-level policy runs first; if it allows,
// the force-subscription check runs unless the caller is the owner or no
// channels are configured. Any non-empty missing set converts the decision
// to a denial with one join button per missing channel.
func (g *Gate) Check(ctx context.Context, chat ChatContext) Decision {
	decision := g.policy.Evaluate(ctx, chat)
	if !decision.Allowed {
		metrics.IncAuthDecision(string(decision.Reason))
		return decision
	}

	if chat.UserID != g.ownerID && g.checker != nil && g.checker.Required() {
		if missing := g.checker.Missing(ctx, chat.UserID); len(missing) > 0 {
			g.notifyMissing(ctx, chat.ChatID, missing)
			decision = Decision{Allowed: false, Reason: ReasonMissingSubscription}
		}
	}

	metrics.IncAuthDecision(string(decision.Reason))
	return decision
}

func (g *Gate) notifyMissing(ctx context.Context, chatID int64, missing []membership.JoinLink) {
	buttons := make([]telegram.LinkButton, 0, len(missing))
	for i, link := range missing {
		label := "Join Channel"
		if len(missing) > 1 {
			label = fmt.Sprintf("Join Channel %d", i+1)
		}
		buttons = append(buttons, telegram.LinkButton{Label: label, URL: link.URL})
	}

	if _, err := g.messenger.SendMessage(ctx, chatID, g.joinRequired, telegram.WithButtons(buttons)); err != nil {
		g.logger.WarnContext(ctx, "Failed to send subscription denial", "chat_id", chatID, "error", err)
	}
}
