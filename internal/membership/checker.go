// Package membership evaluates force-subscription requirements: which of
// the configured channels a user is not currently a member of.
package membership

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Status is a point-in-time membership state for one (channel, user) pair.
// It is never cached; membership can change between calls.
type Status string

const (
	StatusMember  Status = "member"
	StatusLeft    Status = "left"
	StatusKicked  Status = "kicked"
	StatusUnknown Status = "unknown"
)

// FallbackLink is used when a channel's invite-link lookup itself fails.
const FallbackLink = "https://t.me/"

// API is the platform surface the checker needs.
type API interface {
	ChatMemberStatus(ctx context.Context, channel string, userID int64) (Status, error)
	ChatInviteLink(ctx context.Context, channel string) (string, error)
}

// JoinLink pairs a missing channel with a public URL the user can join through.
type JoinLink struct {
	Channel string
	URL     string
}

// Checker reports which required channels a user is not subscribed to.
type Checker struct {
	api        API
	channels   []string
	failClosed bool
	logger     *slog.Logger
}

// NewChecker creates a Checker over the configured channel set.
// When failClosed is true, a membership query failure counts the channel
// as missing; otherwise the channel is treated as satisfied.
func NewChecker(api API, channels []string, failClosed bool, logger *slog.Logger) *Checker {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Checker{
		api:        api,
		channels:   channels,
		failClosed: failClosed,
		logger:     logger.With("component", "membership"),
	}
}

// Required reports whether any channels are configured at all.
func (c *Checker) Required() bool {
	return len(c.channels) > 0
}

// Missing returns a join link for every configured channel the user is not
// a member of, in configuration order. A query failure for one channel never
// aborts evaluation of the remaining channels. The result is empty when all
// channels are satisfied or none are configured.
func (c *Checker) Missing(ctx context.Context, userID int64) []JoinLink {
	var missing []JoinLink

	for _, channel := range c.channels {
		status, err := c.api.ChatMemberStatus(ctx, channel, userID)
		if err != nil {
			c.logger.WarnContext(ctx, "Membership query failed",
				"channel", channel, "user_id", userID, "error", err)
			if c.failClosed {
				missing = append(missing, JoinLink{Channel: channel, URL: c.joinLink(ctx, channel)})
			}
			continue
		}

		if status == StatusLeft || status == StatusKicked {
			missing = append(missing, JoinLink{Channel: channel, URL: c.joinLink(ctx, channel)})
		}
	}

	return missing
}

// joinLink resolves a public URL for the channel: handle-based channels get
// a direct t.me link, others a best-effort invite-link lookup.
func (c *Checker) joinLink(ctx context.Context, channel string) string {
	if handle, ok := strings.CutPrefix(channel, "@"); ok {
		return "https://t.me/" + handle
	}

	link, err := c.api.ChatInviteLink(ctx, channel)
	if err != nil {
		c.logger.WarnContext(ctx, "Invite link lookup failed", "channel", channel, "error", err)
		return FallbackLink
	}
	return link
}
