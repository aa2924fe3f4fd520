// Package broadcast replays one message to every known recipient chat,
// counting per-recipient outcomes without aborting on individual failures.
package broadcast

import (
	"context"
	"io"
	"log/slog"

	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// Copier replicates a source message into a destination chat.
type Copier interface {
	CopyMessage(ctx context.Context, toChatID int64, from telegram.MessageRef) error
}

// Result is the tally of one fan-out run. Sent+Failed always equals Total.
type Result struct {
	Total  int
	Sent   int
	Failed int
}

// Fanout delivers one message to a snapshot recipient set.
type Fanout struct {
	copier Copier
	logger *slog.Logger
}

// NewFanout creates a Fanout over the given transport.
func NewFanout(copier Copier, logger *slog.Logger) *Fanout {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Fanout{
		copier: copier,
		logger: logger.With("component", "broadcast"),
	}
}

// Run replicates src into every recipient chat, sequentially. A failure for
// one recipient is counted and never affects another's delivery; permission
// failures (blocked or kicked bot) are expected and logged at a lower level.
func (f *Fanout) Run(ctx context.Context, src telegram.MessageRef, recipients []int64) Result {
	result := Result{Total: len(recipients)}

	for _, chatID := range recipients {
		err := f.copier.CopyMessage(ctx, chatID, src)
		metrics.IncBroadcastDelivery(err)
		if err != nil {
			result.Failed++
			if telegram.IsForbidden(err) {
				f.logger.DebugContext(ctx, "Recipient unavailable", "chat_id", chatID, "error", err)
			} else {
				f.logger.WarnContext(ctx, "Broadcast delivery failed", "chat_id", chatID, "error", err)
			}
			continue
		}
		result.Sent++
	}

	f.logger.InfoContext(ctx, "Broadcast finished",
		"total", result.Total, "sent", result.Sent, "failed", result.Failed)
	return result
}
