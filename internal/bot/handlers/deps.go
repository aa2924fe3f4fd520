package handlers

import (
	"log/slog"

	"github.com/frappeash/lookupbot/internal/auth"
	"github.com/frappeash/lookupbot/internal/bot"
	"github.com/frappeash/lookupbot/internal/broadcast"
	"github.com/frappeash/lookupbot/internal/config"
	"github.com/frappeash/lookupbot/internal/database"
	"github.com/frappeash/lookupbot/internal/provider"
	"github.com/frappeash/lookupbot/internal/shape"
	"github.com/frappeash/lookupbot/internal/telegram"
)

// HandlerDeps provides dependencies for Telegram command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Store     database.Store
	Transport telegram.Transport
	Gate      *auth.Gate
	Provider  *provider.Client
	Shaper    *shape.Shaper
	Fanout    *broadcast.Fanout
	Scheduler *bot.Scheduler
}
