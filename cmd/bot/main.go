// Package main contains the entrypoint for the lookup gateway bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/frappeash/lookupbot/internal/auth"
	"github.com/frappeash/lookupbot/internal/bot"
	"github.com/frappeash/lookupbot/internal/bot/handlers"
	"github.com/frappeash/lookupbot/internal/broadcast"
	"github.com/frappeash/lookupbot/internal/config"
	"github.com/frappeash/lookupbot/internal/database"
	"github.com/frappeash/lookupbot/internal/logger"
	"github.com/frappeash/lookupbot/internal/membership"
	"github.com/frappeash/lookupbot/internal/metrics"
	"github.com/frappeash/lookupbot/internal/provider"
	"github.com/frappeash/lookupbot/internal/shape"
	"github.com/frappeash/lookupbot/internal/telegram"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components and returns an exit
// code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}
	transport := telegram.NewTransport(tg)

	checker := membership.NewChecker(transport, cfg.Membership.RequiredChannels,
		cfg.Membership.FailMode == config.FailClosed, log)

	var policy auth.Policy
	switch cfg.Auth.Policy {
	case config.PolicyAllowlist:
		policy = auth.NewAllowlistPolicy(cfg.Telegram.OwnerID, cfg.Auth.OfficialGroups,
			store, transport, cfg.Messages.DeniedGroup, cfg.Auth.InviteLink, log)
	default:
		policy = auth.NewOpenPolicy(cfg.Telegram.OwnerID, store, transport,
			cfg.Messages.DeniedPrivate, log)
	}
	gate := auth.NewGate(policy, checker, transport, cfg.Telegram.OwnerID,
		cfg.Messages.JoinRequired, log)
	log.Info("Authorization configured", "policy", cfg.Auth.Policy,
		"required_channels", len(cfg.Membership.RequiredChannels))

	sched, err := bot.NewScheduler(transport, cfg.Dispatch.CleanupDelay, log)
	if err != nil {
		log.Error("Failed to start scheduler", "error", err)
		return 1
	}

	hDeps := handlers.HandlerDeps{
		Logger:    log,
		Config:    cfg,
		Store:     store,
		Transport: transport,
		Gate:      gate,
		Provider:  provider.NewClient(cfg.Providers, cfg.Dispatch.RequestTimeout, log),
		Shaper:    shape.NewShaper(cfg.Shaper.InlineLimit, cfg.Shaper.Footer, cfg.Messages.NoData),
		Fanout:    broadcast.NewFanout(transport, log),
		Scheduler: sched,
	}

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	log.Info("Commands registered", "count", len(cmdHandlers))

	var metricsSrv *metrics.Server
	if cfg.Metrics.Enabled {
		metricsSrv = metrics.NewServer(log, cfg.Metrics.Addr, store)
	}

	app := bot.NewBot(log, cfg, store, tg, sched, metricsSrv)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
