// Package bot implements lifecycle management and component orchestration
// for the lookupbot gateway.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/frappeash/lookupbot/internal/config"
	"github.com/frappeash/lookupbot/internal/database"
	"github.com/frappeash/lookupbot/internal/metrics"
)

// Bot manages the lifecycle of the Telegram listener, the scheduler, and
// the metrics server.
type Bot struct {
	logger     *slog.Logger
	cfg        *config.Config
	store      database.Store
	tgBot      *tgbot.Bot
	scheduler  *Scheduler
	metricsSrv *metrics.Server
}

// NewBot wires the orchestrator over its components. metricsSrv may be nil
// when the metrics listener is disabled.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	store database.Store,
	tgBot *tgbot.Bot,
	scheduler *Scheduler,
	metricsSrv *metrics.Server,
) *Bot {
	return &Bot{
		logger:     logger.With("component", "bot_orchestrator"),
		cfg:        cfg,
		store:      store,
		tgBot:      tgBot,
		scheduler:  scheduler,
		metricsSrv: metricsSrv,
	}
}

// Run starts all components and blocks until the context is cancelled or a
// component fails.
func (b *Bot) Run(ctx context.Context) error {
	if schedule := b.cfg.Database.MaintenanceSchedule; schedule != "" {
		err := b.scheduler.AddCronJob("sql_maintenance", schedule, func() {
			mctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			if err := b.store.RunMaintenance(mctx); err != nil {
				b.logger.Error("Maintenance job failed", "error", err)
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule maintenance: %w", err)
		}
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")
		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	if b.metricsSrv != nil {
		g.Go(func() error {
			return b.metricsSrv.ListenAndServe(gCtx)
		})
	}

	b.logger.Info("Bot orchestrator running.")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
