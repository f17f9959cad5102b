package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Frank-devo/Telegram-paystack-bot/internal/app"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/clock"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/config"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/paystack"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/session"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/storage/postgres"
	"github.com/Frank-devo/Telegram-paystack-bot/internal/telegram"
	transporthttp "github.com/Frank-devo/Telegram-paystack-bot/internal/transport/http"
	"github.com/Frank-devo/Telegram-paystack-bot/migrations"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const startupTimeout = 5 * time.Second
const shutdownTimeout = 10 * time.Second
const sessionSweepInterval = 10 * time.Minute

func main() {
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	pool, err := pgxpool.New(startupCtx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect to db")
	}
	defer pool.Close()

	if err := pool.Ping(startupCtx); err != nil {
		logger.Fatal().Err(err).Msg("db ping")
	}
	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Fatal().Err(err).Msg("apply migrations")
	}

	clk := clock.NewSystem()
	orders := postgres.NewOrderRepository(pool)
	vouchers := postgres.NewVoucherRepository(pool)
	sessions := session.NewStore(cfg.SessionTTL, clk)

	bot := telegram.NewClient(cfg.BotToken)
	payments := paystack.NewClient(cfg.PaystackSecret, cfg.PreferredBank)

	intake := app.NewIntakeService(sessions, orders, payments, cfg.Plans, clk, logger)
	reconcile := app.NewReconcileService(orders, vouchers, bot, clk, logger)
	inventory := app.NewInventoryService(vouchers, logger)

	if inserted, err := inventory.LoadSeedFile(startupCtx, cfg.VouchersFile); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.VouchersFile).Msg("load voucher seed file")
	} else if inserted > 0 {
		logger.Info().Int("inserted", inserted).Msg("voucher seed file merged")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", transporthttp.HealthHandler)
	mux.Handle("/paystack/webhook", transporthttp.HandlePaystackWebhook(cfg.PaystackSecret, reconcile, logger))
	mux.Handle("/admin/inventory", transporthttp.HandleInventory(inventory))
	mux.Handle("/", transporthttp.NotFoundHandler())

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: transporthttp.RequestLogger(mux, logger),
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		logger.Info().Str("addr", server.Addr).Msg("webhook server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	group.Go(func() error {
		logger.Info().Msg("telegram poller starting")
		return telegram.NewPoller(bot, intake, logger).Run(groupCtx)
	})

	group.Go(func() error {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-groupCtx.Done():
				return nil
			case <-ticker.C:
				if removed := sessions.Sweep(); removed > 0 {
					logger.Debug().Int("removed", removed).Msg("expired sessions swept")
				}
			}
		}
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("bot stopped")
		os.Exit(1)
	}
	logger.Info().Msg("bot stopped")
}
