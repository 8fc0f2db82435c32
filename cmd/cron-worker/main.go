package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/domiquerendona/domiq-backend/internal/admins"
	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/internal/couriers"
	"github.com/domiquerendona/domiq-backend/internal/cron"
	"github.com/domiquerendona/domiq-backend/internal/dispatch"
	"github.com/domiquerendona/domiq-backend/internal/memberships"
	"github.com/domiquerendona/domiq-backend/internal/notifications"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/internal/ranking"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/metrics"
	"github.com/domiquerendona/domiq-backend/pkg/migrate"
	"github.com/domiquerendona/domiq-backend/pkg/redis"
)

const lockKeyFormat = "domiq:cron-worker:lock:%s"

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	conn := dbClient.DB()

	courierService, err := couriers.NewService(couriers.NewRepository(conn), cfg.Dispatch.LocationStaleness)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier service", err)
		os.Exit(1)
	}

	membershipRepo := memberships.NewRepository(conn)

	teamService, err := admins.NewService(admins.NewRepository(conn), membershipRepo, cfg.Operability)
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	balanceService, err := balances.NewService(balances.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}

	rankingService, err := ranking.NewService(ranking.NewRepository(conn), cfg.Dispatch.LocationStaleness)
	if err != nil {
		logg.Error(context.Background(), "failed to create ranking service", err)
		os.Exit(1)
	}

	notificationRepo := notifications.NewRepository(conn)
	dispatcher, err := notifications.NewDispatcher(notificationRepo, notifications.NewGormDirectory(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(dispatch.ServiceParams{
		Offers:      dispatch.NewRepository(conn),
		Orders:      orders.NewRepository(conn),
		Ranker:      rankingService,
		Balances:    balanceService,
		TxRunner:    dbClient,
		Directory:   membershipRepo,
		Operability: teamService,
		Notifier:    dispatcher,
		Dispatch:    cfg.Dispatch,
		Fees:        cfg.Fees,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	offerTimeoutJob, err := cron.NewOfferTimeoutJob(cron.OfferTimeoutJobParams{
		Logger:  logg,
		Sweeper: dispatchService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create offer timeout job", err)
		os.Exit(1)
	}

	cycleExpiryJob, err := cron.NewCycleExpiryJob(cron.CycleExpiryJobParams{
		Logger:  logg,
		Sweeper: dispatchService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cycle expiry job", err)
		os.Exit(1)
	}

	locationStalenessJob, err := cron.NewLocationStalenessJob(cron.LocationStalenessJobParams{
		Logger:   logg,
		Couriers: courierService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create location staleness job", err)
		os.Exit(1)
	}

	notificationCleanupJob, err := cron.NewNotificationCleanupJob(cron.NotificationCleanupJobParams{
		Logger:     logg,
		Repository: notificationRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create notification cleanup job", err)
		os.Exit(1)
	}

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(
		offerTimeoutJob,
		cycleExpiryJob,
		locationStalenessJob,
		notificationCleanupJob,
	)
	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: cfg.Dispatch.SweepInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
