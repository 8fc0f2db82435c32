package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/domiquerendona/domiq-backend/api/routes"
	"github.com/domiquerendona/domiq-backend/internal/admins"
	"github.com/domiquerendona/domiq-backend/internal/allies"
	"github.com/domiquerendona/domiq-backend/internal/auth"
	"github.com/domiquerendona/domiq-backend/internal/balances"
	"github.com/domiquerendona/domiq-backend/internal/couriers"
	"github.com/domiquerendona/domiq-backend/internal/dispatch"
	"github.com/domiquerendona/domiq-backend/internal/memberships"
	"github.com/domiquerendona/domiq-backend/internal/notifications"
	"github.com/domiquerendona/domiq-backend/internal/orders"
	"github.com/domiquerendona/domiq-backend/internal/pricing"
	"github.com/domiquerendona/domiq-backend/internal/ranking"
	"github.com/domiquerendona/domiq-backend/internal/recharges"
	"github.com/domiquerendona/domiq-backend/internal/users"
	"github.com/domiquerendona/domiq-backend/pkg/auth/session"
	"github.com/domiquerendona/domiq-backend/pkg/config"
	"github.com/domiquerendona/domiq-backend/pkg/db"
	"github.com/domiquerendona/domiq-backend/pkg/logger"
	"github.com/domiquerendona/domiq-backend/pkg/maps"
	"github.com/domiquerendona/domiq-backend/pkg/migrate"
	"github.com/domiquerendona/domiq-backend/pkg/redis"
)

// allyLocationBook gives the embedded allies.Repository a distinct field
// name so it can sit beside memberships.Repository in orderDirectory.
type allyLocationBook allies.Repository

// orderDirectory joins the membership links with the ally location book
// so order intake can resolve both through one dependency.
type orderDirectory struct {
	*memberships.Repository
	allyLocationBook
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
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

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	conn := dbClient.DB()

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(conn),
		Profiles:       auth.NewGormProfileDirectory(conn),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		DB:             dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	courierService, err := couriers.NewService(couriers.NewRepository(conn), cfg.Dispatch.LocationStaleness)
	if err != nil {
		logg.Error(context.Background(), "failed to create courier service", err)
		os.Exit(1)
	}

	allyRepo := allies.NewRepository(conn)
	allyService, err := allies.NewService(allyRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create ally service", err)
		os.Exit(1)
	}

	membershipRepo := memberships.NewRepository(conn)

	teamService, err := admins.NewService(admins.NewRepository(conn), membershipRepo, cfg.Operability)
	if err != nil {
		logg.Error(context.Background(), "failed to create team service", err)
		os.Exit(1)
	}

	notificationRepo := notifications.NewRepository(conn)
	notificationService, err := notifications.NewService(notificationRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}
	dispatcher, err := notifications.NewDispatcher(notificationRepo, notifications.NewGormDirectory(conn), logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	membershipService, err := memberships.NewService(membershipRepo, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create membership service", err)
		os.Exit(1)
	}

	balanceService, err := balances.NewService(balances.NewRepository(conn))
	if err != nil {
		logg.Error(context.Background(), "failed to create balance service", err)
		os.Exit(1)
	}

	rechargeService, err := recharges.NewService(recharges.NewRepository(conn), dbClient, balanceService, membershipRepo, dispatcher)
	if err != nil {
		logg.Error(context.Background(), "failed to create recharge service", err)
		os.Exit(1)
	}

	var geocoder orders.Geocoder
	if cfg.Geocoder.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.Geocoder.APIKey, maps.WithBaseURL(cfg.Geocoder.BaseURL))
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		geocoder = mapsClient
	}

	orderRepo := orders.NewRepository(conn)
	orderService, err := orders.NewService(
		orderRepo,
		orderDirectory{membershipRepo, allyRepo},
		pricing.NewCalculator(cfg.Pricing),
		geocoder,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create order service", err)
		os.Exit(1)
	}

	rankingService, err := ranking.NewService(ranking.NewRepository(conn), cfg.Dispatch.LocationStaleness)
	if err != nil {
		logg.Error(context.Background(), "failed to create ranking service", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(dispatch.ServiceParams{
		Offers:      dispatch.NewRepository(conn),
		Orders:      orderRepo,
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

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Cfg:             cfg,
			Logger:          logg,
			DBPinger:        dbClient,
			Redis:           redisClient,
			SessionChecker:  sessionManager,
			AuthService:     authService,
			RegisterService: registerService,
			Couriers:        courierService,
			Allies:          allyService,
			Teams:           teamService,
			Memberships:     membershipService,
			Links:           membershipRepo,
			Orders:          orderService,
			Dispatch:        dispatchService,
			Recharges:       rechargeService,
			Balances:        balanceService,
			Notifications:   notificationService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
