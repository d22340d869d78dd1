package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/safariconnector/backend/api/routes"
	"github.com/safariconnector/backend/internal/auth"
	"github.com/safariconnector/backend/internal/authz"
	"github.com/safariconnector/backend/internal/bookings"
	"github.com/safariconnector/backend/internal/disbursements"
	"github.com/safariconnector/backend/internal/enquiries"
	"github.com/safariconnector/backend/internal/notifications"
	"github.com/safariconnector/backend/internal/quotes"
	"github.com/safariconnector/backend/internal/trips"
	"github.com/safariconnector/backend/pkg/auth/session"
	"github.com/safariconnector/backend/pkg/config"
	"github.com/safariconnector/backend/pkg/db"
	"github.com/safariconnector/backend/pkg/logger"
	"github.com/safariconnector/backend/pkg/migrate"
	"github.com/safariconnector/backend/pkg/outbox"
	"github.com/safariconnector/backend/pkg/redis"
)

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

	authzService := authz.NewService()
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:           auth.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		AppConfig:      cfg.App,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	enquiriesService, err := enquiries.NewService(enquiries.NewRepository(dbClient.DB()), dbClient, outboxService, authzService)
	if err != nil {
		logg.Error(context.Background(), "failed to create enquiries service", err)
		os.Exit(1)
	}

	tripsService, err := trips.NewService(trips.NewRepository(dbClient.DB()), authzService)
	if err != nil {
		logg.Error(context.Background(), "failed to create trips service", err)
		os.Exit(1)
	}

	bookingsService, err := bookings.NewService(bookings.NewRepository(dbClient.DB()), dbClient, outboxService, authzService)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	quotesService, err := quotes.NewService(quotes.NewRepository(dbClient.DB()), dbClient, outboxService, bookingsService, authzService)
	if err != nil {
		logg.Error(context.Background(), "failed to create quotes service", err)
		os.Exit(1)
	}

	disbursementsService, err := disbursements.NewService(disbursements.NewRepository(dbClient.DB()), dbClient, outboxService, authzService)
	if err != nil {
		logg.Error(context.Background(), "failed to create disbursements service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, routes.Services{
			Auth:          authService,
			Register:      registerService,
			Enquiries:     enquiriesService,
			Trips:         tripsService,
			Quotes:        quotesService,
			Bookings:      bookingsService,
			Disbursements: disbursementsService,
			Notifications: notificationsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
