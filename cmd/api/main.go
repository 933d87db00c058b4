package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/richrisemansion/ebook-pop/api/routes"
	authsvc "github.com/richrisemansion/ebook-pop/internal/auth"
	"github.com/richrisemansion/ebook-pop/internal/books"
	"github.com/richrisemansion/ebook-pop/internal/cart"
	"github.com/richrisemansion/ebook-pop/internal/checkout"
	"github.com/richrisemansion/ebook-pop/internal/notify"
	"github.com/richrisemansion/ebook-pop/internal/orders"
	"github.com/richrisemansion/ebook-pop/pkg/config"
	"github.com/richrisemansion/ebook-pop/pkg/db"
	"github.com/richrisemansion/ebook-pop/pkg/logger"
	"github.com/richrisemansion/ebook-pop/pkg/mailer"
	"github.com/richrisemansion/ebook-pop/pkg/metrics"
	"github.com/richrisemansion/ebook-pop/pkg/migrate"
	"github.com/richrisemansion/ebook-pop/pkg/redis"
	"github.com/richrisemansion/ebook-pop/pkg/storage/gcs"
	"github.com/richrisemansion/ebook-pop/pkg/telegram"
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

	deps := routes.Deps{Config: cfg, Logger: logg}

	var booksRepo books.Repository
	var ordersRepo orders.Repository
	if cfg.Orders.IsDemo() {
		logg.Warn(context.Background(), "running with in-memory demo data, nothing will persist")
		booksRepo = books.NewMemoryRepository(true)
		ordersRepo = orders.NewMemoryRepository(true)
	} else {
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

		booksRepo = books.NewRepository(dbClient.DB())
		ordersRepo = orders.NewRepository(dbClient.DB())
		deps.DB = dbClient
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
	deps.Redis = redisClient

	gcsClient, err := gcs.NewClient(context.Background(), cfg.GCS, cfg.GCP, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap cloud storage", err)
		os.Exit(1)
	}
	deps.GCS = gcsClient

	storage, err := orders.NewStorage(gcsClient, cfg.GCS)
	if err != nil {
		logg.Error(context.Background(), "failed to create bucket adapter", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)
	deps.Registry = registry

	var bot *telegram.Client
	if cfg.Telegram.BotToken != "" {
		bot, err = telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			logg.Error(context.Background(), "failed to create telegram client", err)
			os.Exit(1)
		}
		deps.Bot = bot
	} else {
		logg.Warn(context.Background(), "telegram bot not configured, operator alerts disabled")
	}

	mail, err := mailer.NewClient(cfg.Mailer.APIKey, cfg.Mailer.DefaultFrom)
	if err != nil {
		logg.Error(context.Background(), "failed to create mailer", err)
		os.Exit(1)
	}

	var dispatcher *notify.Dispatcher
	if bot != nil {
		dispatcher, err = notify.NewDispatcher(bot, mail, storage, orderMetrics, logg)
	} else {
		dispatcher, err = notify.NewDispatcher(nil, mail, storage, orderMetrics, logg)
	}
	if err != nil {
		logg.Error(context.Background(), "failed to create notification dispatcher", err)
		os.Exit(1)
	}

	booksService, err := books.NewService(booksRepo, storage, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create books service", err)
		os.Exit(1)
	}
	deps.Books = booksService

	keeper, err := cart.NewKeeper(redisClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart keeper", err)
		os.Exit(1)
	}
	cartService, err := cart.NewService(keeper, booksService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}
	deps.Cart = cartService

	ordersService, err := orders.NewService(ordersRepo, storage, dispatcher, redisClient, orderMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	deps.Orders = ordersService

	checkoutService, err := checkout.NewService(cartService, ordersService, cfg.PromptPay, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	deps.Checkout = checkoutService

	authService, err := authsvc.NewService(cfg.Admin, cfg.JWT, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	deps.Auth = authService

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
		"demo":     cfg.Orders.IsDemo(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(deps),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
