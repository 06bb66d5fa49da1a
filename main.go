package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kafila-ticketing/internal/analytics"
	analytics_api "kafila-ticketing/internal/analytics/api"
	"kafila-ticketing/internal/auth"
	"kafila-ticketing/internal/catalog"
	"kafila-ticketing/internal/config"
	"kafila-ticketing/internal/database/migrations"
	"kafila-ticketing/internal/kafka"
	"kafila-ticketing/internal/logger"
	"kafila-ticketing/internal/metrics"
	"kafila-ticketing/internal/notify"
	"kafila-ticketing/internal/order"
	"kafila-ticketing/internal/order/db"
	"kafila-ticketing/internal/order/order_api"
	rediswrap "kafila-ticketing/internal/order/redis"
	"kafila-ticketing/internal/payment/razorpay"
	"kafila-ticketing/internal/sse"
	tickets "kafila-ticketing/internal/tickets/service"
	"kafila-ticketing/internal/tickets/template"
	"kafila-ticketing/internal/tickets/ticket_api"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
)

func connectPostgres(cfg config.DatabaseConfig, logger *logger.Logger) *bun.DB {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.DSN)
		if err != nil {
			logger.Error("DATABASE", fmt.Sprintf("Failed to open PostgreSQL: %v", err))
			time.Sleep(2 * time.Second)
			continue
		}

		err = sqldb.Ping()
		if err == nil {
			break
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		sqldb.Close()
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")
	return bun.NewDB(sqldb, pgdialect.New())
}

func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *logger.Logger) (*redis.Client, order.EventDeduper) {
	if !cfg.Enabled {
		logger.Warn("REDIS", "Redis disabled, webhook dedupe relies on conditional updates only")
		return nil, rediswrap.Nop{}
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("REDIS", fmt.Sprintf("Redis unreachable at %s, continuing without dedupe: %v", cfg.Addr, err))
		redisClient.Close()
		return nil, rediswrap.Nop{}
	}

	logger.Info("REDIS", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Addr))
	return redisClient, rediswrap.NewRedis(redisClient, cfg.EventTTL, logger)
}

type publisher interface {
	order.EventPublisher
	Close() error
}

func connectKafka(cfg config.KafkaConfig, logger *logger.Logger) publisher {
	if !cfg.Enabled {
		logger.Info("KAFKA", "Kafka disabled, lifecycle events are not published")
		return kafka.NopPublisher{}
	}

	if err := kafka.EnsureTopicsExist(cfg.Brokers, cfg.Topics.All(), logger); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	} else {
		logger.Info("KAFKA", "Required topics ensured successfully")
	}
	return kafka.NewProducer(cfg.Brokers, cfg.Topics, logger)
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting ticketing service initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}
	cfg := config.Load()
	ctx := context.Background()

	if cfg.Razorpay.WebhookSecret == "" || cfg.Razorpay.KeySecret == "" {
		logger.Warn("CONFIG", "Razorpay secrets not set, every signature check will fail")
	}

	cat, err := catalog.Load(cfg.Ticketing.CatalogFile)
	if err != nil {
		logger.Fatal("CONFIG", fmt.Sprintf("Failed to load ticket catalog: %v", err))
	}
	logger.Info("CONFIG", fmt.Sprintf("Catalog %q loaded with %d tiers", cat.Title, len(cat.Tickets)))

	bunDB := connectPostgres(cfg.Database, logger)
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		// the runner is not closed: its driver would close the shared pool
		if err := migrations.NewRunner(bunDB, logger).MigrateUp(); err != nil {
			logger.Fatal("DATABASE", fmt.Sprintf("Migration failed: %v", err))
		}
	}

	redisClient, dedupe := connectRedis(ctx, cfg.Redis, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	kafkaProducer := connectKafka(cfg.Kafka, logger)
	defer kafkaProducer.Close()

	smtpSender, err := notify.NewSMTPSender(cfg.Email)
	if err != nil {
		logger.Fatal("EMAIL", fmt.Sprintf("Failed to configure SMTP client: %v", err))
	}
	defer smtpSender.Close()
	var mailerOpts []notify.MailerOption
	if cfg.Email.FontPath != "" {
		mailerOpts = append(mailerOpts, notify.WithTicketPDF(template.NewTicketPDFGenerator(cfg.Email.FontPath)))
	} else {
		logger.Info("EMAIL", "TICKET_FONT_PATH not set, PDF ticket attachments are off")
	}
	mailer := notify.NewMailer(smtpSender, cfg.Email.FromName, cfg.Email.FromAddress, cat, logger, mailerOpts...)

	metrics.Register()

	orderStore := &db.DB{Bun: bunDB}
	signer := razorpay.NewSigner(cfg.Razorpay.KeySecret, cfg.Razorpay.WebhookSecret)
	emitter := sse.NewOrderStatusEmitter()

	orderService := order.NewOrderService(
		orderStore,
		razorpay.NewClient(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret),
		signer,
		cat,
		logger,
		order.WithDeduper(dedupe),
		order.WithPublisher(kafkaProducer),
		order.WithNotifier(mailer),
		order.WithEmitter(emitter),
		order.WithExpiry(cfg.Ticketing.OrderExpiry),
		order.WithCurrency(cfg.Razorpay.Currency),
	)
	doorService := tickets.NewDoorService(orderStore, kafkaProducer, logger)
	analyticsService := analytics.NewService(bunDB, cat)

	handler := order_api.NewHandler(orderService, cat, logger)
	handler.BodyLimit = cfg.Ticketing.RequestLimit
	verifyHandler := order_api.NewVerifyHandler(signer, logger)
	sseHandler := order_api.NewSSEHandler(orderService, emitter, logger)
	ticketHandler := ticket_api.NewHandler(doorService, logger)
	analyticsHandler := analytics_api.NewHandler(analyticsService, logger)

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(logger.Middleware)
	r.Use(metrics.Instrument)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := bunDB.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		// --- Public Routes ---
		r.Get("/event", handler.GetEvent)
		r.Post("/ticket/quote", handler.Quote)
		r.Post("/ticket/initiate", handler.InitiateOrder)
		r.Post("/ticket/verify", verifyHandler.VerifyPayment)
		r.Post("/razorpay/webhook", handler.RazorpayWebhook)
		r.Get("/order/{orderId}", handler.GetOrder)
		r.Get("/order/{orderId}/events", sseHandler.OrderEvents)
		logger.Info("ROUTER", "Checkout routes registered under /api")

		// --- Staff Routes ---
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth.StaffTokenSecret, cfg.Auth.StaffTokenIssuer, logger))

			r.With(auth.RequireRole(auth.ScannerRole)).Post("/scanner/validate", ticketHandler.ValidateTicket)
			r.With(auth.RequireRole(auth.ScannerRole)).Post("/scanner/mark-used", ticketHandler.MarkUsed)
			r.With(auth.RequireRole(auth.AdminRole)).Get("/admin/summary", analyticsHandler.GetSalesSummary)
		})
		logger.Info("AUTH", "Staff token middleware applied to scanner and admin routes")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Ticketing service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Ticketing service shutdown complete")
	}
}
