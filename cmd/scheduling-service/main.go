package main

import (
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/salonloop/scheduling/internal/availability"
	"github.com/salonloop/scheduling/internal/booking"
	"github.com/salonloop/scheduling/internal/config"
	"github.com/salonloop/scheduling/internal/db"
	"github.com/salonloop/scheduling/internal/handlers"
	"github.com/salonloop/scheduling/internal/httpx"
	"github.com/salonloop/scheduling/internal/kafkax"
	"github.com/salonloop/scheduling/internal/lock"
	"github.com/salonloop/scheduling/internal/metrics"
	"github.com/salonloop/scheduling/internal/otelx"
	"github.com/salonloop/scheduling/internal/outbox"
	"github.com/salonloop/scheduling/internal/runtime"
	"github.com/salonloop/scheduling/internal/schedule"
	"github.com/salonloop/scheduling/internal/storage"
)

func main() {
	service := config.String("SERVICE_NAME", "scheduling-service")
	port, err := config.Port("PORT", "8080")
	if err != nil {
		panic(err)
	}
	logger := runtime.NewLogger(service)

	ctx, stop := runtime.SignalContext()
	defer stop()

	otelShutdown, err := otelx.Setup(ctx, otelx.ConfigFromEnv(service))
	if err != nil {
		logger.Error("otel setup failed", "err", err)
	} else {
		defer func() {
			shutdownCtx, cancel := runtime.ShutdownContext(5 * time.Second)
			defer cancel()
			_ = otelShutdown(shutdownCtx)
		}()
	}

	dbURL, err := config.RequiredString("DATABASE_URL")
	if err != nil {
		panic(err)
	}
	pool, err := db.Open(ctx, dbURL, db.Options{
		MaxConns: int32(config.Int("DB_MAX_CONNS", 10)),
		MinConns: int32(config.Int("DB_MIN_CONNS", 0)),
	})
	if err != nil {
		logger.Error("db connection failed", "err", err)
		panic(err)
	}
	defer pool.Close()

	orgRepo := storage.NewOrgRepository(pool)
	staffRepo := storage.NewStaffRepository(pool)
	catalogRepo := storage.NewCatalogRepository(pool)
	customerRepo := storage.NewCustomerRepository(pool)
	apptRepo := storage.NewAppointmentRepository(pool)
	lockRepo := storage.NewLockRepository(pool)
	busyRepo := storage.NewBusyRepository(pool)
	outboxRepo := outbox.NewRepository(pool)

	resolver := schedule.NewResolver(staffRepo)
	computer := availability.NewComputer(orgRepo, catalogRepo, staffRepo, resolver, busyRepo)
	lockManager := lock.NewManager(orgRepo, catalogRepo, staffRepo, resolver, pool, lockRepo, busyRepo, logger)
	bookingService := booking.NewService(orgRepo, catalogRepo, staffRepo, resolver, pool,
		apptRepo, customerRepo, lockRepo, busyRepo, outboxRepo, logger)

	go lockManager.Sweep(ctx, config.Minutes("LOCK_SWEEP_INTERVAL_MINUTES", 1))

	kafkaBrokers := config.String("KAFKA_BROKERS", "")
	publisher := outbox.NewPublisher(pool, outboxRepo, logger, outbox.PublisherConfig{
		Brokers:   kafkaBrokers,
		PollEvery: 2 * time.Second,
		BatchSize: 50,
	})
	go publisher.Run(ctx)

	availabilityHandler := handlers.NewAvailabilityHandler(computer, logger)
	lockHandler := handlers.NewLockHandler(lockManager, logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	adminHandler := handlers.NewAdminHandler(bookingService, logger)

	checks := []runtime.ReadyCheck{
		{Name: "db", Check: db.ReadyCheck(pool)},
	}
	if kafkaBrokers != "" {
		checks = append(checks, runtime.ReadyCheck{Name: "kafka", Check: kafkax.ReadyCheck(kafkaBrokers)})
	}

	// Redis backs the shared rate limiter; without it each replica falls
	// back to limiting in memory.
	var rateLimit httpx.Middleware
	redisAddr := config.String("REDIS_ADDR", "")
	if redisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     redisAddr,
			Password: config.String("REDIS_PASSWORD", ""),
			DB:       config.Int("REDIS_DB", 0),
		})
		defer rdb.Close()
		limiter := httpx.NewRedisRateLimiter(rdb, config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute, service)
		rateLimit = limiter.Middleware(logger, config.Bool("RATE_LIMIT_FAIL_OPEN", true))
		checks = append(checks, runtime.ReadyCheck{Name: "redis", Check: httpx.RedisReadyCheck(rdb)})
	} else {
		rateLimit = httpx.NewRateLimiter(config.Int("RATE_LIMIT_PER_MINUTE", 120), time.Minute).Middleware()
	}

	mux := runtime.NewBaseMux(checks...)
	mux.Handle("/metrics", metrics.Handler())

	mux.HandleFunc("/api/v1/public/slots", availabilityHandler.Slots)
	mux.HandleFunc("/api/v1/public/dates", availabilityHandler.Dates)
	mux.HandleFunc("/api/v1/public/locks", lockHandler.Handle)
	mux.HandleFunc("/api/v1/public/book", bookingHandler.Book)
	mux.HandleFunc("/api/v1/public/appointments/lookup", bookingHandler.Lookup)
	mux.HandleFunc("/api/v1/public/appointments/cancel", bookingHandler.Cancel)
	mux.HandleFunc("/api/v1/public/appointments/reschedule", bookingHandler.Reschedule)

	mux.HandleFunc("/api/v1/appointments", adminHandler.List)
	mux.HandleFunc("/api/v1/appointments/cancel", adminHandler.Cancel)
	mux.HandleFunc("/api/v1/appointments/reschedule", adminHandler.Reschedule)
	mux.HandleFunc("/api/v1/appointments/status", adminHandler.Status)

	httpHandler := httpx.Chain(mux,
		httpx.WithRequestID,
		httpx.WithAccessLog(logger),
		httpx.WithRecovery(logger),
		httpx.WithBodyLimit(1<<20),
		httpx.WithTimeout(15*time.Second),
		rateLimit,
		httpx.WithCORS(httpx.CORSPolicy{
			AllowedOrigins: strings.Split(config.String("CORS_ALLOWED_ORIGINS", ""), ","),
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type", "X-Organization-Id", httpx.RequestIDHeader},
			MaxAge:         10 * time.Minute,
		}),
	)
	httpHandler = otelhttp.NewHandler(httpHandler, "scheduling")

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           httpHandler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server error", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := runtime.ShutdownContext(10 * time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}
	logger.Info("http server stopped")
}
