package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/scanlink/scanlink-server-go/internal/analytics"
	"github.com/scanlink/scanlink-server-go/internal/config"
	"github.com/scanlink/scanlink-server-go/internal/database"
	"github.com/scanlink/scanlink-server-go/internal/handler"
	"github.com/scanlink/scanlink-server-go/internal/jobs"
	"github.com/scanlink/scanlink-server-go/internal/middleware"
	"github.com/scanlink/scanlink-server-go/internal/redis"
	"github.com/scanlink/scanlink-server-go/internal/repository"
	"github.com/scanlink/scanlink-server-go/internal/service"
	"github.com/scanlink/scanlink-server-go/internal/sse"
)

func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("APP_ENV") == "production"
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
	if err := db.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to ping database")
	}
	cancel()
	log.Info().Msg("database connected")

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	var publisher analytics.Publisher = analytics.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := analytics.NewAMQPPublisher(cfg.AMQPURL, cfg.ScanQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to amqp")
		}
		publisher = amqpPublisher
		log.Info().Str("queue", cfg.ScanQueue).Msg("amqp connected")
	}
	defer publisher.Close()

	accountRepo := repository.NewAccountRepository(db.DB)
	codeRepo := repository.NewCodeRepository(db.DB)

	broker := sse.NewBroker(redisClient)
	defer broker.Close()

	resolverService := service.NewResolverService(
		codeRepo, service.NewDefaultDestinations(), broker, publisher,
	)
	codeService := service.NewCodeService(codeRepo)
	rateLimiter := service.NewRateLimiter(redisClient.Client)

	authMiddleware := middleware.NewAuthMiddleware(accountRepo)
	accountRateLimit := middleware.NewRateLimitMiddleware(rateLimiter)
	resolveRateLimit := middleware.NewIPRateLimitMiddleware(
		rateLimiter, cfg.ResolveRatePerMin, time.Minute, "resolve",
	)
	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	resolveHandler := handler.NewResolveHandler(resolverService, cfg.DeniedPageURL)
	codeHandler := handler.NewCodeHandler(codeService, cfg)
	accountHandler := handler.NewAccountHandler(accountRepo)
	eventsHandler := handler.NewEventsHandler(broker)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(authMiddleware.Handler)
		r.Use(accountRateLimit.Handler)
		r.Mount("/codes", codeHandler.Routes())
		r.Mount("/account", accountHandler.Routes())
		r.Get("/events", eventsHandler.Stream)
	})

	// The resolution route is registered last: chi routes /health, /metrics
	// and /v1 before the wildcard ever matches.
	r.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
		r.Use(resolveRateLimit.Handler)
		r.Get("/{code}", resolveHandler.Resolve)
	})

	statsJob := jobs.NewStatsJob(codeRepo, accountRepo, config.StatsJobInterval)
	statsJob.Start()
	defer statsJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
