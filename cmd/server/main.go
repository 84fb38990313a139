// Package main runs the scan-and-win campaign API server.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	app "github.com/rakkenlabs/qr-campaign/internal/app"
	"github.com/rakkenlabs/qr-campaign/internal/app/httpapi"
	"github.com/rakkenlabs/qr-campaign/internal/app/services/draw"
	"github.com/rakkenlabs/qr-campaign/internal/app/storage/postgres"
	"github.com/rakkenlabs/qr-campaign/internal/config"
	"github.com/rakkenlabs/qr-campaign/internal/metrics"
	"github.com/rakkenlabs/qr-campaign/internal/middleware"
	"github.com/rakkenlabs/qr-campaign/internal/platform/migrations"
	"github.com/rakkenlabs/qr-campaign/internal/ratelimit"
	"github.com/rakkenlabs/qr-campaign/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	flag.Parse()

	log := logger.NewDefault("server")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Error("load config")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores := app.Stores{}
	if cfg.DatabaseURL != "" {
		db, err := sqlx.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.WithError(err).Error("open database")
			os.Exit(1)
		}
		defer db.Close()

		if err := db.PingContext(ctx); err != nil {
			log.WithError(err).Error("ping database")
			os.Exit(1)
		}
		if err := migrations.Apply(ctx, db.DB); err != nil {
			log.WithError(err).Error("apply migrations")
			os.Exit(1)
		}

		store := postgres.New(db)
		stores.Entries = store
		stores.Codes = store
		log.Info("using postgres storage")
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage")
	}

	limiters := buildLimiters(ctx, cfg, log)

	application := app.New(stores, limiters, draw.Config{
		WinRatePercent: cfg.WinRatePercent,
		RedirectURL:    cfg.RedirectURL,
	}, log)

	m := metrics.New("qr-campaign")

	router := httpapi.NewHandler(application, cfg.AdminSecret, log)
	router.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	router.Use(middleware.LoggingMiddleware(log))
	router.Use(middleware.MetricsMiddleware(m))

	cors := middleware.NewCORSMiddleware(cfg.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      cors.Handler(router),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("campaign API listening")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.WithError(err).Error("server error")
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	log.Info("stopped")
}

// buildLimiters wires the Redis sliding-window limiters when Redis is
// configured, falling back to the in-process limiter for the per-IP
// dimension otherwise. Per-identifier limiting is optional and off unless
// enabled in config.
func buildLimiters(ctx context.Context, cfg config.Config, log *logger.Logger) app.Limiters {
	var limiters app.Limiters

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.WithError(err).Error("parse redis url")
			os.Exit(1)
		}
		client := redis.NewClient(opts)
		if err := client.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("redis unreachable at startup, continuing")
		}

		limiters.IP = ratelimit.NewRedisLimiter(client, "rl:ip", cfg.RateLimit.PerMinute, time.Minute)
		if cfg.RateLimit.ByIdentifier {
			limiters.Identifier = ratelimit.NewRedisLimiter(client, "rl:identifier", cfg.RateLimit.IdentifierPerDay, 24*time.Hour)
		}
		log.Info("using redis rate limiter")
		return limiters
	}

	log.Warn("REDIS_URL not set; using in-process rate limiter")
	limiters.IP = ratelimit.NewLocalLimiter(float64(cfg.RateLimit.PerMinute)/60, cfg.RateLimit.PerMinute)
	if cfg.RateLimit.ByIdentifier {
		limiters.Identifier = ratelimit.NewLocalLimiter(float64(cfg.RateLimit.IdentifierPerDay)/86400, cfg.RateLimit.IdentifierPerDay)
	}
	return limiters
}
