package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/srr_metrics/backend/internal/cache"
	"github.com/srr_metrics/backend/internal/config"
	httpapi "github.com/srr_metrics/backend/internal/http"
	"github.com/srr_metrics/backend/internal/refresh"
	"github.com/srr_metrics/backend/internal/service"
	"github.com/srr_metrics/backend/internal/source"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zerolog.TimeFieldFormat = time.RFC3339
	level, _ := zerolog.ParseLevel(cfg.LogLevel)
	logger := log.Level(level).With().Str("service", "srr-metrics").Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	src, closeSource, err := source.New(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Str("source", cfg.SourceKind).Msg("failed to open data source")
	}
	defer closeSource()

	clock := clockwork.NewRealClock()
	datasets := cache.New[service.Dataset](cfg.CacheTTL)
	datasets.FetchTimeout = cfg.FetchBudget()
	dash := service.NewDashboard(src, datasets, service.DashboardConfig{
		Worksheet: cfg.Worksheet,
		Location:  cfg.Location(),
		TTL:       cfg.CacheTTL,
		Clock:     clock,
	}, logger)

	sched := refresh.NewScheduler(logger, clock, cfg.RefreshInterval, dash.Invalidate)
	sched.Warm = dash.Warm

	if err := dash.Warm(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial load failed; will retry on first request")
	}
	go func() {
		_ = sched.Run(ctx)
	}()

	router := httpapi.Router(cfg, dash, sched, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Str("source", src.Kind()).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	stop()

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctxShutdown)
	logger.Info().Msg("server stopped")
}
