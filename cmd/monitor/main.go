// cmd/monitor runs the full monitoring stack: synthetic feeds, per-asset
// analysis pipelines, the alert collection and the HTTP/WebSocket gateway.
//
// Config comes from a YAML file (default: config.yaml) with env overrides;
// a .env file in the working directory is loaded first if present.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"trading-monitor/config"
	"trading-monitor/internal/alerts"
	"trading-monitor/internal/gateway"
	"trading-monitor/internal/indicator"
	"trading-monitor/internal/logger"
	"trading-monitor/internal/markethours"
	"trading-monitor/internal/metrics"
	"trading-monitor/internal/monitor"
	"trading-monitor/internal/notify"
	"trading-monitor/internal/publish"
	"trading-monitor/internal/recorder"
	"trading-monitor/internal/strategy"
)

var processStart = time.Now()

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("config load failed")
	}

	log, err := logger.Init("trading-monitor", cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("logger init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met := metrics.NewMetrics()
	store := alerts.NewStore()

	sinks, history, cleanup, err := buildSinks(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("sink setup failed")
	}
	defer cleanup()

	timeframe, err := config.ParseTimeframe(cfg.Monitor.Timeframe)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid timeframe")
	}

	params := strategy.Params{
		BodyLookback:     cfg.Strategy.BodyLookback,
		PullbackLookback: cfg.Strategy.PullbackLookback,
		VolumeLookback:   cfg.Strategy.VolumeLookback,
		BodyFactor:       cfg.Strategy.BodyFactor,
		VolumeFactor:     cfg.Strategy.VolumeFactor,
		TouchTolerance:   cfg.Strategy.TouchTolerance,
		EarlyPullback:    cfg.Strategy.EarlyPullback,
	}
	icfg := indicator.Config{
		FastPeriod:   cfg.Indicators.FastPeriod,
		MediumPeriod: cfg.Indicators.MediumPeriod,
		SlowPeriod:   cfg.Indicators.SlowPeriod,
		SRLookback:   cfg.Indicators.SRLookback,
	}

	sup, err := monitor.NewSupervisor(monitor.Options{
		Assets:        cfg.Monitor.Assets,
		Timeframe:     timeframe,
		WindowLimit:   cfg.Monitor.WindowLimit,
		SeedHistory:   cfg.Monitor.SeedHistory,
		PivotInterval: cfg.Monitor.PivotInterval,
		Indicators:    icfg,
		Params:        params,
		FeedSeed:      cfg.Monitor.FeedSeed,
	}, store, met, sinks, log)
	if err != nil {
		log.Fatal().Err(err).Msg("supervisor setup failed")
	}

	hub := gateway.NewHub(sup, met, log)

	mux := http.NewServeMux()
	tfOptions := make([]gateway.TimeframeOption, 0, len(config.Timeframes()))
	for _, o := range config.Timeframes() {
		tfOptions = append(tfOptions, gateway.TimeframeOption{Label: o.Label, Duration: o.Duration})
	}
	gateway.RegisterRoutes(mux, hub, tfOptions, markethours.DefaultExchanges, history, processStart)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := sup.Run(ctx); err != nil {
			log.Error().Err(err).Msg("supervisor exited")
			stop()
		}
	}()
	go hub.Run(ctx)

	if cfg.Metrics.Enabled {
		go func() {
			if err := met.Serve(ctx, cfg.Metrics.Addr); err != nil {
				log.Error().Err(err).Msg("metrics server exited")
			}
		}()
		log.Info().Str("addr", cfg.Metrics.Addr).Msg("metrics listening")
	}

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("gateway listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server exited")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown incomplete")
	}
}

// buildSinks assembles the alert delivery chain from config. The log
// notifier is always first; the rest are optional. The returned history is
// non-nil only when the SQLite journal is enabled.
func buildSinks(cfg *config.Config, log zerolog.Logger) ([]monitor.Sink, gateway.AlertHistory, func(), error) {
	sinks := []monitor.Sink{notify.NewLogNotifier(log)}
	var closers []func() error
	var history gateway.AlertHistory

	var journal recorder.Recorder = recorder.Noop{}
	if cfg.Journal.Enabled {
		rec, err := recorder.NewSQLite(cfg.Journal.Path, log)
		if err != nil {
			return nil, nil, nil, err
		}
		journal = rec
		history = rec
	}
	sinks = append(sinks, journal)
	closers = append(closers, journal.Close)
	if cfg.Redis.Enabled {
		pub, err := publish.NewRedis(publish.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, log)
		if err != nil {
			return nil, nil, nil, err
		}
		sinks = append(sinks, pub)
		closers = append(closers, pub.Close)
	}
	if cfg.Webhook.URL != "" {
		sinks = append(sinks, notify.NewWebhookNotifier(cfg.Webhook.URL))
	}

	cleanup := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				log.Warn().Err(err).Msg("sink close failed")
			}
		}
	}
	return sinks, history, cleanup, nil
}
