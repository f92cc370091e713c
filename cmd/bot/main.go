package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"spot-breakout-bot/internal/alerts"
	"spot-breakout-bot/internal/config"
	"spot-breakout-bot/internal/engine"
	"spot-breakout-bot/internal/exchange"
	"spot-breakout-bot/internal/exchange/binance"
	"spot-breakout-bot/internal/exchange/sim"
	"spot-breakout-bot/internal/exec"
	"spot-breakout-bot/internal/logging"
	"spot-breakout-bot/internal/metrics"
	"spot-breakout-bot/internal/state/sqlite"
	"spot-breakout-bot/internal/strategy"
	"spot-breakout-bot/internal/timescale"
)

func main() {
	configPath := flag.String("config", "internal/config/config.yaml", "path to config file")
	paper := flag.Bool("paper", false, "trade against the simulated exchange regardless of config")
	flag.Parse()

	if err := config.LoadEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load .env: %v\n", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(err)
	}
	log := logging.New(cfg.Log)
	log.Info("config loaded", zap.String("path", *configPath))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := buildClient(ctx, cfg, *paper, log)
	if err != nil {
		log.Error("failed to build exchange client", zap.Error(err))
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.State.SQLitePath), 0o755); err != nil {
		log.Error("failed to create state directory", zap.Error(err))
		os.Exit(1)
	}
	store, err := sqlite.New(cfg.State.SQLitePath)
	if err != nil {
		log.Error("failed to open state store", zap.Error(err))
		os.Exit(1)
	}
	defer store.Close()

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		prom := metrics.NewPrometheus()
		m = prom.Metrics
		mux := http.NewServeMux()
		mux.Handle("/metrics", prom.Handler())
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Listen, mux); err != nil {
				log.Warn("metrics listener stopped", zap.Error(err))
			}
		}()
		log.Info("metrics enabled", zap.String("listen", cfg.Metrics.Listen))
	} else {
		m = metrics.NewNoop()
	}

	tsdb, err := timescale.New(cfg.Timescale, log)
	if err != nil {
		log.Error("failed to connect to timescale", zap.Error(err))
		os.Exit(1)
	}
	if tsdb != nil {
		tsdb.Start(ctx)
		defer tsdb.Close()
	}

	executor := exec.New(client, store, log)
	strat := strategy.NewVolumeBreakout(cfg.Strategy)
	risk := strategy.NewManager(cfg.Risk)
	notifier := alerts.NewTelegram(cfg.Telegram, log)

	eng := engine.New(cfg, client, strat, risk, executor, m, notifier, tsdb, store, log)

	scheduler := cron.New()
	if cfg.Report.Schedule != "" {
		if _, err := scheduler.AddFunc(cfg.Report.Schedule, func() {
			log.Info("status report", zap.String("report", eng.Report()))
		}); err != nil {
			log.Warn("invalid report schedule", zap.String("schedule", cfg.Report.Schedule), zap.Error(err))
		} else {
			scheduler.Start()
			defer scheduler.Stop()
		}
	}

	if err := eng.Run(ctx); err != nil && err != context.Canceled {
		log.Error("engine terminated", zap.Error(err))
		os.Exit(1)
	}
}

func buildClient(ctx context.Context, cfg *config.Config, paper bool, log *zap.Logger) (exchange.Client, error) {
	if paper || cfg.Exchange.Mode == "sim" {
		log.Info("using simulated exchange")
		return sim.New(), nil
	}
	apiKey := strings.TrimSpace(os.Getenv("BINANCE_API_KEY"))
	secret := strings.TrimSpace(os.Getenv("BINANCE_API_SECRET"))
	if apiKey == "" || secret == "" {
		return nil, fmt.Errorf("BINANCE_API_KEY and BINANCE_API_SECRET are required for mode %q", cfg.Exchange.Mode)
	}
	client := binance.New(cfg.Exchange, apiKey, secret, log)
	if cfg.Exchange.WSEnabled {
		client.StartFeed(ctx, cfg.Exchange.WSURL, cfg.Strategy.Symbol)
	}
	return client, nil
}
