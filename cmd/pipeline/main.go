package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alejandrodnm/stockpulse/config"
	"github.com/alejandrodnm/stockpulse/internal/adapters/marketaux"
	"github.com/alejandrodnm/stockpulse/internal/adapters/notify"
	"github.com/alejandrodnm/stockpulse/internal/adapters/storage"
	"github.com/alejandrodnm/stockpulse/internal/adapters/yahoo"
	"github.com/alejandrodnm/stockpulse/internal/domain"
	"github.com/alejandrodnm/stockpulse/internal/ingest"
	"github.com/alejandrodnm/stockpulse/internal/pipeline"
	"github.com/alejandrodnm/stockpulse/internal/ports"
	"github.com/alejandrodnm/stockpulse/internal/sentiment"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	skipIngest := flag.Bool("skip-ingest", false, "use existing shards only, no network fetches")
	noCache := flag.Bool("no-cache", false, "ignore the stage manifest and recompute everything")
	cutoff := flag.String("cutoff", "", "train/test cutoff date YYYY-MM-DD (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full summary tables (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *cutoff != "" {
		cfg.Split.Cutoff = *cutoff
	}
	setupLogger(cfg.Log)

	slog.Info("stockpulse starting",
		"config", *configPath,
		"symbols", len(cfg.Universe.Symbols),
		"years", cfg.Universe.ToYear-cfg.Universe.FromYear+1,
		"skip_ingest", *skipIngest,
	)

	pipeCfg := pipeline.DefaultConfig()
	pipeCfg.FeatureColumns = cfg.Split.FeatureColumns
	pipeCfg.HoldoutDays = cfg.Split.HoldoutDays
	pipeCfg.SkipIngest = *skipIngest
	if cfg.Split.Cutoff != "" {
		day, err := domain.ParseDay(cfg.Split.Cutoff)
		if err != nil {
			slog.Error("invalid cutoff", "err", err, "cutoff", cfg.Split.Cutoff)
			os.Exit(1)
		}
		pipeCfg.Cutoff = day
	}

	store := storage.NewCSVStore(
		cfg.Data.StocksDir,
		cfg.Data.IndexesDir,
		cfg.Data.NewsDir,
		cfg.Data.MergedPath,
		cfg.Data.LabeledPath,
	)

	var cache ports.StageCache
	if !*noCache {
		manifest, err := storage.NewManifest(cfg.Data.ManifestDSN)
		if err != nil {
			slog.Error("failed to open stage manifest", "err", err, "dsn", cfg.Data.ManifestDSN)
			os.Exit(1)
		}
		defer manifest.Close()
		cache = manifest
	}

	bars := yahoo.NewClient(cfg.API.YahooBase)
	news := marketaux.NewClient(cfg.API.MarketauxBase, cfg.API.MarketauxToken)
	scorer := sentiment.NewAnalyzer()

	prices := ingest.NewPrices(bars, store, cfg.Universe.Symbols, cfg.Universe.FromYear, cfg.Universe.ToYear)
	indexes := ingest.NewIndexes(bars, store, cfg.Universe.Indexes, cfg.Universe.FromYear, cfg.Universe.ToYear)
	headlines := ingest.NewNews(news, scorer, store, cfg.Universe.Symbols, cfg.Universe.FromYear, cfg.Universe.ToYear)

	notifier := notify.NewConsole(*table)

	p := pipeline.New(pipeCfg, prices, indexes, headlines, store, store, cache, notifier)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if _, err := p.Run(ctx); err != nil {
		slog.Error("pipeline exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("stockpulse stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
