package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rickgao/dex-buybot/internal/api"
	"github.com/rickgao/dex-buybot/internal/archive"
	"github.com/rickgao/dex-buybot/internal/config"
	"github.com/rickgao/dex-buybot/internal/database"
	"github.com/rickgao/dex-buybot/internal/dex"
	"github.com/rickgao/dex-buybot/internal/feed"
	"github.com/rickgao/dex-buybot/internal/format"
	"github.com/rickgao/dex-buybot/internal/metrics"
	"github.com/rickgao/dex-buybot/internal/notify"
	"github.com/rickgao/dex-buybot/internal/version"
	"github.com/rickgao/dex-buybot/internal/watcher"
)

func main() {
	configPath := flag.String("config", "configs/buybot.local.yaml", "path to config file")
	flag.Parse()

	// Bootstrap logger until the configured level is known
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err, "config", *configPath)
		os.Exit(1)
	}

	logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Logging.SlogLevel(),
	})).With("instance_id", cfg.Instance.ID)
	slog.SetDefault(logger)

	logger.Info("starting buybot",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
		"token", cfg.Token.Symbol,
		"api_url", cfg.API.BaseURL,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	m := metrics.New(metrics.DefaultNamespace)

	// DexHunter client
	client := api.NewClient(
		cfg.API.BaseURL,
		cfg.API.PartnerID,
		api.WithLogger(logger),
		api.WithTimeout(cfg.API.Timeout),
		api.WithRetries(cfg.API.MaxRetries, cfg.API.RetryBackoff),
	)
	oracle := dex.NewPriceOracle(client, m, logger)
	fetcher := dex.NewOrderFetcher(client, cfg.API.PageSize, m, logger)

	tracked := cfg.Token.Asset()
	base := cfg.Base.Asset()
	pairs := cfg.PairAssets()

	formatter := format.New(format.Config{
		Token:        tracked,
		TotalSupply:  cfg.Token.TotalSupply,
		ImageURL:     cfg.Token.ImageURL,
		Base:         base,
		BaseSubunit:  cfg.Base.Subunit,
		BotName:      cfg.Notify.BotName,
		ExplorerURL:  cfg.Notify.ExplorerURL,
		ExplorerName: cfg.Notify.ExplorerName,
	})

	// Optional sinks that receive every dispatched buy
	var recorders []notify.Recorder

	var broadcaster *feed.Broadcaster
	if cfg.Feed.Enabled {
		broadcaster = feed.NewBroadcaster(cfg.Feed.WriteTimeout, m, logger)
		recorders = append(recorders, broadcaster)
	}

	var (
		pool   *pgxpool.Pool
		writer *archive.BuyWriter
	)
	if cfg.Database.Enabled {
		logger.Info("connecting to database",
			"host", cfg.Database.Host,
			"port", cfg.Database.Port,
			"database", cfg.Database.Name,
		)

		pool, err = database.Connect(ctx, cfg.Database)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := archive.EnsureSchema(ctx, pool); err != nil {
			logger.Error("failed to ensure archive schema", "error", err)
			os.Exit(1)
		}

		writer = archive.NewBuyWriter(archive.WriterConfig{
			BatchSize:     cfg.Archive.BatchSize,
			FlushInterval: cfg.Archive.FlushInterval,
			BufferSize:    cfg.Archive.BufferSize,
		}, pool, m, logger)
		if err := writer.Start(ctx); err != nil {
			logger.Error("failed to start archive writer", "error", err)
			os.Exit(1)
		}
		recorders = append(recorders, writer)

		logger.Info("buy archive enabled")
	}

	sender := notify.NewWebhookSender(cfg.Notify.WebhookURL, cfg.Notify.Timeout, logger)
	dispatcher := notify.NewDispatcher(sender, cfg.Watcher.SendDelay, m, logger, recorders...)

	w := watcher.New(watcher.Config{
		Tracked:      tracked,
		Base:         base,
		Pairs:        pairs,
		Interval:     cfg.Watcher.Interval,
		SeenCapacity: cfg.Watcher.SeenCapacity,
	}, oracle, fetcher, formatter, dispatcher, m, logger)

	// Start HTTP server early so health is visible during priming
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler:           createHandler(cfg, w, pool, writer, broadcaster, m),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting http server", "port", cfg.Metrics.Port)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("http server error", "error", err)
		}
	}()

	if cfg.Notify.SendStartupMessage() {
		if err := dispatcher.SendOne(ctx, formatter.Startup(pairs, cfg.Watcher.Interval)); err != nil {
			logger.Warn("failed to send startup message", "error", err)
		}
	}

	if err := w.Start(ctx); err != nil {
		logger.Error("failed to start watcher", "error", err)
		os.Exit(1)
	}

	logger.Info("buybot running",
		"pairs", len(pairs),
		"interval", cfg.Watcher.Interval,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Metrics.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := w.Stop(shutdownCtx); err != nil {
		logger.Error("watcher stop error", "error", err)
	}
	if writer != nil {
		if err := writer.Stop(shutdownCtx); err != nil {
			logger.Error("archive writer stop error", "error", err)
		}
	}
	if broadcaster != nil {
		broadcaster.Close()
	}
	httpServer.Shutdown(shutdownCtx)

	logger.Info("buybot stopped")
}

// createHandler creates the HTTP handler for health checks, metrics and the live feed.
func createHandler(cfg *config.Config, w *watcher.Watcher, pool *pgxpool.Pool, writer *archive.BuyWriter, broadcaster *feed.Broadcaster, m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(rw http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string         `json:"status"`
			Version    string         `json:"version"`
			Components map[string]any `json:"components"`
		}{
			Status:     "healthy",
			Version:    version.String(),
			Components: make(map[string]any),
		}

		st := w.Status()
		health.Components["watcher"] = st
		if st.Cycles == 0 {
			health.Status = "starting"
		}

		if pool != nil {
			if err := pool.Ping(ctx); err != nil {
				health.Status = "unhealthy"
				health.Components["database"] = map[string]string{
					"status": "disconnected",
					"error":  err.Error(),
				}
			} else {
				health.Components["database"] = "connected"
			}
		}
		if writer != nil {
			health.Components["archive"] = writer.Stats()
		}
		if broadcaster != nil {
			health.Components["feed"] = map[string]int{"clients": broadcaster.Clients()}
		}

		rw.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			rw.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(rw).Encode(health)
	})

	mux.Handle(cfg.Metrics.Path, m.Handler())

	if broadcaster != nil {
		mux.Handle(cfg.Feed.Path, broadcaster.Handler())
	}

	return mux
}
