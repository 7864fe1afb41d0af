package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/slack-go/slack"

	"sentiboard/internal/analyzer"
	"sentiboard/internal/cache"
	"sentiboard/internal/config"
	"sentiboard/internal/groundtruth"
	"sentiboard/internal/httpx"
	slackbot "sentiboard/internal/integrations/slack"
	"sentiboard/internal/integrations/llm"
	"sentiboard/internal/logging"
	"sentiboard/internal/schedule"
	"sentiboard/internal/server"
	"sentiboard/internal/service"
	"sentiboard/internal/storage/sqlite"
)

// Main loads the config, exits on any configuration error and runs until
// SIGINT or SIGTERM.
func Main() {
	cfg := config.LoadConfig()
	if err := run(cfg); err != nil {
		log.Fatalf("sentiboard: %v", err)
	}
}

func run(cfg config.Config) error {
	logger := logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	logger.Info("config loaded",
		"sources", cfg.Sources,
		"provider", cfg.LLMProvider,
		"model", cfg.Model(),
		"timezone", cfg.Timezone,
		"history", cfg.History(),
		"slack", cfg.SlackConfigured(),
		"cache", cfg.CacheConfigured(),
		"schedule", cfg.AnalyzeSchedule,
		"external_http_timeout", appliedHTTPTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	truth := groundtruth.Default()
	if cfg.GroundTruthPath != "" {
		loaded, err := groundtruth.Load(cfg.GroundTruthPath)
		if err != nil {
			return &config.ConfigurationError{Key: "ground_truth_path", Reason: err.Error()}
		}
		truth = loaded
	}
	logger.Info("ground truth loaded", "entries", truth.Len(), "path", cfg.GroundTruthPath)

	provider, err := llm.NewProvider(cfg)
	if err != nil {
		return err
	}

	checks := map[string]server.Pinger{"database": nil, "cache": nil}
	var analyzerOpts []analyzer.Option
	if cfg.CacheConfigured() {
		vk, err := cache.NewValkey(ctx, cache.ValkeyOptions{
			Address:  cfg.ValkeyAddress,
			Password: cfg.ValkeyPassword,
			TLS:      cfg.ValkeyTLS,
		})
		if err != nil {
			logger.Warn("valkey unavailable, continuing without cache", "err", err)
		} else {
			defer vk.Close()
			analyzerOpts = append(analyzerOpts, analyzer.WithCache(vk, cfg.CacheTTL()))
			checks["cache"] = vk
		}
	}

	var svcOpts []service.Option
	if cfg.History() {
		store, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("init database: %w", err)
		}
		defer store.Close()
		logger.Info("database initialized", "path", cfg.DBPath)
		svcOpts = append(svcOpts, service.WithStore(store))
		checks["database"] = store
	}

	svc := service.New(analyzer.New(provider, analyzerOpts...), truth, svcOpts...)

	var api *slack.Client
	if cfg.SlackConfigured() {
		api = slack.New(cfg.SlackBotToken, slack.OptionAppLevelToken(cfg.SlackAppToken))
		go func() {
			if err := slackbot.StartSlackBot(cfg, svc, api); err != nil {
				logger.Error("slack bot stopped", "err", err)
			}
		}()
	}

	var notifier schedule.Notifier
	if api != nil && cfg.ReportChannelID != "" {
		notifier = slackbot.NewNotifier(api, cfg.ReportChannelID)
	}
	schedule.StartInboxScheduler(ctx, cfg, svc, notifier)

	gin.SetMode(cfg.GinMode)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      server.NewRouter(svc, checks, logger),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: appliedHTTPTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("starting http server", "address", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}
	logger.Info("server exited")
	return nil
}
