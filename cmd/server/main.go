package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"StockGuess/internal/collector"
	"StockGuess/internal/config"
	"StockGuess/internal/engine"
	"StockGuess/internal/notifier"
	"StockGuess/internal/recorder"
	"StockGuess/internal/scheduler"
	"StockGuess/internal/selector"
	"StockGuess/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] StockGuess starting...")

	if err := godotenv.Load(); err != nil {
		log.Printf("[INFO] no .env file loaded: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		log.Fatalf("[FATAL] init data provider: %v", err)
	}
	log.Printf("[INFO] data source: %s", fetcher.Name())

	loc, err := time.LoadLocation(cfg.Game.Timezone)
	if err != nil {
		log.Fatalf("[FATAL] load timezone: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}
	defer rec.Close()

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var announcer engine.Announcer
	if cfg.TelegramEnabled() {
		tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		announcer = tn
		go tn.StartPolling(ctx, notifier.LeaderboardCommands(rec, server.DefaultScoreLimit))
		log.Println("[INFO] Telegram announcements and polling enabled")
	}

	registry := server.NewRegistry(func() *engine.Controller {
		sel := selector.New(loc)
		sel.MinDaysAgo = cfg.Game.MinDaysAgo
		sel.MaxDaysAgo = cfg.Game.MaxDaysAgo
		sel.LeadInDays = cfg.Game.LeadInDays

		c := engine.NewController(fetcher, sel, rec)
		c.MinHistory = cfg.Game.MinHistory
		c.Announcer = announcer
		return c
	})

	sched := scheduler.NewScheduler(registry, cfg.IdleTTL())
	if err := sched.RegisterAll(cfg.Sessions.SweepCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()

	httpSrv := server.New(registry, rec).HTTPServer(cfg.Server.Addr)
	go func() {
		log.Printf("[INFO] listening on %s", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[FATAL] http server: %v", err)
		}
	}()

	log.Println("[INFO] StockGuess is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[WARN] http shutdown: %v", err)
	}
	sched.Stop()
	log.Println("[INFO] StockGuess stopped")
}

func newFetcher(cfg *config.Config) (collector.Fetcher, error) {
	p := cfg.Provider
	switch p.Name {
	case config.ProviderAlphaVantage:
		return collector.NewAlphaVantageFetcher(p.BaseURL, p.APIKey, cfg.Proxy, cfg.ProviderTimeout()), nil
	case config.ProviderYahoo:
		return collector.NewYahooFetcher(p.BaseURL, cfg.Proxy, cfg.ProviderTimeout()), nil
	case config.ProviderAlpaca:
		return collector.NewAlpacaFetcher(p.APIKey, p.APISecret, p.BaseURL), nil
	case config.ProviderMock:
		return &collector.MockFetcher{Price: 100, Days: 250}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q", p.Name)
	}
}
