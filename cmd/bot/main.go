package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/camuig/sina-stock-bot/internal/command"
	"github.com/camuig/sina-stock-bot/internal/config"
	"github.com/camuig/sina-stock-bot/internal/logger"
	"github.com/camuig/sina-stock-bot/internal/scheduler"
	"github.com/camuig/sina-stock-bot/internal/sina"
	"github.com/camuig/sina-stock-bot/internal/storage"
	"github.com/camuig/sina-stock-bot/internal/subscription"
	"github.com/camuig/sina-stock-bot/internal/telegram"
	"github.com/camuig/sina-stock-bot/internal/web"
	"github.com/camuig/sina-stock-bot/internal/wechat"
)

// runner is a chat host that can also push.
type runner interface {
	scheduler.Host
	Run(ctx context.Context) error
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dbPath := flag.String("db", "data/sina-stock-bot.db", "path to SQLite database")
	flag.Parse()

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// Init logger
	log := logger.New(cfg.Logging.Level)
	log.Info("starting sina-stock-bot",
		"telegram", cfg.Telegram.Enabled, "wechat", cfg.WeChat.Enabled)

	schedules, err := scheduler.ParseTriggers(cfg.Push.Triggers)
	if err != nil {
		log.Error("invalid push triggers", "error", err)
		os.Exit(1)
	}

	// Init database
	db, err := storage.NewDatabase(*dbPath)
	if err != nil {
		log.Error("database init failed", "error", err)
		os.Exit(1)
	}
	repo := storage.NewRepository(db)

	// Init services
	store := subscription.NewStore(subscription.NewFilePersister(cfg.Subscription.Path), log)
	quotes := sina.NewClient(log,
		sina.WithTimeout(cfg.SinaTimeout()),
		sina.WithQuoteURL(cfg.Sina.QuoteURL),
		sina.WithSuggestURL(cfg.Sina.SuggestURL),
		sina.WithReferer(cfg.Sina.Referer),
	)
	dispatcher := command.NewDispatcher(quotes, store, cfg.Sina.ChartURL, log)

	var hosts []runner
	if cfg.Telegram.Enabled {
		tg, err := telegram.NewHost(cfg.Telegram, dispatcher, store.Groups, log)
		if err != nil {
			log.Error("telegram init failed", "error", err)
			os.Exit(1)
		}
		hosts = append(hosts, tg)
	}
	if cfg.WeChat.Enabled {
		hosts = append(hosts, wechat.NewHost(cfg.WeChat, dispatcher, log))
	}
	if len(hosts) == 0 {
		log.Warn("no chat host enabled, only the dashboard will run")
	}

	pushTargets := make([]scheduler.Host, 0, len(hosts))
	for _, h := range hosts {
		pushTargets = append(pushTargets, h)
	}
	sched := scheduler.NewScheduler(schedules, quotes, store, repo, pushTargets, cfg.PushLocation(), log)
	webServer := web.NewServer(store, repo, cfg.Web, log)

	// Context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	// Start hosts, scheduler and web server in goroutines
	for _, h := range hosts {
		wg.Add(1)
		go func(h runner) {
			defer wg.Done()
			if err := h.Run(ctx); err != nil {
				log.Error("chat host stopped", "error", err)
			}
		}(h)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	go func() {
		if err := webServer.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info("shutdown signal received", "signal", sig.String())

	// Graceful shutdown
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := webServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown error", "error", err)
	}

	wg.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("sina-stock-bot stopped")
}
