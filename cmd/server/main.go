package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sherpa/waitlist/internal/config"
	"github.com/sherpa/waitlist/internal/landing"
	"github.com/sherpa/waitlist/internal/pkg/dedupe"
	"github.com/sherpa/waitlist/internal/pkg/logger"
	"github.com/sherpa/waitlist/internal/waitlist"
	"github.com/sherpa/waitlist/internal/webhook"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("address %s is already in use: %w", addr, err)
	}
	return ln.Close()
}

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	cfg, err := config.LoadFromEnv(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	logger.SetRedactPII(!cfg.Log.DisableRedaction)

	addr := cfg.Server.Addr()
	if err := checkPortAvailable(addr); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher := webhook.NewDispatcher(cfg.Webhook, nil)
	if dispatcher.Configured() {
		logger.Info("webhook configured", "encoding", cfg.Webhook.Encoding)
	} else {
		logger.Warn("SHEETS_WEBHOOK_URL not set; waitlist shows the coming-soon message")
	}

	// The duplicate guard is optional; without Redis every valid submission
	// is forwarded.
	var (
		guard  *dedupe.Guard
		pinger landing.Pinger
		rdb    *redis.Client
	)
	if cfg.Redis.Enabled() {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		guard = dedupe.New(rdb, cfg.Redis.DedupeTTL())
		pinger = guard

		pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
		if err := guard.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable at startup; duplicate guard fails open", "addr", cfg.Redis.Addr, "error", err)
		} else {
			logger.Info("duplicate guard enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.DedupeTTL().String())
		}
		pingCancel()
	}

	// Keep a nil *dedupe.Guard out of the interface.
	var controller *waitlist.Controller
	if guard != nil {
		controller = waitlist.NewController(dispatcher, guard)
	} else {
		controller = waitlist.NewController(dispatcher, nil)
	}

	renderer, err := landing.NewRenderer(cfg.Site)
	if err != nil {
		log.Fatalf("Failed to load page template: %v", err)
	}

	var limiter *landing.IPRateLimiter
	if !cfg.RateLimit.Disabled {
		limiter = landing.NewIPRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
		go limiter.Run(ctx, time.Minute)
	}

	handler := landing.NewHandler(landing.Options{
		Controller:     controller,
		Renderer:       renderer,
		Limiter:        limiter,
		Redis:          pinger,
		AllowedOrigins: cfg.CORS.AllowedOrigins,

		TrustProxyHeaders: cfg.Server.TrustProxyHeaders,
	})

	srv := &http.Server{
		Addr:         addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.Server.ReadTimeout(),
		WriteTimeout: cfg.Server.WriteTimeout(),
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("waitlist server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down waitlist server")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
	}
	// Give in-flight webhook posts the rest of the shutdown budget.
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logger.Warn("webhook dispatches still in flight at exit", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
}
