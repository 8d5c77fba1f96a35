package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/danielvr/mydays/internal/auth"
	"github.com/danielvr/mydays/internal/config"
	"github.com/danielvr/mydays/internal/groups"
	"github.com/danielvr/mydays/internal/membership"
	"github.com/danielvr/mydays/internal/middleware"
	"github.com/danielvr/mydays/internal/notify"
	"github.com/danielvr/mydays/internal/rpc"
	"github.com/danielvr/mydays/internal/service"
	"github.com/danielvr/mydays/internal/storage/sqlite"
	"github.com/danielvr/mydays/internal/watch"
	"github.com/danielvr/mydays/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	logging.Setup()
	logger := slog.Default()

	cfg, err := config.Load(getEnv("CONFIG_PATH", "config.toml"))
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "database", cfg.Database.Path)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := watch.NewHub()

	dispatcher := notify.NewDispatcher(store, notify.LogSender{Logger: logger}, logger, cfg.Notify.Workers)
	go dispatcher.Run(ctx)

	groupSvc := groups.NewService(store, hub, dispatcher, logger)

	// Server-side safety net for clients that disconnect with a stale
	// pointer; connected clients reconcile on their own.
	janitor := membership.NewJanitor(store, groupSvc, logger,
		membership.WithJanitorSettleDelay(cfg.SettleDelay()))
	go janitor.Run(ctx)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.TokenTTL())
	authenticator := auth.NewPasswordAuthenticator(store)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	loggingInterceptor := middleware.NewLoggingInterceptor()
	metricsInterceptor := middleware.NewMetricsInterceptor(registry)
	authRequired := connect.WithInterceptors(
		loggingInterceptor,
		metricsInterceptor,
		middleware.NewAuthInterceptor(jwtManager),
	)
	authOptional := connect.WithInterceptors(
		loggingInterceptor,
		metricsInterceptor,
		middleware.NewOptionalAuthInterceptor(jwtManager),
	)

	mux := http.NewServeMux()
	rpc.RegisterAuthService(mux, service.NewAuthService(authenticator, jwtManager, store, logger), authOptional)
	rpc.RegisterGroupService(mux, service.NewGroupService(groupSvc, store, logger), authRequired)
	rpc.RegisterWatchService(mux, service.NewWatchService(groupSvc, hub, logger), authRequired)
	rpc.RegisterAlarmService(mux, service.NewAlarmService(store, logger), authRequired)

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// h2c lets Connect clients speak HTTP/2 without TLS; TLS terminates at
	// the proxy in front of this server.
	handler := h2c.NewHandler(corsMiddleware(mux), &http2.Server{})

	server := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown failed", "error", err)
		}
	}()

	logger.Info("Server starting", "address", cfg.Server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

// corsMiddleware adds CORS headers for browser access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
