package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/Yogitha-Turumella/MEDASSIST/internal/api/handlers"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/api/router"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/appointments"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/backend"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/cache"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/chat"
	appconfig "github.com/Yogitha-Turumella/MEDASSIST/internal/config"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/directory"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/emergency"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/keepalive"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/notify"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/observability/metrics"
	"github.com/Yogitha-Turumella/MEDASSIST/internal/triage"
	"github.com/Yogitha-Turumella/MEDASSIST/pkg/logging"
)

func main() {
	// Load configuration
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Initialize logger
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting medassist API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend_configured", cfg.ServiceConfigured("supabase"),
	)

	// Metrics
	registry := prometheus.NewRegistry()
	facadeMetrics := metrics.NewFacadeMetrics(registry)

	// Facade variant is selected once, here
	be := backend.New(cfg,
		backend.WithLogger(logger),
		backend.WithMetrics(facadeMetrics),
	)

	// Result cache: shared redis when configured, in-process otherwise
	var resultCache cache.Cache = cache.NewMemory()
	if cfg.RedisAddr != "" {
		opts := &redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		resultCache = cache.NewRedis(redis.NewClient(opts))
		logger.Info("using redis result cache", "addr", cfg.RedisAddr)
	}
	coalescer := cache.NewCoalescer(cfg.CoalesceWindow)

	// Staff notification
	var emailSender notify.EmailSender = notify.NewStubEmailSender(logger)
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		emailSender = sg
	}

	// Services
	directoryService := directory.NewService(be, resultCache, coalescer, cfg.CacheTTL, logger, facadeMetrics)
	triageService := triage.NewService(be, logger)
	emergencyService := emergency.NewService(be, emailSender, cfg.EmergencyStaffEmail, logger)
	chatService := chat.NewService(be, emergencyService, logger)
	appointmentsService := appointments.NewService(be, logger)

	// Router
	r := router.New(&router.Config{
		Logger:              logger,
		AccountHandler:      handlers.NewAccountHandler(be, logger),
		DirectoryHandler:    directory.NewHandler(directoryService, logger),
		TriageHandler:       triage.NewHandler(triageService, logger),
		ChatHandler:         chat.NewHandler(chatService, logger),
		EmergencyHandler:    emergency.NewHandler(emergencyService, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentsService, logger),
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	// Keep-alive worker so the free-tier backend stays awake
	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()
	if cfg.ServiceConfigured("supabase") && cfg.KeepAliveInterval > 0 {
		go keepalive.New(be, cfg.KeepAliveInterval, logger).Run(workerCtx)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
