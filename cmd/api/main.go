package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/fintrack/internal/cache"
	"github.com/Dan9191/fintrack/internal/config"
	"github.com/Dan9191/fintrack/internal/handler"
	"github.com/Dan9191/fintrack/internal/integrations/broker"
	"github.com/Dan9191/fintrack/internal/integrations/bureau"
	"github.com/Dan9191/fintrack/internal/integrations/cbr"
	"github.com/Dan9191/fintrack/internal/interfaces"
	"github.com/Dan9191/fintrack/internal/middleware"
	"github.com/Dan9191/fintrack/internal/reconcile"
	"github.com/Dan9191/fintrack/internal/recurrence"
	"github.com/Dan9191/fintrack/internal/repository"
	"github.com/Dan9191/fintrack/internal/scheduler"
	"github.com/Dan9191/fintrack/internal/service"
	"github.com/Dan9191/fintrack/internal/utils/email"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx := context.Background()

	// Initialize storage
	var store interfaces.Store
	switch cfg.Storage {
	case "memory":
		store = repository.NewMemoryRepository()
		logger.Warn("Using in-memory storage, data is lost on restart")
	default:
		db, err := sql.Open("postgres", cfg.DBConn)
		if err != nil {
			logger.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			logger.Fatalf("Failed to ping database: %v", err)
		}
		repo := repository.NewRepository(db)
		if err := repo.Migrate(ctx); err != nil {
			logger.Fatalf("Failed to migrate database: %v", err)
		}
		store = repo
	}

	// Benchmark cache
	var benchCache interfaces.BenchmarkCache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisBenchmarkCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.BenchmarkCacheTTL, logger)
		if err != nil {
			logger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rc.Close()
		benchCache = rc
	} else {
		benchCache = cache.NewMemoryBenchmarkCache(cfg.BenchmarkCacheTTL, time.Now)
	}

	// External sources
	cbrClient := cbr.NewCBRClient(cfg, logger, benchCache)

	var loans interfaces.LoanSource
	if cfg.BureauAPIKey != "" {
		opts := []bureau.ClientOption{bureau.WithTimeout(cfg.SourceTimeout)}
		if cfg.BureauURL != "" {
			opts = append(opts, bureau.WithBaseURL(cfg.BureauURL))
		}
		loans = bureau.NewClient(cfg.BureauAPIKey, cfg.BureauPAN, logger, opts...)
	} else {
		logger.Warn("BUREAU_API_KEY not set, loan sync disabled")
	}

	var holdings interfaces.HoldingSource
	if cfg.BrokerURL != "" {
		holdings = broker.NewClient(cfg.BrokerURL, cfg.BrokerAPIKey, logger,
			broker.WithTimeout(cfg.SourceTimeout), broker.WithRateLimit(cfg.BrokerRateLimit))
	} else {
		logger.Warn("BROKER_URL not set, holdings sync disabled")
	}

	var sender interfaces.ReminderSender
	if cfg.SMTPEnabled() {
		sender = email.NewSender(cfg, logger)
	}

	// Initialize layers
	reconciler := reconcile.NewReconciler(store, loans, holdings, cbrClient, cfg.SourceTimeout, logger, time.Now)
	recurring := recurrence.NewScheduler(store, logger, time.Now)
	svc := service.NewService(store, reconciler, recurring, cbrClient, cfg, logger, time.Now)
	h := handler.NewHandler(svc, logger)

	jobs := scheduler.New(svc, sender, scheduler.Config{
		RecurrenceSpec: cfg.RecurrenceCron,
		ReminderSpec:   cfg.ReminderCron,
		ReminderTo:     cfg.ReminderEmail,
	}, logger)
	if err := jobs.Register(); err != nil {
		logger.Fatalf("Failed to schedule jobs: %v", err)
	}
	jobs.Start()
	defer jobs.Stop()

	// Setup router
	r := mux.NewRouter()
	// Public routes
	r.HandleFunc("/emi", h.EMI).Methods("GET")
	r.HandleFunc("/benchmarks", h.Benchmarks).Methods("GET")
	// Protected routes
	authRouter := r.PathPrefix("/").Subrouter()
	authRouter.Use(middleware.AuthMiddleware(cfg))
	authRouter.HandleFunc("/dashboard", h.Dashboard).Methods("GET")
	authRouter.HandleFunc("/profile", h.CreateProfile).Methods("POST")
	authRouter.HandleFunc("/profile", h.UpdateProfile).Methods("PUT")

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2*cfg.SourceTimeout + 10*time.Second,
	}

	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
	logger.Info("Server stopped")
}
