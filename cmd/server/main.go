package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/config"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/db"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/handlers"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/logger"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/repositories"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/scheduler"
	"github.com/martinchoi85-lang/my-asset-portfolio-sub000/internal/services"
)

func main() {
	cfg := config.MustLoad()

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	database, err := db.Connect(&db.Config{
		Host:     cfg.Postgres.Host,
		Port:     cfg.Postgres.Port,
		User:     cfg.Postgres.User,
		Password: cfg.Postgres.Password,
		Name:     cfg.Postgres.Name,
		SSLMode:  cfg.Postgres.SSLMode,
	})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	if err := database.Health(); err != nil {
		log.Fatal("database health check failed", zap.Error(err))
	}
	log.Info("database connection established")

	// Repositories
	txRepo := repositories.NewTransactionRepository(database)
	assetRepo := repositories.NewAssetRepository(database)
	accountRepo := repositories.NewAccountRepository(database)
	snapRepo := repositories.NewSnapshotRepository(database)
	priceRepo := repositories.NewPriceHistoryRepository(database)
	costRepo := repositories.NewCostBasisRepository(database)

	// Services
	snapshotService := services.NewSnapshotService(txRepo, assetRepo, snapRepo, log)
	transactionService := services.NewTransactionService(txRepo, assetRepo, snapshotService, log)
	returnsService := services.NewReturnsService(snapRepo, assetRepo, priceRepo, log)
	costBasisService := services.NewCostBasisService(costRepo, log)
	adminService := services.NewAdminService(accountRepo, assetRepo, log)
	feed := services.NewHTTPPriceFeed(services.PriceFeedConfig{
		URLTemplate:  cfg.PriceFeed.BaseURL,
		ResponsePath: cfg.PriceFeed.ResponsePath,
		Timeout:      cfg.PriceFeed.Timeout,
		Debug:        cfg.PriceFeed.Debug,
	}, log)
	priceService := services.NewPriceService(assetRepo, txRepo, priceRepo, snapshotService, feed, log)

	// Handlers
	transactionHandler := handlers.NewTransactionHandler(transactionService, log)
	snapshotHandler := handlers.NewSnapshotHandler(snapshotService, log)
	returnsHandler := handlers.NewReturnsHandler(returnsService, log)
	costBasisHandler := handlers.NewCostBasisHandler(costBasisService, log)
	priceHandler := handlers.NewPriceHandler(priceService, log)
	adminHandler := handlers.NewAdminHandler(adminService, log)

	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "portfolio-backend",
		})
	})

	// API endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/transactions", transactionHandler.HandleTransactions)
	api.HandleFunc("/transactions/{id}", transactionHandler.HandleTransaction)
	api.HandleFunc("/snapshots", snapshotHandler.HandleSnapshots)
	api.HandleFunc("/snapshots/latest", snapshotHandler.HandleLatestSnapshots)
	api.HandleFunc("/snapshots/rebuild", snapshotHandler.HandleRebuild)
	api.HandleFunc("/reports/returns", returnsHandler.HandleReturns)
	api.HandleFunc("/reports/benchmark", returnsHandler.HandleBenchmark)
	api.HandleFunc("/costbasis/events", costBasisHandler.HandleEvents)
	api.HandleFunc("/costbasis/current", costBasisHandler.HandleCurrent)
	api.HandleFunc("/prices/refresh", priceHandler.HandleRefresh)
	api.HandleFunc("/admin/accounts", adminHandler.HandleAccounts)
	api.HandleFunc("/admin/accounts/{id}", adminHandler.HandleAccount)
	api.HandleFunc("/admin/assets", adminHandler.HandleAssets)
	api.HandleFunc("/admin/assets/{id}", adminHandler.HandleAsset)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Optional nightly price refresh; the engine stays request-driven when off
	if cfg.Scheduler.Enabled {
		sched, err := scheduler.New(log)
		if err != nil {
			log.Fatal("failed to create scheduler", zap.Error(err))
		}
		err = sched.NewCrontabJob("price-refresh", cfg.Scheduler.RefreshCron, func(ctx context.Context) error {
			_, err := priceService.RefreshAll(ctx)
			return err
		})
		if err != nil {
			log.Fatal("failed to register price refresh job", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
		log.Info("price refresh scheduled", zap.String("cron", cfg.Scheduler.RefreshCron))
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: corsHandler(router),
	}

	go func() {
		log.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown failed", zap.Error(err))
	}
}

// corsHandler opens the API to browser clients; auth stays out of scope here.
func corsHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
