package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/stocksense/stocksense/internal/app"
	"github.com/stocksense/stocksense/internal/inventory"
	"github.com/stocksense/stocksense/internal/masterdata/branches"
	"github.com/stocksense/stocksense/internal/masterdata/products"
	"github.com/stocksense/stocksense/internal/masterdata/warehouses"
	"github.com/stocksense/stocksense/internal/observability"
	"github.com/stocksense/stocksense/internal/platform/cache"
	"github.com/stocksense/stocksense/internal/platform/db"
	"github.com/stocksense/stocksense/internal/procurement"
	"github.com/stocksense/stocksense/internal/reports"
	"github.com/stocksense/stocksense/internal/reports/export"
	"github.com/stocksense/stocksense/internal/sales"
	"github.com/stocksense/stocksense/internal/shared"
	"github.com/stocksense/stocksense/internal/users"
	"github.com/stocksense/stocksense/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis connect", slog.Any("error", err))
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(pool)
	idempotency := shared.NewIdempotencyStore(pool)

	inventoryService := inventory.NewService(inventory.NewRepository(pool), auditLogger, metrics, idempotency)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	productsHandler := products.NewHandler(logger, products.NewService(products.NewRepository(pool)))
	branchesHandler := branches.NewHandler(logger, branches.NewService(branches.NewRepository(pool)))
	warehousesHandler := warehouses.NewHandler(logger, warehouses.NewService(warehouses.NewRepository(pool)))

	salesService := sales.NewService(sales.NewRepository(pool), inventoryService)
	salesHandler := sales.NewHandler(logger, salesService)

	procurementService := procurement.NewService(procurement.NewRepository(pool), inventoryService)
	procurementHandler := procurement.NewHandler(logger, procurementService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)
	reportService := reports.NewService(reports.NewRepository(pool), reportCache)
	reportsHandler := reports.NewHandler(logger, reportService, export.Renderer{})
	if err := reportCache.ListenForInvalidation(ctx); err != nil {
		logger.Warn("cache invalidation listener", slog.Any("error", err))
	}

	usersHandler := users.NewHandler(logger, users.NewService(users.NewRepository(pool)))

	jobsInspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := jobsInspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(jobsInspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		ProductsHandler:    productsHandler,
		BranchesHandler:    branchesHandler,
		WarehousesHandler:  warehousesHandler,
		InventoryHandler:   inventoryHandler,
		SalesHandler:       salesHandler,
		ProcurementHandler: procurementHandler,
		ReportsHandler:     reportsHandler,
		UsersHandler:       usersHandler,
		JobsHandler:        jobsHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
