package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/courtmaster/courtledger-api/api/swagger"
	"github.com/courtmaster/courtledger-api/internal/handler"
	"github.com/courtmaster/courtledger-api/internal/middleware"
	"github.com/courtmaster/courtledger-api/internal/repository"
	"github.com/courtmaster/courtledger-api/internal/service"
	"github.com/courtmaster/courtledger-api/internal/store"
	"github.com/courtmaster/courtledger-api/pkg/cache"
	"github.com/courtmaster/courtledger-api/pkg/config"
	"github.com/courtmaster/courtledger-api/pkg/database"
	"github.com/courtmaster/courtledger-api/pkg/logger"
	corsmiddleware "github.com/courtmaster/courtledger-api/pkg/middleware/cors"
	reqidmiddleware "github.com/courtmaster/courtledger-api/pkg/middleware/requestid"
	"github.com/courtmaster/courtledger-api/pkg/storage"
)

// @title CourtLedger API
// @version 1.0.0
// @description Lesson credit and payment ledger for a tennis coaching roster
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	tableStore, readyCheck, err := buildStore(ctx, cfg, logr)
	if err != nil {
		logr.Sugar().Fatalw("failed to init ledger store", "error", err)
	}

	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	if cfg.Store.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, running without table cache", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
			tableStore = store.NewCached(tableStore, cacheRepo, cfg.Store.CacheTTL, metricsSvc, logr)
		}
	}

	validate := validator.New()

	rosterRepo := repository.NewRosterRepository(tableStore, logr)
	txnRepo := repository.NewTransactionRepository(tableStore, logr)
	activityRepo := repository.NewActivityRepository(tableStore, logr)
	scheduleRepo := repository.NewScheduleRepository(tableStore, logr)

	ledgerSvc := service.NewLedgerService(rosterRepo, txnRepo, activityRepo, validate, logr)
	financeSvc := service.NewFinanceService(txnRepo, validate, logr)
	activitySvc := service.NewActivityService(activityRepo, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, logr)
	authSvc := service.NewAuthService(cfg.Auth, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(rosterRepo, txnRepo, activityRepo, files, signer, service.ExportConfig{
			APIPrefix:  cfg.APIPrefix,
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	authHandler := handler.NewAuthHandler(authSvc)
	rosterHandler := handler.NewRosterHandler(ledgerSvc)
	attendanceHandler := handler.NewAttendanceHandler(ledgerSvc)
	financeHandler := handler.NewFinanceHandler(financeSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	activityHandler := handler.NewActivityHandler(activitySvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := readyCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready", "metrics": metricsSvc.Snapshot()})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)

	public := api.Group("")
	public.Use(middleware.OptionalJWT(authSvc))
	public.GET("/students", rosterHandler.List)
	public.GET("/students/:name", rosterHandler.Get)
	public.GET("/schedule", scheduleHandler.Get)

	coach := api.Group("")
	coach.Use(middleware.JWT(authSvc), middleware.RequireCoach())
	coach.POST("/students", rosterHandler.Register)
	coach.DELETE("/students/:name", rosterHandler.Delete)
	coach.PATCH("/students/:name", rosterHandler.Adjust)
	coach.PUT("/students/:name/frozen", rosterHandler.SetFrozen)
	coach.POST("/students/:name/consume", attendanceHandler.Consume)
	coach.POST("/students/:name/refund", attendanceHandler.Refund)
	coach.POST("/students/:name/packages", attendanceHandler.AddPackage)
	coach.POST("/students/:name/payments", attendanceHandler.RecordPayment)
	coach.GET("/finance/summary", financeHandler.Summary)
	coach.GET("/finance/transactions", financeHandler.Transactions)
	coach.POST("/finance/expenses", financeHandler.RecordExpense)
	coach.PUT("/schedule", scheduleHandler.Replace)
	coach.GET("/activity", activityHandler.List)

	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		coach.POST("/exports", exportHandler.Create)
		coach.GET("/exports/:id", exportHandler.Get)
		// the signed token is the capability, no bearer token needed
		api.GET("/exports/download/:token", exportHandler.Download)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "store_backend", cfg.Store.Backend)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}

// buildStore selects the table store backend and returns it with a
// readiness probe for /ready.
func buildStore(ctx context.Context, cfg *config.Config, logr *zap.Logger) (store.TableStore, func(context.Context) error, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		pg := store.NewPostgres(db)
		if err := pg.EnsureSchema(ctx); err != nil {
			return nil, nil, err
		}
		return pg, db.PingContext, nil
	case config.StoreBackendWorkbook:
		wb := store.NewWorkbook(cfg.Store.WorkbookPath)
		probe := func(context.Context) error { return nil }
		return wb, probe, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}
