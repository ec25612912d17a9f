package main

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
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-hub-api/api/swagger"
	"github.com/noah-isme/campus-hub-api/internal/handler"
	"github.com/noah-isme/campus-hub-api/internal/repository"
	"github.com/noah-isme/campus-hub-api/internal/service"
	"github.com/noah-isme/campus-hub-api/pkg/cache"
	"github.com/noah-isme/campus-hub-api/pkg/config"
	"github.com/noah-isme/campus-hub-api/pkg/database"
	"github.com/noah-isme/campus-hub-api/pkg/jobs"
	"github.com/noah-isme/campus-hub-api/pkg/logger"
	"github.com/noah-isme/campus-hub-api/pkg/storage"
)

// @title Campus Hub API
// @version 1.0.0
// @description Campus community board: announcements, discussions, lost and found, attendance and lectures.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metricsSvc := service.NewMetricsService()
	checks := map[string]handler.ReadinessCheck{}

	var redisClient *redis.Client
	if cfg.Storage.Driver == config.StorageRedis || cfg.Dashboard.CacheEnabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		switch {
		case err == nil:
			redisClient = client
			defer redisClient.Close() //nolint:errcheck
			checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		case cfg.Storage.Driver == config.StorageRedis:
			return fmt.Errorf("connect redis: %w", err)
		default:
			logr.Warn("redis unavailable, dashboard cache disabled", zap.Error(err))
		}
	}

	store, closeStore, err := openStore(ctx, cfg, redisClient, checks, logr)
	if err != nil {
		return err
	}
	defer closeStore()

	handlers, sessionSvc, err := wire(ctx, cfg, store, redisClient, metricsSvc, checks, logr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           newRouter(cfg, logr, metricsSvc, sessionSvc, handlers),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logr.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}

// wire builds repositories, services and handlers over store.
func wire(ctx context.Context, cfg *config.Config, store repository.CollectionStore, redisClient *redis.Client, metricsSvc *service.MetricsService, checks map[string]handler.ReadinessCheck, logr *zap.Logger) (routeHandlers, *service.SessionService, error) {
	validate := validator.New()
	lock := service.NewBoardLock()
	boardRepo := repository.NewBoardRepository(store, cfg.Storage.KeyPrefix, metricsSvc)
	reportRepo := repository.NewReportRepository(store, cfg.Storage.KeyPrefix)
	cacheRepo := repository.NewCacheRepository(redisClient, cfg.Storage.KeyPrefix+"cache:", logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled && redisClient != nil)

	boardSvc := service.NewBoardService(boardRepo, lock, cacheSvc, metricsSvc, validate, service.BoardServiceConfig{AlertMatchMode: cfg.Alerts.MatchMode}, logr)
	attendanceSvc := service.NewAttendanceService(boardRepo, lock, cacheSvc, metricsSvc, validate, nil, logr)
	lectureSvc := service.NewLectureService(boardRepo, lock, cacheSvc, metricsSvc, validate, nil, logr)
	chatSvc := service.NewChatService(boardRepo, lock, cacheSvc, metricsSvc, nil, logr)
	dashboardSvc := service.NewDashboardService(boardRepo, lock, cacheSvc, service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL}, logr)
	sessionSvc := service.NewSessionService(boardRepo, validate, service.SessionServiceConfig{Secret: cfg.JWT.Secret, Issuer: cfg.JWT.Issuer}, logr)

	handlers := routeHandlers{
		board:      handler.NewBoardHandler(boardSvc),
		attendance: handler.NewAttendanceHandler(attendanceSvc),
		lectures:   handler.NewLectureHandler(lectureSvc),
		chat:       handler.NewChatHandler(chatSvc),
		dashboard:  handler.NewDashboardHandler(dashboardSvc),
		session:    handler.NewSessionHandler(sessionSvc),
		metrics:    handler.NewMetricsHandler(metricsSvc, checks),
	}
	if cfg.Reports.Enabled {
		reportSvc, err := startReports(ctx, cfg, boardRepo, reportRepo, metricsSvc, validate, checks, logr)
		if err != nil {
			return routeHandlers{}, nil, err
		}
		handlers.reports = handler.NewReportHandler(reportSvc)
	}
	return handlers, sessionSvc, nil
}

// openStore builds the collection store selected by STORAGE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, redisClient *redis.Client, checks map[string]handler.ReadinessCheck, logr *zap.Logger) (repository.CollectionStore, func(), error) {
	switch cfg.Storage.Driver {
	case config.StorageRedis:
		return repository.NewRedisStore(redisClient), func() {}, nil
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		store := repository.NewPostgresStore(db)
		if err := store.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		checks["postgres"] = pingDB(db)
		return store, func() { _ = db.Close() }, nil
	case config.StorageMemory, "":
		logr.Warn("using in-memory storage; data is lost on restart")
		return repository.NewMemoryStore(), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

func pingDB(db *sqlx.DB) handler.ReadinessCheck {
	return func(ctx context.Context) error { return db.PingContext(ctx) }
}

// startReports wires the export pipeline and starts its worker pool.
func startReports(ctx context.Context, cfg *config.Config, boardRepo *repository.BoardRepository, reportRepo *repository.ReportRepository, metricsSvc *service.MetricsService, validate *validator.Validate, checks map[string]handler.ReadinessCheck, logr *zap.Logger) (*service.ReportService, error) {
	files, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		return nil, err
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(boardRepo, files, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Reports.SignedURLTTL,
	}, logr, nil, nil)

	worker := service.NewReportWorker(reportRepo, exportSvc, metricsSvc, cfg.Reports.WorkerRetries, logr)
	queue := jobs.NewQueue("attendance-reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)
	checks["reports_queue"] = queue.Healthy
	go func() {
		<-ctx.Done()
		queue.Stop()
	}()

	reportSvc := service.NewReportService(reportRepo, queue, exportSvc, validate, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.RecoverPendingJobs(ctx)
	reportSvc.StartCleanup(ctx)
	return reportSvc, nil
}
