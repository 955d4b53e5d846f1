package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/dormi-app/dormi-api/api/swagger"
	"github.com/dormi-app/dormi-api/internal/escalation"
	"github.com/dormi-app/dormi-api/internal/handler"
	"github.com/dormi-app/dormi-api/internal/notify"
	"github.com/dormi-app/dormi-api/internal/repository"
	"github.com/dormi-app/dormi-api/internal/service"
	"github.com/dormi-app/dormi-api/pkg/cache"
	"github.com/dormi-app/dormi-api/pkg/config"
	"github.com/dormi-app/dormi-api/pkg/database"
	"github.com/dormi-app/dormi-api/pkg/export"
	"github.com/dormi-app/dormi-api/pkg/logger"
	"github.com/dormi-app/dormi-api/pkg/storage"
)

// @title Dormi API
// @version 1.0.0
// @description Dormitory management backend with automatic reprimand escalation
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, catalog caching disabled", "error", err)
		redisClient = nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reportRepo := repository.NewReportRepository(db)
	reprimandRepo := repository.NewReprimandRepository(db)
	worshipRepo := repository.NewWorshipRepository(db)
	cleanlinessRepo := repository.NewCleanlinessRepository(db)
	semesterRepo := repository.NewSemesterRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	dormRepo := repository.NewDormRepository(db)
	userRepo := repository.NewUserRepository(db)

	if err := reprimandRepo.EnsureSystemIssuer(ctx); err != nil {
		logr.Sugar().Fatalw("failed to ensure system issuer", "error", err)
	}

	notifier := notify.NewDispatcher(cfg.Notifier, userRepo, notify.NewHTTPPusher(cfg.Notifier), logr)
	notifier.Start(ctx)
	defer notifier.Stop()

	metrics := service.NewMetricsService()
	cacheSvc := service.NewCacheService(redisClient, cfg.Catalog.CacheTTL, logr)
	policy := escalation.NewPolicy(cfg.Escalation)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     "dormi-api",
	}, nil, logr)
	userSvc := service.NewUserService(userRepo, logr)
	reportSvc := service.NewReportService(reportRepo, policy, notifier, metrics, nil, logr)
	absenceSvc := service.NewAbsenceService(reportRepo, worshipRepo, policy, notifier, metrics, nil, logr)
	reprimandSvc := service.NewReprimandService(reprimandRepo, cacheSvc, cfg.Catalog.CacheTTL, export.NewPDFExporter(), notifier, metrics, nil, logr)
	worshipSvc := service.NewWorshipService(worshipRepo, cacheSvc, cfg.Catalog.CacheTTL, metrics, nil, logr)
	cleanlinessSvc := service.NewCleanlinessService(cleanlinessRepo, semesterRepo, cacheSvc, cfg.Catalog.CacheTTL, metrics, nil, logr)
	semesterSvc := service.NewSemesterService(semesterRepo, logr)
	studentSvc := service.NewStudentService(studentRepo, reportRepo, reprimandRepo, nil, logr)
	dormSvc := service.NewDormService(dormRepo, cacheSvc, cfg.Catalog.CacheTTL, metrics, logr)

	archive, err := storage.NewArchive(cfg.Archive.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init slip archive", "error", err)
	}
	signer := storage.NewLinkSigner(cfg.Archive.LinkSecret, cfg.Archive.LinkTTL)
	exportSvc := service.NewExportService(reprimandSvc, archive, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		Retention: cfg.Archive.Retention,
	}, logr)

	go func() {
		ticker := time.NewTicker(6 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := exportSvc.Cleanup(0); err != nil {
					logr.Sugar().Warnw("archive cleanup failed", "error", err)
				}
			}
		}
	}()

	svcs := handler.Services{
		Auth:        authSvc,
		Users:       userSvc,
		Reports:     reportSvc,
		Absences:    absenceSvc,
		Reprimands:  reprimandSvc,
		Worship:     worshipSvc,
		Cleanliness: cleanlinessSvc,
		Students:    studentSvc,
		Dorms:       dormSvc,
		Semesters:   semesterSvc,
		Metrics:     metrics,
	}
	handlers := handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc, userSvc),
		Users:       handler.NewUserHandler(userSvc),
		Reports:     handler.NewReportHandler(reportSvc, export.NewCSVExporter()),
		Reprimands:  handler.NewReprimandHandler(reprimandSvc),
		Attendance:  handler.NewAttendanceHandler(worshipSvc, absenceSvc),
		Cleanliness: handler.NewCleanlinessHandler(cleanlinessSvc),
		Students:    handler.NewStudentHandler(studentSvc),
		Dorms:       handler.NewDormHandler(dormSvc),
		Semesters:   handler.NewSemesterHandler(semesterSvc),
		Exports:     handler.NewExportHandler(exportSvc),
	}

	r := handler.NewRouter(cfg, svcs, logr, handlers)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
