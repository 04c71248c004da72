package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/barnmonitor/internal/config"
	"github.com/mamadbah2/barnmonitor/internal/repository/mongodb"
	"github.com/mamadbah2/barnmonitor/internal/repository/sheets"
	"github.com/mamadbah2/barnmonitor/internal/scheduler"
	"github.com/mamadbah2/barnmonitor/internal/server/handlers"
	"github.com/mamadbah2/barnmonitor/internal/server/router"
	authsvc "github.com/mamadbah2/barnmonitor/internal/service/auth"
	exportsvc "github.com/mamadbah2/barnmonitor/internal/service/export"
	"github.com/mamadbah2/barnmonitor/internal/service/guard"
	"github.com/mamadbah2/barnmonitor/internal/service/records"
	reportingsvc "github.com/mamadbah2/barnmonitor/internal/service/reporting"
	whatsappsvc "github.com/mamadbah2/barnmonitor/internal/service/whatsapp"
	"github.com/mamadbah2/barnmonitor/internal/session"
	"github.com/mamadbah2/barnmonitor/pkg/clients/barnapi"
	"github.com/mamadbah2/barnmonitor/pkg/clients/openmeteo"
	whatsappclient "github.com/mamadbah2/barnmonitor/pkg/clients/whatsapp"
	"github.com/mamadbah2/barnmonitor/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store := session.NewFileStore(cfg.Session.FilePath, logger.Named(baseLogger, "session"))
	apiClient := barnapi.NewClient(cfg.API, session.TokenOf(store), logger.Named(baseLogger, "client.barnapi"))
	recordSet := records.NewSet(barnapi.NewCollections(apiClient), store, logger.Named(baseLogger, "svc.records"))
	gateway := authsvc.NewGateway(apiClient, store, logger.Named(baseLogger, "svc.auth"))

	restoreCtx, cancelRestore := context.WithTimeout(context.Background(), 2*cfg.API.Timeout)
	if restored, err := gateway.RestoreSession(restoreCtx); err != nil {
		baseLogger.Warn("session restore failed, keeping stored session", zap.Error(err))
	} else if restored != nil {
		baseLogger.Info("session restored", zap.Int("farmer_id", restored.UserID()))
		if err := recordSet.LoadAll(restoreCtx); err != nil {
			baseLogger.Warn("record prefetch failed", zap.Error(err))
		}
	}
	cancelRestore()

	reportingSvc := reportingsvc.NewService(
		store,
		openmeteo.NewClient(cfg.Weather),
		apiClient,
		recordSet.Sales,
		recordSet.Productions,
		logger.Named(baseLogger, "svc.reporting"),
	)

	deps := scheduler.Deps{Reporter: reportingSvc, Sessions: gateway, Store: store}

	var snapshots mongodb.Repository
	if cfg.MongoDB.Enabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		snapshots = mongoRepo
		deps.Snapshots = mongoRepo
	} else {
		baseLogger.Warn("mongodb uri missing, dashboard history disabled")
	}

	var exporter handlers.Exporter
	if cfg.Sheets.Enabled() {
		sheetsRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, logger.Named(baseLogger, "repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		exporter = exportsvc.NewService(sheetsRepo, recordSet.Sales, recordSet.Productions, logger.Named(baseLogger, "svc.export"))
	} else {
		baseLogger.Warn("google sheets credentials missing, export disabled")
	}

	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		deps.Messaging = whatsappsvc.NewMetaWhatsAppService(whatsClient, logger.Named(baseLogger, "svc.whatsapp"))
	}

	sched, err := scheduler.NewScheduler(cfg.Reporting, deps, logger.Named(baseLogger, "scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	routeLogger := logger.Named(baseLogger, "handlers")
	engine := router.New(router.Handlers{
		Auth:      handlers.NewAuthHandler(gateway, logger.Named(routeLogger, "auth")),
		Dashboard: handlers.NewDashboardHandler(store, reportingSvc, apiClient, snapshots, exporter, logger.Named(routeLogger, "dashboard")),
		Records:   handlers.NewRecordsHandlers(recordSet.Controllers(), logger.Named(routeLogger, "records")),
	}, guard.New(store), logger.Named(baseLogger, "router"))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 2 * cfg.API.Timeout,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
