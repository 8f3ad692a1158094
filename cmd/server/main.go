package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/coldroom/internal/config"
	"github.com/mamadbah2/coldroom/internal/repository"
	"github.com/mamadbah2/coldroom/internal/repository/memory"
	"github.com/mamadbah2/coldroom/internal/repository/mongodb"
	"github.com/mamadbah2/coldroom/internal/repository/sheets"
	"github.com/mamadbah2/coldroom/internal/repository/sqlite"
	"github.com/mamadbah2/coldroom/internal/scheduler"
	"github.com/mamadbah2/coldroom/internal/server/handlers"
	"github.com/mamadbah2/coldroom/internal/server/router"
	auditsvc "github.com/mamadbah2/coldroom/internal/service/audit"
	"github.com/mamadbah2/coldroom/internal/service/environment"
	"github.com/mamadbah2/coldroom/internal/service/monitoring"
	reportingsvc "github.com/mamadbah2/coldroom/internal/service/reporting"
	"github.com/mamadbah2/coldroom/internal/service/sensor"
	"github.com/mamadbah2/coldroom/internal/service/session"
	whatsappsvc "github.com/mamadbah2/coldroom/internal/service/whatsapp"
	"github.com/mamadbah2/coldroom/pkg/clients/openmeteo"
	whatsappclient "github.com/mamadbah2/coldroom/pkg/clients/whatsapp"
	"github.com/mamadbah2/coldroom/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg, baseLogger)
	if err != nil {
		baseLogger.Fatal("failed to init store", zap.String("type", cfg.Storage.Type), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			baseLogger.Error("failed to close store", zap.Error(err))
		}
	}()

	var mirror auditsvc.Mirror
	if cfg.Sheets.Enabled() {
		sheetsMirror, err := sheets.NewAuditMirror(ctx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets audit mirror", zap.Error(err))
		}
		mirror = sheetsMirror
	} else {
		baseLogger.Info("google sheets audit mirror disabled")
	}
	recorder := auditsvc.NewRecorder(store, mirror, baseLogger.Named("svc.audit"))

	seed := time.Now().UnixNano()

	var provider environment.Provider
	switch cfg.Weather.Provider {
	case config.WeatherOpenMeteo:
		provider = environment.NewOpenMeteoProvider(openmeteo.NewClient(cfg.Weather.BaseURL),
			cfg.Weather.Location, cfg.Weather.Latitude, cfg.Weather.Longitude)
	default:
		provider = environment.NewSimulatedProvider(cfg.Weather.Location, rand.New(rand.NewSource(seed)))
	}
	feed := environment.NewFeed(provider, baseLogger.Named("svc.environment"))

	simulator := sensor.NewSimulator(store,
		sensor.NewDriftProducer(rand.New(rand.NewSource(seed+1)), cfg.Sensor.TempJitter, cfg.Sensor.HumidityJitter),
		baseLogger.Named("svc.sensor"))

	monitoringSvc := monitoring.NewService(store, feed, recorder, monitoring.Options{
		Thresholds:    cfg.Rules.Thresholds(),
		HistoryWindow: cfg.History.Window,
		Sampler:       simulator,
	}, baseLogger.Named("svc.monitoring"))
	if err := monitoringSvc.Seed(ctx); err != nil {
		baseLogger.Fatal("failed to seed defaults", zap.Error(err))
	}

	reportingSvc := reportingsvc.NewService(store, store, monitoringSvc, cfg.History.Window, baseLogger.Named("svc.reporting"))

	var (
		notifier       scheduler.Notifier
		webhookHandler *handlers.WebhookHandler
	)
	if cfg.WhatsApp.Enabled() {
		whatsClient := whatsappclient.NewClient(cfg.WhatsApp)
		messagingSvc := whatsappsvc.NewMetaWhatsAppService(cfg.WhatsApp, whatsClient, monitoringSvc, reportingSvc, baseLogger.Named("svc.whatsapp"))
		notifier = messagingSvc
		webhookHandler = handlers.NewWebhookHandler(messagingSvc, baseLogger.Named("handlers.whatsapp"))
	} else {
		baseLogger.Warn("whatsapp credentials missing, messaging disabled")
	}

	monitoringHandler := handlers.NewMonitoringHandler(monitoringSvc, session.NewManager(), baseLogger.Named("handlers.monitoring"))
	engine := router.New(monitoringHandler, webhookHandler, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(*cfg, simulator, feed, monitoringSvc, reportingSvc, notifier, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

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

func openStore(ctx context.Context, cfg *config.Config, base *zap.Logger) (repository.Store, error) {
	switch cfg.Storage.Type {
	case config.StoreMemory:
		base.Warn("using in-memory store, data is lost on restart")
		return memory.NewStore(), nil
	case config.StoreSQLite:
		return sqlite.NewStore(cfg.Storage.SQLitePath, base.Named("repo.sqlite"))
	case config.StoreMongo:
		connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		return mongodb.NewStore(connectCtx, cfg.MongoDB.URI, cfg.MongoDB.DBName, base.Named("repo.mongodb"))
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Storage.Type)
	}
}
