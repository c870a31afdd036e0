package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/raushankrgupta/club-feedback/api"
	"github.com/raushankrgupta/club-feedback/config"
	"github.com/raushankrgupta/club-feedback/logger"
	"github.com/raushankrgupta/club-feedback/sheets"
	"github.com/raushankrgupta/club-feedback/store"
	"github.com/raushankrgupta/club-feedback/utils"
)

func main() {
	logger.InitLogger()

	if err := run(); err != nil {
		logger.GetLogger().Errorw("Server exited", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
	_ = logger.Close()
}

// run returns instead of exiting so the store and logger are always closed.
func run() error {
	log := logger.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feedbackStore, err := store.Connect(ctx, cfg.MongoURI, cfg.DBName, cfg.CollectionName)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := feedbackStore.Close(closeCtx); err != nil {
			log.Warnw("Failed to disconnect MongoDB", "error", err)
		}
	}()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	if err := feedbackStore.Ping(pingCtx); err != nil {
		log.Errorw("MongoDB connection failed", "error", err)
	} else {
		log.Infow("MongoDB connection verified", "database", cfg.DBName, "collection", cfg.CollectionName)
	}
	cancelPing()

	var syncer api.SheetSyncer = sheets.Disabled{}
	if cfg.SheetsEnabled() {
		s, err := sheets.NewSyncer(ctx, cfg.GoogleClientEmail, cfg.GooglePrivateKey, cfg.GoogleSheetID, cfg.SheetTimeZone)
		if err != nil {
			return fmt.Errorf("failed to initialize sheet sync: %w", err)
		}
		syncer = s
		log.Infow("Sheet sync enabled", "service_account", logger.MaskSensitiveString(cfg.GoogleClientEmail, 3, 12))
	} else {
		log.Warnw("Sheet sync disabled: GOOGLE_CLIENT_EMAIL, GOOGLE_PRIVATE_KEY or GOOGLE_SHEET_ID missing")
	}

	var alerter api.SyncAlerter
	if cfg.AlertsEnabled() {
		alerter = utils.NewAlertMailer(cfg.SendGridAPIKey, cfg.AlertFromEmail, cfg.AlertEmail)
	}

	server := api.NewServer(feedbackStore, syncer, alerter, cfg.JWTSecret)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, httpServer, 10*time.Second)
}

// serve runs httpServer until ctx is cancelled or the listener fails.
// A listener error is returned rather than exiting so deferred cleanup still runs.
func serve(ctx context.Context, httpServer *http.Server, shutdownTimeout time.Duration) error {
	log := logger.GetLogger()

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("Server starting", "addr", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Infow("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
