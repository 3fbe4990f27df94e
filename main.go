package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/food-listing-dashboard/config"
	"github.com/yeremiapane/food-listing-dashboard/database"
	"github.com/yeremiapane/food-listing-dashboard/realtime"
	"github.com/yeremiapane/food-listing-dashboard/router"
	"github.com/yeremiapane/food-listing-dashboard/services"
	"github.com/yeremiapane/food-listing-dashboard/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}

	utils.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if cfg.GinMode == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store := database.NewStore(cfg.Database)
	defer store.Close()

	// the dashboard still starts when the database is down; every request
	// retries the connection
	if err := store.Ping(ctx); err != nil {
		utils.ErrorLogger.Errorf("Database not reachable yet: %v", err)
	}

	archive, err := services.NewS3ReportArchive(ctx, cfg.Export)
	if err != nil {
		utils.ErrorLogger.Errorf("Report archive disabled: %v", err)
		archive = nil
	}

	var tokens *utils.TokenManager
	if cfg.Auth.Enabled() {
		tokens = utils.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	} else {
		utils.InfoLogger.Warn("JWT_SECRET is not set, operator routes are open")
	}

	hub := realtime.NewHub()
	monitor := services.NewChangeMonitor(store, hub, cfg.ChangePollInterval)
	monitor.Start(ctx)
	defer monitor.Stop()

	r := router.SetupRouter(router.Dependencies{
		Config:   cfg,
		Store:    store,
		Hub:      hub,
		Notifier: monitor,
		Archive:  archive,
		Tokens:   tokens,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.ErrorLogger.Errorf("Shutdown: %v", err)
	}
}
