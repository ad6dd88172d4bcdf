// Package main provides the API server entry point for the job earnings dashboard.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/captcha-dashboard/internal/adapter"
	"github.com/captcha-dashboard/internal/api"
	"github.com/captcha-dashboard/internal/config"
	"github.com/captcha-dashboard/internal/logging"
	"github.com/captcha-dashboard/internal/service"
	"github.com/captcha-dashboard/internal/storage"
)

func main() {
	fmt.Println("Job Dashboard API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Record store. Settings move to Redis when one is configured.
	var storeOpts []storage.Option
	if cfg.Redis.Enabled() {
		redis, err := storage.NewRedisCache(&cfg.Redis)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}
		defer redis.Close()

		storeOpts = append(storeOpts, storage.WithSettingsStore(storage.NewRedisSettingsStore(redis.Client(), cfg.Redis.KeyPrefix)))
		logger.WithField("prefix", cfg.Redis.KeyPrefix).Info("Settings stored in Redis")
	}
	if cfg.Store.SeedDemoData {
		storeOpts = append(storeOpts, storage.WithDemoData())
		logger.Info("Seeding demo data")
	}
	store := storage.NewStore(storeOpts...)

	// External capabilities are optional; a missing one disables its routes
	var breakers []adapter.BreakerReporter
	var completion adapter.CompletionClient
	if c := adapter.NewOpenAIClient(&cfg.Completion); c != nil {
		completion = c
		breakers = append(breakers, c)
		logger.WithField("model", cfg.Completion.Model).Info("Completion client initialized")
	} else {
		logger.Warn("No completion API key configured - job processing disabled")
	}

	var payments adapter.PaymentProvider
	if p := adapter.NewPayPalClient(&cfg.PayPal); p != nil {
		payments = p
		breakers = append(breakers, p)
		logger.WithField("environment", cfg.PayPal.Environment).Info("PayPal client initialized")
	} else {
		logger.Info("PayPal credentials not configured - checkout routes disabled")
	}

	// Initialize services
	logger.Info("Initializing services...")
	activity := service.NewActivityService(store)
	services := &api.Services{
		Stats:        service.NewStatsService(store),
		Jobs:         service.NewJobService(store, activity, completion),
		Platforms:    service.NewPlatformService(store, activity),
		Transactions: service.NewTransactionService(store),
		Withdrawals:  service.NewWithdrawalService(store, activity),
		Activity:     activity,
		Settings:     service.NewSettingsService(store, activity),
		Users:        service.NewUserService(store),
		Payments:     payments,
		Breakers:     breakers,
	}
	logger.Info("Services initialized")

	serverConfig := &api.ServerConfig{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		Burst:             cfg.RateLimit.Burst,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
	}

	server := api.NewServer(serverConfig, services)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
