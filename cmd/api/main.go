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

	"github.com/Dan9191/daily-learning/internal/config"
	"github.com/Dan9191/daily-learning/internal/handler"
	"github.com/Dan9191/daily-learning/internal/repository"
	"github.com/Dan9191/daily-learning/internal/scheduler"
	"github.com/Dan9191/daily-learning/internal/service"
	"github.com/Dan9191/daily-learning/internal/utils/email"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	// Load configuration
	cfg, err := config.NewConfig()
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}
	logLevel, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize store
	openCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	store, err := repository.Open(openCtx, cfg, logger)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to open store: %v", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			logger.Errorf("Failed to close store: %v", err)
		}
	}()

	// Initialize layers
	var opts []service.Option
	if cfg.MailEnabled() {
		opts = append(opts, service.WithMailer(email.NewSender(cfg, logger)))
	}
	svc := service.NewService(store, logger, cfg, opts...)
	h := handler.NewHandler(svc, logger)
	r := handler.NewRouter(h, cfg, logger)

	// Background jobs
	sched := scheduler.New(cfg.Location, logger)
	if cfg.ReconcileSchedule != "" {
		if err := sched.ScheduleReconcile(cfg.ReconcileSchedule, svc); err != nil {
			logger.Fatalf("Failed to schedule reconciliation: %v", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		logger.Infof("Starting server on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("Server shutdown failed: %v", err)
	}
}
