package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/williamwmy/fantastic-task/internal/database"
	"github.com/williamwmy/fantastic-task/internal/logging"
	"github.com/williamwmy/fantastic-task/internal/server"
)

func main() {
	logger := logging.Setup(os.Getenv("FANTASTIC_TASK_LOG_LEVEL"))

	port := os.Getenv("FANTASTIC_TASK_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("FANTASTIC_TASK_DB_PATH")
	if dbPath == "" {
		dbPath = "fantastic-task.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "path", dbPath, "error", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := server.Config{
		VAPIDPublicKey:  os.Getenv("FANTASTIC_TASK_VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: os.Getenv("FANTASTIC_TASK_VAPID_PRIVATE_KEY"),
		PushSubscriber:  os.Getenv("FANTASTIC_TASK_PUSH_SUBSCRIBER"),
	}
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		logger.Info("VAPID keys not configured, push notifications disabled")
	}

	srv := server.New(db, cfg, logger)

	// Periodic cleanup of expired sessions and stale rate-limit buckets.
	cleanupDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Warn("session cleanup", "error", err)
				} else if n > 0 {
					logger.Info("expired sessions removed", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupDone:
				return
			}
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupDone)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
