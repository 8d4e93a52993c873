package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Carlosdescammer/Familytasklist-sub002/internal/auth"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/database"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/email"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/logging"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/push"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/server"
	"github.com/Carlosdescammer/Familytasklist-sub002/internal/weather"
)

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	logger := logging.Setup(os.Getenv("FAMILYHUB_LOG_LEVEL"), os.Getenv("FAMILYHUB_LOG_FORMAT") == "json")

	port := env("FAMILYHUB_PORT", "8080")
	dbPath := env("FAMILYHUB_DB_PATH", "familyhub.db")
	baseURL := env("FAMILYHUB_BASE_URL", "http://localhost:"+port)

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(
		os.Getenv("FAMILYHUB_POSTMARK_TOKEN"),
		os.Getenv("FAMILYHUB_FROM_EMAIL"),
		baseURL,
	)
	if !emailClient.Configured() {
		logger.Warn("email is not configured, sign-in links will not be delivered")
	}

	var tokens *auth.TokenIssuer
	if secret := os.Getenv("FAMILYHUB_TOKEN_SECRET"); secret != "" {
		tokens = auth.NewTokenIssuer(secret, time.Hour)
	}

	vapidPublic := os.Getenv("FAMILYHUB_VAPID_PUBLIC_KEY")
	vapidPrivate := os.Getenv("FAMILYHUB_VAPID_PRIVATE_KEY")
	if vapidPublic == "" || vapidPrivate == "" {
		// Ephemeral keys keep push working in development. Existing browser
		// subscriptions break on restart, so set real keys in production.
		pub, priv, err := push.GenerateVAPIDKeys()
		if err != nil {
			logger.Warn("generate VAPID keys", "error", err)
		} else {
			vapidPublic, vapidPrivate = pub, priv
			logger.Info("generated ephemeral VAPID keys; set FAMILYHUB_VAPID_PUBLIC_KEY and FAMILYHUB_VAPID_PRIVATE_KEY to persist them")
		}
	}

	srv := server.New(db, server.Config{
		Email:           emailClient,
		Tokens:          tokens,
		VAPIDPublicKey:  vapidPublic,
		VAPIDPrivateKey: vapidPrivate,
		PushSubscriber:  os.Getenv("FAMILYHUB_PUSH_SUBSCRIBER"),
		Weather: weather.Config{
			Latitude:        os.Getenv("FAMILYHUB_WEATHER_LAT"),
			Longitude:       os.Getenv("FAMILYHUB_WEATHER_LON"),
			TemperatureUnit: env("FAMILYHUB_WEATHER_UNIT", "fahrenheit"),
		},
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if sched := srv.PushScheduler(); sched != nil {
		sched.Start(ctx)
		defer sched.Stop()
	}
	srv.RateLimiter().StartCleanup(ctx, 5*time.Minute)
	go cleanupLoop(ctx, srv, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("familyhub listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

// cleanupLoop prunes expired sessions and magic links hourly.
func cleanupLoop(ctx context.Context, srv *server.Server, logger *slog.Logger) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := srv.SessionStore().DeleteExpired(); err != nil {
				logger.Error("session cleanup", "error", err)
			} else if n > 0 {
				logger.Info("pruned expired sessions", "count", n)
			}
			if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
				logger.Error("magic link cleanup", "error", err)
			} else if n > 0 {
				logger.Info("pruned expired magic links", "count", n)
			}
		}
	}
}
