package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/mrskaggs/forkful/backend/internal/chat"
	"github.com/mrskaggs/forkful/backend/internal/identity"
	"github.com/mrskaggs/forkful/backend/internal/router"
	"github.com/mrskaggs/forkful/backend/pkg/config"
	"github.com/mrskaggs/forkful/backend/pkg/logging"
	"github.com/mrskaggs/forkful/backend/validators"
)

func main() {
	// Load configuration
	cfg := config.Load()

	logger, err := logging.NewLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database connection
	db, err := config.InitDB(cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.CloseDB()

	// Identity provider for REST and socket handshakes
	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET environment variable not set")
	}
	provider := identity.NewJWTProvider(cfg.JWTSecret)

	// Broadcast bus: in-process by default, Redis-backed when scaling out
	var bus chat.Bus = chat.NewLocalBus()
	if cfg.RedisAddr != "" {
		redisClient, err := config.InitRedis(cfg.RedisAddr)
		if err != nil {
			log.Fatalf("Failed to initialize Redis: %v", err)
		}
		bus = chat.NewRedisBus(redisClient, logger)
	}
	defer bus.Close()

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	router.SetupRoutes(e, db.Postgres, bus, provider, logger)

	// Validator
	e.Validator = validators.NewValidator()

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: e,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Server listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
