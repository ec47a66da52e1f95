package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"resumebot-ai/config"
	"resumebot-ai/internal/apis/routes"
	"resumebot-ai/internal/di"
	"resumebot-ai/internal/logger"
	"resumebot-ai/internal/middleware"
	"resumebot-ai/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load environment variables
	if err := config.LoadEnv(); err != nil {
		stdlog.Fatalf("Failed to load environment variables: %v", err)
	}

	appLogger, err := logger.New(config.Env.LogLevel, config.Env.LogFormat)
	if err != nil {
		stdlog.Fatalf("Failed to initialize logger: %v", err)
	}

	if strings.EqualFold(config.Env.Environment, "PRODUCTION") {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize dependencies
	di.Initialize()

	// Setup Gin
	ginApp := gin.New() // Use gin.New() instead of gin.Default()

	ginApp.Use(middleware.RequestID())
	ginApp.Use(middleware.CustomRecoveryMiddleware())
	ginApp.Use(middleware.LoggingMiddleware(appLogger))
	ginApp.Use(middleware.MetricsMiddleware())

	// CORS
	ginApp.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.Env.CorsAllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "User-Agent", "Referer", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: config.Env.CorsAllowedOrigin != "*",
		MaxAge:           12 * time.Hour,
	}))

	// Setup routes
	routes.SetupDefaultRoutes(ginApp)

	// Create server
	srv := &http.Server{
		Addr:    ":" + config.Env.Port,
		Handler: ginApp,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", config.Env.Port).Str("environment", config.Env.Environment).
			Str("llm_client", config.Env.DefaultLLMClient).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), config.Env.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if err := closeDatabase(); err != nil {
		log.Error().Err(err).Msg("Failed to close database")
	}

	log.Info().Msg("Server has been shut down")
}

func closeDatabase() error {
	db, err := di.GetDatabase()
	if err != nil {
		return fmt.Errorf("resolve database: %w", err)
	}
	return database.Close(db)
}
