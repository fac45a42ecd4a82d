package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"claim-annotator/internal/config"
	"claim-annotator/internal/flush"
	"claim-annotator/internal/handler"
	"claim-annotator/internal/repository"
	"claim-annotator/internal/sentences"
	"claim-annotator/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	// Initialize logger
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Starting Claim Annotator...")

	// Load configuration
	cfg, err := config.LoadConfig("configs/config.yml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal("JWT secret not configured. Set auth.jwt_secret in configs/config.yml or the ANNOTATOR_JWT_SECRET environment variable")
	}

	// Initialize repository
	os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)

	repo, err := repository.New(cfg.Database.Path, logger)
	if err != nil {
		logger.Fatal("Failed to initialize repository", zap.Error(err))
	}
	defer repo.Close()

	// Seed and load the allow list; it is cached for the process lifetime.
	if err := repo.SeedAllowedUsers(cfg.Auth.AllowedUsers); err != nil {
		logger.Fatal("Failed to seed allow list", zap.Error(err))
	}

	allowList, err := repo.LoadAllowList()
	if err != nil {
		logger.Fatal("Failed to load allow list", zap.Error(err))
	}
	if allowList.Len() == 0 {
		logger.Warn("Allow list is empty, nobody can log in")
	}

	// Load the sentence pool. Missing file means preprocessing never ran.
	source, err := sentences.Load(cfg.Sentences.Path, logger)
	if err != nil {
		logger.Fatal("Failed to load sentence pool", zap.Error(err))
	}

	// Background flush pipeline
	dispatcher := flush.NewDispatcher(repo, cfg.Annotation.FlushQueueSize, logger)

	// Session registry
	registry := session.NewRegistry(session.RegistryConfig{
		Gate:            allowList,
		Store:           repo,
		Pool:            source,
		Dispatcher:      dispatcher,
		TicketThreshold: cfg.Annotation.TicketThreshold,
		FlushThreshold:  cfg.Annotation.FlushThreshold,
		Logger:          logger,
	})

	// Initialize HTTP handler
	apiHandler := handler.NewHandler(
		registry,
		[]byte(cfg.Auth.JWTSecret),
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		logger,
	)

	// Setup Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.Default()

	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Register routes
	apiHandler.RegisterRoutes(router)

	// Start server
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Claim Annotator is running",
		zap.String("port", cfg.Server.Port),
		zap.Int("sentence_count", source.Len()))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	// Flush live session buffers, then drain the queue.
	registry.Shutdown()
	dispatcher.Close()

	logger.Info("Server exited")
}
