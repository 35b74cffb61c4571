package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"arcade/backend/internal/accounts"
	"arcade/backend/internal/archive"
	"arcade/backend/internal/challenge"
	"arcade/backend/internal/config"
	"arcade/backend/internal/database"
	"arcade/backend/internal/handler"
	"arcade/backend/internal/hub"
	"arcade/backend/internal/logging"
	"arcade/backend/internal/match"
	"arcade/backend/internal/store"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Arcade API
// @version         1.0
// @description     Turn-based multiplayer matches for the arcade hub.
// @host            localhost:8080
// @BasePath        /api/v1
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	var (
		backend store.Backend
		repo    accounts.Repository
	)
	switch cfg.DatabaseDriver {
	case config.DriverMemory:
		backend = store.NewMemoryBackend()
		repo = accounts.NewMemoryRepository()
	default:
		db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		backend = store.NewGormBackend(db)
		repo = accounts.NewGormRepository(db)
	}

	kv := store.New(backend, hub.NewHub(),
		store.WithLogger(logger.Named("store")),
		store.WithMaxRetries(cfg.StoreMaxRetries))

	// Only a shared database can be written by another process.
	if cfg.StorePollInterval > 0 && cfg.DatabaseDriver != config.DriverMemory {
		poller, err := store.StartPoller(ctx, kv, cfg.StorePollInterval, logger.Named("poller"))
		if err != nil {
			return err
		}
		defer poller.Stop()
	}

	accountService := accounts.NewService(repo, logger.Named("accounts"))
	if cfg.SeedDemoUsers {
		if err := accountService.SeedDemoUsers(ctx); err != nil {
			return err
		}
	}

	var matchOpts []match.Option
	if cfg.ArchiveEnabled() {
		archiver, err := archive.NewS3(ctx, archive.Options{
			Bucket:          cfg.ArchiveBucket,
			Endpoint:        cfg.ArchiveEndpoint,
			Region:          cfg.ArchiveRegion,
			AccessKeyID:     cfg.ArchiveAccessKeyID,
			SecretAccessKey: cfg.ArchiveSecretAccessKey,
		})
		if err != nil {
			return err
		}
		matchOpts = append(matchOpts, match.WithArchiver(archiver))
		logger.Info("match archive enabled", zap.String("bucket", cfg.ArchiveBucket))
	}

	api := handler.New(handler.Deps{
		Accounts:   accountService,
		Challenges: challenge.NewService(kv, accountService, logger.Named("challenges")),
		Matches:    match.NewService(kv, logger.Named("matches"), matchOpts...),
		Store:      kv,
		JWTSecret:  cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		Logger:     logger.Named("http"),
	})

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api.RegisterRoutes(router.Group("/api/v1"))

	// Request contexts derive from ctx so that open event streams end on
	// shutdown. No write timeout: streams stay open.
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server is running",
			zap.String("addr", server.Addr),
			zap.String("driver", cfg.DatabaseDriver),
			zap.String("swagger", "/swagger/index.html"))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
