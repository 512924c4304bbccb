package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/notehub/notehub-api/api/swagger"
	"github.com/notehub/notehub-api/internal/handler"
	"github.com/notehub/notehub-api/internal/middleware"
	"github.com/notehub/notehub-api/internal/repository"
	"github.com/notehub/notehub-api/internal/service"
	"github.com/notehub/notehub-api/pkg/cache"
	"github.com/notehub/notehub-api/pkg/config"
	"github.com/notehub/notehub-api/pkg/database"
	"github.com/notehub/notehub-api/pkg/logger"
	corsmiddleware "github.com/notehub/notehub-api/pkg/middleware/cors"
	reqidmiddleware "github.com/notehub/notehub-api/pkg/middleware/requestid"
	"github.com/notehub/notehub-api/pkg/storage"
)

// @title NoteHub API
// @version 1.0.0
// @description Academic resource sharing backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis is optional; resolution falls through to the database when
	// the cache is unreachable.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, identity cache disabled", "error", err)
		redisClient = nil
	}

	var blobs storage.BlobStore
	switch cfg.Storage.Backend {
	case config.StorageBackendMinio:
		blobs, err = storage.NewMinioBlobStore(ctx, cfg.Storage.Minio)
	default:
		blobs, err = storage.NewLocalBlobStore(cfg.Storage.LocalDir)
	}
	if err != nil {
		logr.Sugar().Fatalw("failed to init blob store", "backend", cfg.Storage.Backend, "error", err)
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Identity.CacheTTL, logr, redisClient != nil)

	profileRepo := repository.NewProfileRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	identitySvc := service.NewIdentityService(profileRepo, cacheSvc, logr)
	authSvc := service.NewAuthService(service.AuthConfig{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		Audience: cfg.JWT.Audience,
	}, logr)

	janitor := service.NewBlobJanitor(blobs, logr)
	janitor.Start(ctx)
	defer janitor.Stop()

	profileSvc := service.NewProfileService(profileRepo, identitySvc, validate, logr, service.ProfileServiceConfig{
		MaxAvatarSize: cfg.Storage.MaxAvatarSize,
	})
	resourceSvc := service.NewResourceService(resourceRepo, blobs, profileRepo, identitySvc, metricsSvc, validate, logr, service.ResourceServiceConfig{
		MaxFileSize:  cfg.Storage.MaxFileSize,
		AllowedMIMEs: cfg.Storage.AllowedMIMEs,
	}).WithJanitor(janitor)
	reviewSvc := service.NewReviewService(reviewRepo, resourceRepo, profileRepo, validate, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportSvc = service.NewExportService(logr)
	}

	profileHandler := handler.NewProfileHandler(profileSvc)
	var resourceHandler *handler.ResourceHandler
	if exportSvc != nil {
		resourceHandler = handler.NewResourceHandler(resourceSvc, exportSvc)
	} else {
		resourceHandler = handler.NewResourceHandler(resourceSvc, nil)
	}
	reviewHandler := handler.NewReviewHandler(reviewSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	if cfg.Metrics.Enabled {
		r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))
	}

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(authSvc))
	{
		api.POST("/profile", profileHandler.Create)
		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", profileHandler.Update)
		api.DELETE("/profile", profileHandler.Delete)

		api.POST("/resources", resourceHandler.Upload)
		api.GET("/resources/mine", resourceHandler.Mine)
		api.GET("/resources/mine/export", resourceHandler.ExportMine)
		api.GET("/resources/browse", resourceHandler.Browse)
		api.GET("/resources/:id", resourceHandler.Get)
		api.PUT("/resources/:id", resourceHandler.Update)
		api.DELETE("/resources/:id", resourceHandler.Delete)
		api.GET("/resources/:id/download", resourceHandler.Download)
		api.GET("/resources/:id/view", resourceHandler.View)

		api.POST("/resources/:id/reviews", reviewHandler.Submit)
		api.GET("/resources/:id/reviews", reviewHandler.List)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}

	if redisClient != nil {
		_ = redisClient.Close()
	}
}
