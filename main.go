package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wrenbin/wrenbin/config"
	"github.com/wrenbin/wrenbin/handlers"
	"github.com/wrenbin/wrenbin/internal/keygen"
	"github.com/wrenbin/wrenbin/internal/services"
	"github.com/wrenbin/wrenbin/storage"
)

// Version/build info (set via -ldflags at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	ginLambda     *ginadapter.GinLambdaV2
	ginLambdaOnce sync.Once
)

// isLambdaEnvironment detects if running in AWS Lambda
func isLambdaEnvironment() bool {
	return os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != ""
}

func main() {
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting wrenbin", "version", Version, "build_time", BuildTime)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}

	service := services.NewPasteService(store, keygen.New(cfg.KeyLength))
	router := setupRouter(service, cfg, logger)

	if isLambdaEnvironment() {
		logger.Info("starting in AWS Lambda mode")
		ginLambdaOnce.Do(func() {
			ginLambda = ginadapter.NewV2(router)
		})
		lambda.Start(func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
			return ginLambda.ProxyWithContext(ctx, req)
		})
		return
	}

	runHTTPServer(router, service, store, cfg, logger)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// setupRouter creates and configures the Gin router
func setupRouter(service *services.PasteService, cfg *config.Config, logger *slog.Logger) *gin.Engine {
	pasteHandler := handlers.NewPasteHandler(service, cfg, logger)
	systemHandler := handlers.NewSystemHandler()

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	api := router.Group("/api/v1")
	{
		api.POST("/pastes", pasteHandler.Create)
		api.GET("/pastes/:key", pasteHandler.View)
		api.GET("/pastes/:key/raw", pasteHandler.Raw)
		api.GET("/pastes/:key/download", pasteHandler.Download)
	}

	router.GET("/health", systemHandler.Health)
	if cfg.EnableMetrics {
		router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})
	})

	return router
}

// runJanitor periodically reclaims expired pastes. Correctness never
// depends on it (every read re-checks expiry); it only bounds memory
// growth from abandoned pastes.
func runJanitor(ctx context.Context, service *services.PasteService, interval time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := service.PurgeExpired()
			if err != nil {
				logger.Error("purge pass failed", "error", err)
				continue
			}
			if purged > 0 {
				logger.Info("purged expired pastes", "count", purged)
			}
		}
	}
}

// runHTTPServer starts the HTTP server for container mode
func runHTTPServer(router *gin.Engine, service *services.PasteService, store storage.PasteStore, cfg *config.Config, logger *slog.Logger) {
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("error closing storage", "error", err)
		}
	}()

	janitorCtx, stopJanitor := context.WithCancel(context.Background())
	defer stopJanitor()
	if cfg.PurgeInterval > 0 {
		go runJanitor(janitorCtx, service, cfg.PurgeInterval, logger)
	}

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		logger.Info("listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	} else {
		logger.Info("shutdown complete")
	}
}
