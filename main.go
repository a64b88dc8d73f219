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

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tutoring_backend/config"
	"tutoring_backend/db"
	"tutoring_backend/logger"
	"tutoring_backend/middleware"
	"tutoring_backend/routes"
	"tutoring_backend/store"
	"tutoring_backend/upload"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	appLogger := logger.New(cfg.LogLevel, cfg.LogPath)
	defer appLogger.Sync()

	ctx := context.Background()

	st, err := openStore(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Error opening store", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer st.Close(context.Background())

	var app store.Store = st
	if rdb := db.ConnectRedis(ctx, cfg.RedisAddr, appLogger); rdb != nil {
		defer rdb.Close()
		app = store.NewCached(st, rdb, cfg.CacheTTL, appLogger)
	}

	sink, err := upload.NewDiskSink(cfg.UploadDir)
	if err != nil {
		appLogger.Fatal("Error preparing upload directory", zap.Error(err))
	}

	// Initialize router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	metrics := middleware.NewMetrics()
	r.Use(middleware.RequestLogger(appLogger), middleware.Recovery(appLogger), metrics.Middleware())

	// Setup CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Length",
		"Content-Type",
		"Authorization",
	}
	corsConfig.AllowMethods = []string{
		"GET",
		"POST",
		"PUT",
		"DELETE",
		"PATCH",
	}
	r.Use(cors.New(corsConfig))

	// Setup routes
	routes.SetupRoutes(r, app, sink, metrics, appLogger)

	// Run server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: r,
	}

	go func() {
		appLogger.Info("Server listening", zap.Int("port", cfg.ServerPort), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("listen", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
}

// openStore connects the backend selected by STORE_DRIVER.
func openStore(ctx context.Context, cfg *config.Config, appLogger *zap.Logger) (store.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		database, err := db.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase, appLogger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureIndexes(ctx, database); err != nil {
			_ = database.Client().Disconnect(ctx)
			return nil, err
		}
		return store.NewMongo(database), nil

	case config.DriverPostgres:
		database, err := db.Initialize(ctx, db.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
		}, appLogger)
		if err != nil {
			return nil, err
		}
		if err := db.InitSchema(ctx, database); err != nil {
			database.Close()
			return nil, err
		}
		return store.NewPostgres(database), nil

	case config.DriverMemory:
		appLogger.Warn("Using the in-memory store, data is lost on restart")
		return store.NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}
