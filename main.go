// nationportal/main.go
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"nationportal/config"
	"nationportal/database"
	"nationportal/handlers"
	"nationportal/metrics"
	"nationportal/models"
	"nationportal/session"
	"nationportal/utils"
)

type Application struct {
	sessions    *session.Manager
	rateLimiter *models.RateLimiter
	storage     models.StorageService
	metrics     *metrics.Metrics
	logger      *slog.Logger
	uploadDir   string
	staticDir   string
	dataFile    string
	imageOrigin string
}

// Methods to satisfy the handlers.App interface
func (a *Application) Sessions() *session.Manager       { return a.sessions }
func (a *Application) RateLimiter() *models.RateLimiter { return a.rateLimiter }
func (a *Application) Storage() models.StorageService   { return a.storage }
func (a *Application) Metrics() *metrics.Metrics        { return a.metrics }
func (a *Application) Logger() *slog.Logger             { return a.logger }
func (a *Application) UploadDir() string                { return a.uploadDir }
func (a *Application) StaticDir() string                { return a.staticDir }
func (a *Application) DataFile() string                 { return a.dataFile }
func (a *Application) ImageOrigin() string              { return a.imageOrigin }

// envDuration reads a duration variable and warns when the value is unusable.
func envDuration(logger *slog.Logger, key, fallback string) time.Duration {
	d, ok := utils.GetEnvDuration(key, fallback)
	if !ok {
		logger.Warn("Invalid duration, using default", "key", key, "value", utils.GetEnv(key, ""), "default", fallback)
	}
	return d
}

func envInt(logger *slog.Logger, key string, fallback int) int {
	n, ok := utils.GetEnvInt(key, fallback)
	if !ok {
		logger.Warn("Invalid integer, using default", "key", key, "value", utils.GetEnv(key, ""), "default", fallback)
	}
	return n
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Warn("Could not load .env file", "error", err)
	}

	// --- External Configuration ---
	port := utils.GetEnv("PORTAL_PORT", config.DefaultListenPort)
	dataFile := utils.GetEnv("PORTAL_DATA_FILE", config.DefaultDataFile)
	backupDir := utils.GetEnv("PORTAL_BACKUP_DIR", config.DefaultBackupDir)
	uploadDir := utils.GetEnv("PORTAL_UPLOAD_DIR", config.DefaultUploadDir)
	staticDir := utils.GetEnv("PORTAL_STATIC_DIR", config.DefaultStaticDir)
	sessionTTL := envDuration(logger, "PORTAL_SESSION_TTL", config.DefaultSessionTTL)
	rateLimitEvery := envDuration(logger, "PORTAL_RATE_EVERY", config.DefaultRateLimitEvery)
	rateLimitBurst := envInt(logger, "PORTAL_RATE_BURST", config.DefaultRateLimitBurst)
	rateLimitPrune := envDuration(logger, "PORTAL_RATE_PRUNE", config.DefaultRateLimitPrune)
	rateLimitExpire := envDuration(logger, "PORTAL_RATE_EXPIRE", config.DefaultRateLimitExpire)

	store, err := database.InitDocumentStore(dataFile, backupDir, logger)
	if err != nil {
		logger.Error("Failed to initialize document store", "error", err)
		os.Exit(1)
	}

	if err := handlers.LoadTemplates(); err != nil {
		logger.Error("Failed to load templates", "error", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		logger.Error("FATAL: Could not create uploads directory", "path", uploadDir, "error", err)
		os.Exit(1)
	}
	utils.CreatePlaceholderImage(staticDir, logger)

	// --- Storage Service Init ---
	var storageService models.StorageService
	var imageOrigin string
	if utils.GetEnv("PORTAL_S3_ENABLED", "false") == "true" {
		cfg := utils.S3Config{
			Endpoint:  utils.GetEnv("PORTAL_S3_ENDPOINT", ""),
			AccessKey: utils.GetEnv("PORTAL_S3_ACCESS_KEY", ""),
			SecretKey: utils.GetEnv("PORTAL_S3_SECRET_KEY", ""),
			Bucket:    utils.GetEnv("PORTAL_S3_BUCKET", ""),
			Region:    utils.GetEnv("PORTAL_S3_REGION", "us-east-1"),
			PublicURL: utils.GetEnv("PORTAL_S3_PUBLIC_URL", ""),
			UseSSL:    utils.GetEnv("PORTAL_S3_USE_SSL", "true") == "true",
		}
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		s3Store, err := utils.NewS3Storage(ctx, cfg)
		cancel()
		if err != nil {
			logger.Error("Failed to initialize S3 storage", "error", err)
			os.Exit(1)
		}
		storageService = s3Store
		imageOrigin = s3Store.PublicURL()
		logger.Info("S3 Storage initialized", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket)
	} else {
		storageService = &utils.LocalStorage{UploadDir: uploadDir}
		logger.Info("Local Storage initialized", "dir", uploadDir)
	}

	m := metrics.New()
	rateLimiter := models.NewRateLimiter(rateLimitEvery, rateLimitBurst, rateLimitPrune, rateLimitExpire)
	defer rateLimiter.Stop()

	app := &Application{
		sessions: session.NewManager(store,
			session.WithTTL(sessionTTL),
			session.WithManagerLogger(logger),
			session.WithActiveObserver(m.SetActiveSessions),
		),
		rateLimiter: rateLimiter,
		storage:     storageService,
		metrics:     m,
		logger:      logger,
		uploadDir:   uploadDir,
		staticDir:   staticDir,
		dataFile:    dataFile,
		imageOrigin: imageOrigin,
	}

	// --- Graceful Shutdown ---
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           handlers.SetupRouter(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("Nation portal started successfully",
		"version", config.AppVersion,
		"address", "http://localhost:"+port,
		"data_file", dataFile,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), config.DefaultShutdownSec*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}
	logger.Info("Server exiting")
}
