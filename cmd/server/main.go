package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/financeguardian/dashboard/internal/config"
	"github.com/financeguardian/dashboard/internal/database"
	"github.com/financeguardian/dashboard/internal/modules/auth"
	"github.com/financeguardian/dashboard/internal/modules/catalog"
	"github.com/financeguardian/dashboard/internal/modules/marketdata"
	"github.com/financeguardian/dashboard/internal/modules/news"
	"github.com/financeguardian/dashboard/internal/modules/trends"
	"github.com/financeguardian/dashboard/internal/scheduler"
	"github.com/financeguardian/dashboard/internal/server"
	"github.com/financeguardian/dashboard/internal/session"
	"github.com/financeguardian/dashboard/pkg/logger"
)

func main() {
	// Load configuration first so the logger picks up its level
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New(logger.Config{Level: "info", Pretty: true})
		fallback.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.DevMode,
		File:   cfg.LogFile,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Finance Guardian")

	// Initialize database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	// Ticker catalog, read-only after load
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load ticker catalog")
	}
	log.Info().Int("symbols", len(cat.Symbols())).Msg("Ticker catalog loaded")

	// Session store + purge job
	sessions := session.NewStore(db, log)

	sched := scheduler.New(log)
	if err := sched.AddJob("@every 5m", scheduler.NewSessionPurgeJob(sessions, log)); err != nil {
		log.Fatal().Err(err).Msg("Failed to register session purge job")
	}
	sched.Start()
	defer sched.Stop()

	// External-service clients
	authClient := auth.NewClient(cfg.AuthURL, log)
	trendsService := trends.NewService(trends.NewClient(cfg.TrendsURL, log), log)
	newsClient := news.NewClient(cfg.TrendsURL, log)

	var lookup marketdata.Backend
	switch cfg.LookupBackend {
	case config.LookupBackendS3:
		lookup, err = marketdata.NewS3Backend(context.Background(), marketdata.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.AWSRegion,
			Term:      cfg.LakeTerm,
			Topic:     cfg.LakeTopic,
			SubFolder: cfg.LakeSubFolder,
		}, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 lookup backend")
		}
	default:
		lookup = marketdata.NewLakeClient(marketdata.LakeConfig{
			BaseURL:   cfg.LakeURL,
			Term:      cfg.LakeTerm,
			Topic:     cfg.LakeTopic,
			SubFolder: cfg.LakeSubFolder,
		}, log)
	}

	// Initialize HTTP server
	srv, err := server.New(server.Config{
		Port:        cfg.Port,
		Log:         log,
		DevMode:     cfg.DevMode,
		DB:          db,
		Sessions:    sessions,
		SessionTTL:  cfg.SessionTTL,
		Auth:        authClient,
		Lookup:      lookup,
		Trends:      trendsService,
		News:        newsClient,
		Catalog:     cat,
		NewsEnabled: cfg.NewsPanelsEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
