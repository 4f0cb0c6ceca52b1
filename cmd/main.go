package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/EricBrvs/ft-transcendance/brackets"
	"github.com/EricBrvs/ft-transcendance/config"
	"github.com/EricBrvs/ft-transcendance/db"
	"github.com/EricBrvs/ft-transcendance/handlers"
	"github.com/EricBrvs/ft-transcendance/repositories"
	api "github.com/EricBrvs/ft-transcendance/routes"
	"github.com/EricBrvs/ft-transcendance/services"
	"github.com/EricBrvs/ft-transcendance/storage"
	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}()
	logger.Info("database connection established")

	if err := db.Migrate(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database schema up to date")

	// Optional bracket archive storage (Cloudflare R2).
	var archiver services.BracketArchiver
	var archiveRemover services.ArchiveRemover
	if cfg.ArchiveEnabled() {
		uploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize bracket archive storage", slog.Any("error", err))
			os.Exit(1)
		}
		archive := storage.NewBracketArchive(uploader)
		archiver = archive
		archiveRemover = archive
		logger.Info("bracket archive storage initialized")
	} else {
		logger.Info("bracket archive storage not configured, archiving disabled")
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("websocket hub started")

	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	transactor := repositories.NewSQLTransactor(dbConn)
	logger.Info("repositories initialized")

	advancer := services.NewAdvancementCoordinator(matchRepo, tournamentRepo, wsHub, archiver)
	matchService := services.NewMatchService(matchRepo, advancer)
	tournamentService := services.NewTournamentService(
		transactor,
		tournamentRepo,
		matchRepo,
		brackets.NewSingleEliminationGenerator(),
	)
	cleanupService := services.NewCleanupService(transactor, matchRepo, tournamentRepo, archiveRemover)
	logger.Info("services initialized")

	matchHandler := handlers.NewMatchHandler(matchService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	internalHandler := handlers.NewInternalHandler(cleanupService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub)
	logger.Info("HTTP handlers initialized")

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{
			JWTSecret:       []byte(cfg.JWTSecretKey),
			InternalKeyHash: cfg.InternalKeyHash,
		},
		matchHandler,
		tournamentHandler,
		internalHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
