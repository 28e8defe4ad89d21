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

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"

	"github.com/playmatch/playmatch-server/config"
	"github.com/playmatch/playmatch-server/db"
	"github.com/playmatch/playmatch-server/handlers"
	"github.com/playmatch/playmatch-server/live"
	"github.com/playmatch/playmatch-server/middleware"
	"github.com/playmatch/playmatch-server/repositories"
	api "github.com/playmatch/playmatch-server/routes"
	"github.com/playmatch/playmatch-server/services"
	"github.com/playmatch/playmatch-server/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

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

	if err := db.RunMigrations(dbConn); err != nil {
		logger.Error("failed to apply migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// Загрузчик логотипов опционален: без R2-креденшелов команды живут
	// без логотипов, остальное API работает полностью.
	var uploader storage.FileUploader
	if cfg.R2Configured() {
		uploader, err = storage.NewCloudflareR2Uploader(storage.CloudflareR2Config{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		logger.Warn("R2 storage not configured, team logo uploads disabled")
	}

	liveHub := live.NewHub(logger)
	go liveHub.Run()
	logger.Info("live hub started")

	// Репозитории
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	otpRepo := repositories.NewPostgresOtpRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	participantRepo := repositories.NewPostgresParticipantRepository(dbConn)
	unavailRepo := repositories.NewPostgresUnavailabilityRepository(dbConn)
	inviteRepo := repositories.NewPostgresInviteRepository(dbConn)
	emergencyRepo := repositories.NewPostgresEmergencyRequestRepository(dbConn)
	feeLogRepo := repositories.NewPostgresPlatformFeeLogRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	statsRepo := repositories.NewPostgresStatsRepository(dbConn)
	backoutRepo := repositories.NewPostgresBackoutLogRepository(dbConn)
	logger.Info("repositories initialized")

	// Сервисы
	smsSender := services.NewLogSmsSender(logger)
	authService := services.NewAuthService(userRepo, otpRepo, smsSender, services.AuthConfig{
		JWTSecret:       []byte(cfg.JWTSecretKey),
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		OTPExpiry:       cfg.OTPExpiry,
		OTPMaxAttempts:  cfg.OTPMaxAttempts,
		OTPRateWindow:   cfg.OTPRateWindow,
		OTPMaxPerWindow: cfg.OTPMaxPerWindow,
	}, logger)

	inviteService := services.NewInviteService(inviteRepo, matchRepo, cfg.InviteBaseURL)
	matchService := services.NewMatchService(
		matchRepo,
		participantRepo,
		unavailRepo,
		feeLogRepo,
		inviteRepo,
		inviteService,
		liveHub,
		cfg.PlatformFee,
		logger,
	)
	emergencyService := services.NewEmergencyService(
		emergencyRepo,
		matchRepo,
		participantRepo,
		liveHub,
		cfg.EmergencyLockDuration,
		logger,
	)
	paymentService := services.NewPaymentService(matchRepo, participantRepo, logger)
	teamService := services.NewTeamService(teamRepo, userRepo, uploader, logger)
	statsService := services.NewStatsService(statsRepo, userRepo)
	backoutService := services.NewBackoutService(backoutRepo, matchRepo, participantRepo, logger)
	logger.Info("services initialized")

	// Фоновая чистка истёкших экстренных заявок
	go func() {
		ticker := time.NewTicker(cfg.EmergencySweepInterval)
		defer ticker.Stop()
		logger.Info("emergency lock sweep started",
			slog.Duration("interval", cfg.EmergencySweepInterval))

		for range ticker.C {
			if _, err := emergencyService.ExpireStaleLocks(context.Background()); err != nil {
				logger.Error("emergency lock sweep failed", slog.Any("error", err))
			}
		}
	}()

	// HTTP-обработчики и маршруты
	authenticator := middleware.NewAuthenticator([]byte(cfg.JWTSecretKey))
	authHandler := handlers.NewAuthHandler(authService)
	matchHandler := handlers.NewMatchHandler(matchService, paymentService, backoutService, inviteService)
	inviteHandler := handlers.NewInviteHandler(inviteService)
	emergencyHandler := handlers.NewEmergencyHandler(emergencyService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	teamHandler := handlers.NewTeamHandler(teamService)
	statsHandler := handlers.NewStatsHandler(statsService)
	wsHandler := handlers.NewWebSocketHandler(liveHub, matchService, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		authenticator,
		authHandler,
		matchHandler,
		inviteHandler,
		emergencyHandler,
		paymentHandler,
		teamHandler,
		statsHandler,
		wsHandler,
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
