package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/houseoftheai/server/internal/auth"
	"github.com/houseoftheai/server/internal/config"
	"github.com/houseoftheai/server/internal/db"
	"github.com/houseoftheai/server/internal/email"
	httphandler "github.com/houseoftheai/server/internal/http"
	"github.com/houseoftheai/server/internal/http/handlers"
	"github.com/houseoftheai/server/internal/logger"
	"github.com/houseoftheai/server/internal/repo"
)

func main() {
	// Load configuration (.env picked up by the loader when present)
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	log := logger.New(cfg.AppEnv, os.Stdout)

	// Root context cancelled on SIGINT/SIGTERM; stops the sweeper too
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to the document store and create indexes
	database, err := db.Connect(ctx, cfg.Mongo)
	if err != nil {
		log.Error("failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = database.Client().Disconnect(disconnectCtx)
	}()

	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.Error("failed to ensure indexes", slog.Any("error", err))
		os.Exit(1)
	}

	// Email sender: Postmark when a token is configured, files on disk otherwise
	var sender email.Sender
	if cfg.Email.PostmarkServerToken != "" {
		sender, err = email.NewPostmarkSender(cfg.Email)
		if err != nil {
			log.Error("failed to configure email sender", slog.Any("error", err))
			os.Exit(1)
		}
	} else {
		log.Warn("no Postmark token configured, writing emails to disk", slog.String("dir", cfg.Email.DevOutputDir))
		sender = email.NewDevSender(cfg.Email.DevOutputDir)
	}

	// Initialize repositories
	userRepo := repo.NewUserRepo(database)
	pendingRepo := repo.NewPendingRepo(database)
	chatRepo := repo.NewChatRepo(database)
	visitorRepo := repo.NewVisitorRepo(database)
	feedbackRepo := repo.NewFeedbackRepo(database)

	// Initialize services
	otpIssuer := auth.NewOTPIssuer(sender)
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	authService := auth.NewAuthService(userRepo, pendingRepo, otpIssuer, log)

	// Background sweeper bounds growth of abandoned pending signups
	sweeper := auth.NewPendingSweeper(pendingRepo, cfg.PendingGrace, cfg.PendingInterval, log)
	go sweeper.Run(ctx)

	// Initialize handlers and router
	router := httphandler.NewRouter(httphandler.RouterDeps{
		Auth:        handlers.NewAuthHandler(authService, jwtService, cfg.IsProduction(), log),
		Chat:        handlers.NewChatHandler(chatRepo, log),
		Visitor:     handlers.NewVisitorHandler(visitorRepo, log),
		Feedback:    handlers.NewFeedbackHandler(feedbackRepo, sender, cfg.Email.FeedbackToEmail, log),
		JWTService:  jwtService,
		Users:       userRepo,
		Healthcheck: db.Healthcheck(database),
		FrontendURL: cfg.FrontendURL,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("server starting", slog.String("port", cfg.Port), slog.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server exited")
}
