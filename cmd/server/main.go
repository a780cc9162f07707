package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/evchat/chat-gateway/internal/api"
	"github.com/evchat/chat-gateway/internal/core/service"
	mongodb "github.com/evchat/chat-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/evchat/chat-gateway/internal/infrastructure/db/redis"
	"github.com/evchat/chat-gateway/internal/infrastructure/gemini"
	"github.com/evchat/chat-gateway/internal/infrastructure/queue"
	"github.com/evchat/chat-gateway/internal/pkg/config"
	"github.com/evchat/chat-gateway/pkg/logger"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	if cfg.Mongo.URI == "" {
		log.Fatal().Msg("MONGO_URI is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal().Msg("JWT_SECRET is required")
	}
	if cfg.Gemini.APIKey == "" {
		// The gateway still serves logins and history; submissions fail
		// fast with a missing-credential error until the key is set.
		log.Warn().Msg("GEMINI_API_KEY is not set, chat submissions will be rejected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Credential store ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mongoClient.Disconnect(disconnectCtx)
	}()

	// --- Redis (login throttle) ---
	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer func() { _ = rdb.Close() }()

	// --- Archive pipeline ---
	messageRepo := mongodb.NewMessageRepository(db)
	dispatcher := queue.NewDispatcher(cfg.Chat.ArchiveWorkers, messageRepo, log)
	dispatcher.Start(ctx)

	// --- Services ---
	userRepo := mongodb.NewUserRepository(db)
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Chat.LoginMaxFailures)
	authService := service.NewAuthService(userRepo, throttle, cfg.JWTSecret, 24*time.Hour, log)

	generationClient := gemini.NewClient(gemini.Config{
		Endpoint:          cfg.Gemini.Endpoint,
		APIKey:            cfg.Gemini.APIKey,
		SystemInstruction: cfg.Gemini.SystemInstruction,
		MaxAttempts:       cfg.Gemini.MaxAttempts,
		Timeout:           cfg.Gemini.Timeout,
	}, log)
	chatService := service.NewChatService(generationClient, dispatcher, cfg.Chat.HistoryWindow, cfg.Chat.Greeting, log)

	// --- HTTP server ---
	e := api.NewRouter(db, rdb, authService, chatService, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("conversational gateway started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
