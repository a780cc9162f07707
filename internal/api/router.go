package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/evchat/chat-gateway/internal/api/handler"
	"github.com/evchat/chat-gateway/internal/api/middleware"
	"github.com/evchat/chat-gateway/internal/core/ports"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, authService ports.AuthService, chatService ports.ChatService, jwtSecret string, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("chatgateway"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(authService, chatService)
	chatHandler := handler.NewChatHandler(chatService)
	authMiddleware := middleware.Auth(jwtSecret)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.DELETE("/session", authHandler.Logout, authMiddleware)

	// --- Chat routes (session token required) ---
	chat := e.Group("/chat", authMiddleware)
	chat.POST("/messages", chatHandler.Submit)
	chat.GET("/history", chatHandler.History)
	chat.DELETE("/history", chatHandler.Reset)

	// --- Observability ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	return e
}
