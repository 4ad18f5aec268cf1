package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/consogab/backend/internal/config"
	"github.com/consogab/backend/internal/database"
	"github.com/consogab/backend/internal/presence"
	postgresrepo "github.com/consogab/backend/internal/repository/postgres"
	"github.com/consogab/backend/internal/service"
	"github.com/consogab/backend/internal/transport/http/handlers"
	"github.com/consogab/backend/internal/transport/http/middleware"
	"github.com/consogab/backend/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer pool.Close()
	log.Info().Msg("connected to database")

	rdb, err := database.ConnectRedis(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	log.Info().Msg("connected to redis")

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	businessRepo := postgresrepo.NewBusinessRepo(pool)
	convRepo := postgresrepo.NewConversationRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	favoriteRepo := postgresrepo.NewFavoriteRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	profileService := service.NewProfileService(userRepo)
	businessService := service.NewBusinessService(businessRepo)
	convService := service.NewConversationService(convRepo, userRepo, businessRepo)
	messageService := service.NewMessageService(messageRepo, convRepo)
	favoriteService := service.NewFavoriteService(favoriteRepo, businessRepo)

	// Realtime
	presenceStore := presence.NewStore(rdb)
	hub := ws.NewHub(presenceStore)
	go hub.Run()

	notifier := ws.NewHubNotifier(hub)
	messageService.SetNotifier(notifier)
	convService.SetNotifier(notifier)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	businessHandler := handlers.NewBusinessHandler(businessService)
	convHandler := handlers.NewConversationHandler(convService)
	messageHandler := handlers.NewMessageHandler(messageService)
	favoriteHandler := handlers.NewFavoriteHandler(favoriteService)
	profileHandler := handlers.NewProfileHandler(profileService, presenceStore)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /api/v1/businesses", businessHandler.Search)
	mux.HandleFunc("GET /api/v1/businesses/{id}", businessHandler.Get)

	// Protected - Businesses
	mux.Handle("POST /api/v1/businesses", auth(http.HandlerFunc(businessHandler.Create)))
	mux.Handle("GET /api/v1/businesses/mine", auth(http.HandlerFunc(businessHandler.ListMine)))

	// Protected - Favorites
	mux.Handle("GET /api/v1/favorites", auth(http.HandlerFunc(favoriteHandler.List)))
	mux.Handle("PUT /api/v1/favorites/{id}", auth(http.HandlerFunc(favoriteHandler.Add)))
	mux.Handle("DELETE /api/v1/favorites/{id}", auth(http.HandlerFunc(favoriteHandler.Remove)))

	// Protected - Conversations
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(convHandler.List)))
	mux.Handle("POST /api/v1/conversations/business", auth(http.HandlerFunc(convHandler.OpenBusiness)))
	mux.Handle("POST /api/v1/conversations/direct", auth(http.HandlerFunc(convHandler.OpenDirect)))
	mux.Handle("GET /api/v1/conversations/{id}", auth(http.HandlerFunc(convHandler.Get)))
	mux.Handle("POST /api/v1/conversations/{id}/read", auth(http.HandlerFunc(convHandler.MarkRead)))
	mux.Handle("DELETE /api/v1/conversations/{id}", auth(http.HandlerFunc(convHandler.Leave)))

	// Protected - Messages
	mux.Handle("GET /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(messageHandler.ListPage)))
	mux.Handle("POST /api/v1/conversations/{id}/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("PATCH /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))

	// Protected - Profiles & presence
	mux.Handle("GET /api/v1/profiles", auth(http.HandlerFunc(profileHandler.Batch)))
	mux.Handle("GET /api/v1/presence", auth(http.HandlerFunc(profileHandler.Online)))

	// WebSocket (token auth via query param)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Info().Str("addr", addr).Msg("starting server")
	if err := http.ListenAndServe(addr, middleware.CORS(mux)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
