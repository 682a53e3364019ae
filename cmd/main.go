package main

import (
	"cinematch/backend/internal/api/handler"
	"cinematch/backend/internal/catalog"
	"cinematch/backend/internal/chat"
	"cinematch/backend/internal/chathub"
	"cinematch/backend/internal/config"
	"cinematch/backend/internal/match"
	"cinematch/backend/internal/models"
	"cinematch/backend/internal/presence"
	"cinematch/backend/internal/storage"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// TranslateError turns driver unique-violations into
	// gorm.ErrDuplicatedKey, which the handshake relies on.
	db, err := gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx := context.Background()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.MovieLike{},
		&models.MatchRequest{},
		&models.ChatRoom{},
		&models.ChatMembership{},
		&models.Message{},
	)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Database and Redis connections established, migrations complete.")
	return db, rdb
}

func main() {
	log.Println("Starting CineMatch Backend...")

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Error loading .env file")
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)

	// Live delivery: registry + dispatcher + hub, wired in two steps
	// because the chat service broadcasts through the hub.
	registry := presence.NewRegistry()
	dispatcher := presence.NewDispatcher(registry)
	hub := chathub.NewManager(registry, s)
	chatSvc := chat.NewService(s, hub)
	hub.SetChatService(chatSvc)

	engine := match.NewEngine(s, dispatcher)
	cat := catalog.NewClient(cfg.CatalogBaseURL, cfg.CatalogAPIKey, s)

	go hub.Run(context.Background()) // pub/sub fan-out loop

	r := gin.Default()
	h := handler.NewHandler(engine, chatSvc, hub, s, cat, cfg.JWTSecret)

	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)

	authed := r.Group("/", h.AuthRequired())
	authed.PUT("/movies/:id/like", h.LikeMovie)
	authed.DELETE("/movies/:id/like", h.UnlikeMovie)
	authed.GET("/matches/candidates", h.GetCandidates)
	authed.POST("/matches/request", h.RequestMatch)
	authed.GET("/rooms", h.ListRooms)
	authed.POST("/rooms/:id/join", h.JoinRoom)
	authed.POST("/rooms/:id/leave", h.LeaveRoom)
	authed.GET("/rooms/:id/messages", h.GetMessages)
	authed.GET("/ws", h.ServeWebSocket)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	log.Fatal(server.ListenAndServe())
}
