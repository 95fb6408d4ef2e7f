package main

import (
	"context"
	"log"
	"time"

	"votecast/config"
	"votecast/internal/events"
	"votecast/internal/handler"
	appredis "votecast/internal/redis"
	"votecast/internal/repository"
	"votecast/internal/server"
	"votecast/internal/services"
	"votecast/internal/websocket"
	"votecast/pkg/database"
	"votecast/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	ctx := context.Background()

	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := database.ApplyRawMigrations(ctx, pool, "migrations"); err != nil {
		log.Fatalf("Failed to apply migrations: %v", err)
	}

	redisClient := appredis.NewClient(appredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	defer redisClient.Close()

	pollRepo := repository.NewPollRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	sessions := appredis.NewSessionStore(redisClient, time.Duration(cfg.SessionTTLHours)*time.Hour)
	limiter := appredis.NewRateLimiter(redisClient, cfg.AuthRateLimit)

	authService := services.NewAuthService(userRepo, sessions, cfg)
	pollService := services.NewPollService(pollRepo, userRepo)

	hub := websocket.NewHub(pollService, l)
	dispatcher := events.NewDispatcher(hub, l)
	hub.SetPublisher(dispatcher)

	handlers := &server.Handlers{
		Auth: handler.NewAuthHandler(authService, pollService, limiter, cfg),
		Poll: handler.NewPollHandler(pollService, dispatcher),
		WS:   websocket.NewHandler(authService, hub),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, pool)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
