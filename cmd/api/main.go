package main

import (
	"context"
	"log"

	"relay-chat/config"
	"relay-chat/internal/domain/message"
	"relay-chat/internal/domain/room"
	"relay-chat/internal/domain/user"
	"relay-chat/internal/events"
	"relay-chat/internal/handler"
	redisstore "relay-chat/internal/redis"
	"relay-chat/internal/repository"
	"relay-chat/internal/repository/memory"
	"relay-chat/internal/router"
	"relay-chat/internal/server"
	"relay-chat/internal/services"
	"relay-chat/internal/storage"
	"relay-chat/internal/websocket"
	"relay-chat/pkg/database"
	"relay-chat/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	mode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		mode = logger.ProductionMode
	}
	l := logger.New(mode)
	logger.SetGlobalLogger(l)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		users    repository.UserRepository
		rooms    repository.RoomRepository
		messages repository.MessageRepository
	)
	if cfg.StoreBackend == "memory" {
		store := memory.NewStore()
		users, rooms, messages = store.Users(), store.Rooms(), store.Messages()
		l.Infof("Using in-memory store")
	} else {
		database.Connect(cfg)
		if err := database.DB.AutoMigrate(
			&user.User{},
			&room.ChatRoom{},
			&room.Membership{},
			&message.Message{},
			&message.RoomSequence{},
		); err != nil {
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		users = repository.NewUserRepository(database.DB)
		rooms = repository.NewRoomRepository(database.DB)
		messages = repository.NewMessageRepository(database.DB)
	}

	hub := websocket.NewHub()
	go hub.Run(ctx)

	var (
		publisher events.Publisher
		cache     *redisstore.RoomCache
		limiter   *redisstore.RateLimiter
	)
	if cfg.RedisHost != "" {
		client := redisstore.NewClient(redisstore.Config{
			Host:     cfg.RedisHost,
			Port:     cfg.RedisPort,
			Password: cfg.RedisPassword,
		})
		cache = redisstore.NewRoomCache(client, redisstore.DefaultCacheConfig())
		limiter = redisstore.NewRateLimiter(client, redisstore.DefaultRateLimitConfig())

		bridge := events.NewRedisBridge(client, hub, l)
		bridge.Start()
		defer bridge.Stop()
		publisher = bridge
	} else {
		publisher = events.NewHubPublisher(hub)
	}

	identity := services.NewIdentityService(users, cfg)
	roomService := services.NewRoomService(rooms, cache, publisher)
	messageService := services.NewMessageService(messages, rooms, publisher)
	core := router.New(identity, roomService, messageService, l)

	var avatars *storage.AvatarStore
	if cfg.S3Bucket != "" {
		var err error
		avatars, err = storage.NewAvatarStore(ctx, storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
		})
		if err != nil {
			log.Fatalf("Failed to initialize avatar storage: %v", err)
		}
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth: handler.NewAuthHandler(identity),
		Chat: handler.NewChatHandler(core),
		Room: handler.NewRoomHandler(roomService, avatars),
		WS:   websocket.NewHandler(identity, roomService, hub),
	}, identity, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
