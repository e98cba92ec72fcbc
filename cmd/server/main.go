package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dm-service/internal/api/routes"
	"dm-service/internal/auth"
	"dm-service/internal/config"
	"dm-service/internal/database"
	"dm-service/internal/events"
	"dm-service/internal/message"
	"dm-service/internal/presence"
	"dm-service/internal/storage"
	"dm-service/internal/websocket"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("starting dm server")

	// User store
	db, err := database.NewMySQLConnection(cfg.MySQL.DSN)
	if err != nil {
		slog.Error("failed to connect to mysql", "error", err)
		os.Exit(1)
	}
	if err := db.AutoMigrate(&auth.UserModel{}); err != nil {
		slog.Error("failed to migrate user schema", "error", err)
		os.Exit(1)
	}

	// Message store
	mongoDB, err := database.NewMongoConnection(cfg.Mongo.URI, cfg.Mongo.Database)
	if err != nil {
		slog.Error("failed to connect to mongodb", "error", err)
		os.Exit(1)
	}
	messageStore := message.NewStore(mongoDB)

	// Online-set mirror, optional
	var tracker presence.Tracker = presence.NoopTracker{}
	if cfg.Redis.Addr != "" {
		redisClient, err := database.NewRedisConnection(&cfg.Redis)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		tracker = presence.NewRedisTracker(redisClient)
	}

	// Attachment store
	var fileStore storage.Store
	uploadDir := ""
	switch cfg.Storage.Driver {
	case "minio":
		fileStore, err = storage.NewMinIOStore(cfg.MinIO.Endpoint, cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, cfg.MinIO.Bucket)
		if err != nil {
			slog.Error("failed to init minio storage", "error", err)
			os.Exit(1)
		}
	default:
		diskStore, err := storage.NewDiskStore(cfg.Storage.UploadDir)
		if err != nil {
			slog.Error("failed to init disk storage", "error", err)
			os.Exit(1)
		}
		fileStore = diskStore
		uploadDir = diskStore.Dir()
	}

	// Event publishing, optional
	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// Auth / identity verification
	authRepo := auth.NewRepository(db)
	authService := auth.NewService(authRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)

	// Connection engine
	registry := websocket.NewRegistry()
	msgRouter := websocket.NewRouter(registry, messageStore, fileStore, publisher)
	hub := websocket.NewHub(msgRouter, tracker, cfg.WebSocket.PingInterval, cfg.WebSocket.PongWait)
	go hub.Run()

	router := routes.NewRouter(hub, authService, messageStore, uploadDir)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		slog.Info("server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	if err := mongoDB.Close(ctx); err != nil {
		slog.Error("error closing mongodb", "error", err)
	}

	slog.Info("server stopped")
}
