package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/graph-gophers/graphql-go/relay"
	"github.com/joho/godotenv"

	"ms-feedback/internal/config"
	"ms-feedback/internal/database"
	"ms-feedback/internal/feedback"
	feedbackdb "ms-feedback/internal/feedback/db"
	"ms-feedback/internal/graphql"
	"ms-feedback/internal/kafka"
	"ms-feedback/internal/logger"
	"ms-feedback/internal/sse"
)

func main() {
	log := logger.NewLogger()
	defer log.Close()

	log.Info("APP", "Starting Feedback Service initialization")

	if err := godotenv.Load(); err != nil {
		log.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		log.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	bunDB, err := database.Connect(cfg.Database, log)
	if err != nil {
		log.Fatal("DATABASE", fmt.Sprintf("Store connection failed: %v", err))
	}
	defer bunDB.Close()

	if cfg.Database.AutoMigrate {
		if err := database.EnsureSchema(ctx, bunDB); err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Schema creation failed: %v", err))
		}
		log.Info("DATABASE", "Schema ensured")
	}
	if cfg.Database.SeedData {
		seeded, err := database.SeedEvents(ctx, bunDB)
		if err != nil {
			log.Fatal("DATABASE", fmt.Sprintf("Seeding failed: %v", err))
		}
		if seeded > 0 {
			log.Info("DATABASE", fmt.Sprintf("Seeded %d events", seeded))
		} else {
			log.Info("DATABASE", "Events already exist, skipping seed")
		}
	}

	var statsCache feedback.StatsCache
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Fatal("REDIS", fmt.Sprintf("Redis connection error: %v", err))
		}
		defer redisClient.Close()
		statsCache = feedback.NewRedisStatsCache(redisClient, cfg.Redis.StatsTTL)
		log.Info("REDIS", fmt.Sprintf("Stats cache enabled via %s", cfg.Redis.Addr))
	}

	var producer feedback.KafkaPublisher
	if cfg.Kafka.Enabled {
		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{cfg.Kafka.Topic}); err != nil {
			log.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		}
		kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kafkaProducer.Close()
		producer = kafkaProducer
		log.Info("KAFKA", fmt.Sprintf("Producer initialized for topic %s", cfg.Kafka.Topic))
	}

	emitter := sse.NewFeedbackEmitter()
	service := feedback.NewService(&feedbackdb.DB{Bun: bunDB}, emitter, producer, statsCache, log)

	schema := graphql.NewSchema(graphql.NewResolver(service, emitter))
	queryHandler := &relay.Handler{Schema: schema}
	streamHandler := graphql.NewStreamHandler(schema, log)

	log.Info("HTTP", "Setting up router")
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Queries and mutations on POST, subscription streams on GET.
	r.Post("/graphql", queryHandler.ServeHTTP)
	r.Get("/graphql", streamHandler.ServeHTTP)
	log.Info("ROUTER", "GraphQL endpoint registered at /graphql")

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", fmt.Sprintf("Feedback Service running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	log.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	log.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Error("HTTP", fmt.Sprintf("Server shutdown failed: %v", err))
	} else {
		log.Info("HTTP", "Feedback Service shutdown complete")
	}
}
