package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type DatabaseConfig struct {
	// PostgresDSN selects the postgres backend when set; otherwise the
	// service runs on an embedded sqlite file at SQLitePath.
	PostgresDSN string
	SQLitePath  string
	AutoMigrate bool
	SeedData    bool
}

type RedisConfig struct {
	// Addr enables the event-stats cache when set.
	Addr     string
	StatsTTL time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8086"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0, // SSE streams must not be cut off by a write deadline
			IdleTimeout:  60 * time.Second,
		},
		Database: DatabaseConfig{
			PostgresDSN: getEnv("POSTGRES_DSN", ""),
			SQLitePath:  getEnv("SQLITE_PATH", "data/feedback.db"),
			AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),
			SeedData:    getEnvBool("DB_SEED", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			StatsTTL: time.Duration(getEnvInt("REDIS_STATS_TTL_SECONDS", 30)) * time.Second,
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: []string{getEnv("KAFKA_ADDR", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC_FEEDBACK", "feedback.created"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
