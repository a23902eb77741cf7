package config

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Port       string
	BackendURL string
	SessionTTL time.Duration
}

func Load() Config {
	return Config{
		Port:       GetEnv("PORT", "8080"),
		BackendURL: GetEnv("BACKEND_URL", "http://localhost:8000"),
		SessionTTL: GetDurationEnv("SESSION_TTL", 24*time.Hour),
	}
}

func GetEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func GetDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("WARN: invalid duration for %s, using default %s", key, defaultValue)
	}
	return defaultValue
}

func MustInitRedis() *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: GetEnv("REDIS_HOST", "localhost") + ":" + GetEnv("REDIS_PORT", "6379"),
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	return client
}
