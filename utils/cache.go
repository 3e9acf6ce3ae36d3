// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"pmove/config"

	"github.com/go-redis/redis/v8"
)

var (
	// DraftCacheClient holds in-progress reservation drafts.
	DraftCacheClient *redis.Client
	// SessionCacheClient is the dedicated client for user sessions.
	SessionCacheClient *redis.Client
)

func newRedisClient(db int, name string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
	return client
}

// InitRedis connects every Redis client the service uses.
func InitRedis() {
	DraftCacheClient = newRedisClient(config.AppConfig.RedisDraftDB, "Drafts")
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Sessions")
}

// GetDraftCacheClient returns the reservation draft client.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		DraftCacheClient = newRedisClient(config.AppConfig.RedisDraftDB, "Drafts")
	}
	return DraftCacheClient
}

// GetSessionCacheClient returns the Redis client for user sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB, "Sessions")
	}
	return SessionCacheClient
}
