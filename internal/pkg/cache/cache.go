package cache

import (
	"context"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/aquaflow/aquaflow/internal/pkg/env"
	fiberredis "github.com/gofiber/storage/redis"
	"github.com/redis/go-redis/v9"
)

var (
	client *redis.Client
	ctx    = context.Background()
)

// SetupCache initializes the connection to the Redis server. A missing cache
// is logged but not fatal; only the rate limiter depends on it.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	pong, err := client.Ping(ctx).Result()
	if err != nil {
		log.Printf("Warning: Could not connect to Redis cache: %v", err)
	} else {
		log.Printf("Successfully connected to Redis cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// NewFiberStorage builds a fiber storage adapter on the configured Redis
// server, using a separate database so limiter keys stay apart from cache
// entries. Returns nil when Redis is unreachable; fiberredis.New panics on a
// dead server, and a missing cache must not stop the app.
func NewFiberStorage(database int) *fiberredis.Storage {
	c := GetClient()
	if c == nil {
		return nil
	}
	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis unreachable, fiber storage unavailable: %v", err)
		return nil
	}

	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")

	if h, p, err := net.SplitHostPort(c.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}
	if p := c.Options().Password; p != "" {
		password = p
	}

	return fiberredis.New(fiberredis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: database,
		Reset:    false,
	})
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	return GetClient().Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	return GetClient().Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	return GetClient().Del(ctx, key).Err()
}
