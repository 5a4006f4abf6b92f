package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/TutorFox/internal/pkg/env"
)

var client *redis.Client

// SetupCache initializes the connection to the Redis compatible cache server.
// The service keeps working without it; moderation results are then simply
// not cached.
func SetupCache() {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		fiberlog.Warnf("could not connect to cache: %v", err)
	} else {
		fiberlog.Infof("successfully connected to cache: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// ResultStore adapts a Redis client to moderation.ResultCache.
type ResultStore struct {
	rdb *redis.Client
}

func NewResultStore(rdb *redis.Client) *ResultStore {
	return &ResultStore{rdb: rdb}
}

func (s *ResultStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (s *ResultStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.rdb.Set(ctx, key, value, ttl).Err()
}
