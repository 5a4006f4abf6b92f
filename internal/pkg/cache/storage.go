package cache

import (
	"net"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/TutorFox/internal/pkg/env"
)

const limiterDatabase = 1

// NewLimiterStorage returns fiber storage for the API rate limiter, sharing
// the cache server but using its own database so counters never collide with
// cached moderation results.
func NewLimiterStorage() fiber.Storage {
	host := "localhost"
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")

	if c := GetClient(); c != nil {
		if h, p, err := net.SplitHostPort(c.Options().Addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := c.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: limiterDatabase,
		Reset:    false,
	})
}
