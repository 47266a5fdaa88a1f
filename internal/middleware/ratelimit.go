package middleware

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var errNoLimiter = errors.New("rate limiter has no redis client")

func limitsEnforced() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development":
		return false
	}
	return true
}

// window counts one hit against key and returns the count so far and the
// time left in the current window.
func window(ctx context.Context, rdb *redis.Client, key string, length time.Duration) (int64, time.Duration, error) {
	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, key)
		ttl = p.TTL(ctx, key)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	left := ttl.Val()
	if left <= 0 {
		// First hit in the window, or a key that lost its expiry.
		if err := rdb.Expire(ctx, key, length).Err(); err != nil {
			return 0, 0, err
		}
		left = length
	}
	return incr.Val(), left, nil
}

// checkRateLimit counts one use of resource by id and reports whether it is
// still within limit, the calls remaining and the time left in the window.
// Limits apply only in deployed environments.
func checkRateLimit(ctx context.Context, rdb *redis.Client, resource, id string, limit int, length time.Duration) (bool, int64, time.Duration, error) {
	if !limitsEnforced() {
		return true, int64(limit), 0, nil
	}
	if rdb == nil {
		return false, 0, 0, errNoLimiter
	}

	count, left, err := window(ctx, rdb, fmt.Sprintf("rl:%s:%s", resource, id), length)
	if err != nil {
		return false, 0, 0, err
	}
	remaining := int64(limit) - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(limit), remaining, left, nil
}

// RateLimit allows limit calls of the named action per window, keyed by the
// caller when authenticated and by IP otherwise. Requests pass when Redis is
// unavailable.
func RateLimit(rdb *redis.Client, limit int, length time.Duration, name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid := UserID(c); uid != uuid.Nil {
			id = "user:" + uid.String()
		}

		allowed, remaining, left, err := checkRateLimit(c.UserContext(), rdb, name, id, limit, length)
		if err != nil {
			log.Printf("rate limit unavailable for %s: %v", name, err)
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if !allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(left.Seconds()+0.5)))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many " + name + " requests, please slow down.",
				"code":  "RATE_LIMITED",
			})
		}
		return c.Next()
	}
}
