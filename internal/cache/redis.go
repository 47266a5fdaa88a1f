// Package cache keeps hot community, profile and badge reads in Redis.
// Every helper degrades to a no-op when no client is configured.
package cache

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"circle/internal/observability"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

var client *redis.Client

// errorCounter feeds failed commands into the redis error metric. A miss
// (redis.Nil) is not a failure.
type errorCounter struct{}

func countFailure(command string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(command).Inc()
	}
}

func (errorCounter) DialHook(next redis.DialHook) redis.DialHook { return next }

func (errorCounter) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countFailure(cmd.Name(), err)
		return err
	}
}

func (errorCounter) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countFailure("pipeline", err)
		return err
	}
}

// clientOptions accepts either host:port or a redis:// URL.
func clientOptions(addr string) (*redis.Options, error) {
	if !strings.Contains(addr, "://") {
		return &redis.Options{Addr: addr}, nil
	}
	return redis.ParseURL(addr)
}

// NewClient builds an instrumented client for addr without contacting it.
func NewClient(addr string) (*redis.Client, error) {
	opts, err := clientOptions(addr)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opts)
	c.AddHook(errorCounter{})
	return c, nil
}

// InitRedis connects to addr and installs the client package-wide. When Redis
// is unreachable the service runs uncached and without live notifications.
func InitRedis(addr string) {
	client = nil

	c, err := NewClient(addr)
	if err != nil {
		log.Printf("Redis disabled: invalid REDIS_URL %q: %v", addr, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		log.Printf("Redis disabled: %v", err)
		_ = c.Close()
		return
	}

	log.Println("Redis connected successfully")
	client = c
}

// GetClient returns the package client, or nil when Redis is disabled.
func GetClient() *redis.Client {
	return client
}

// SetClient replaces the package client. Passing nil disables caching.
func SetClient(c *redis.Client) {
	client = c
}
