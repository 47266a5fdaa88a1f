// Package bootstrap sets up the shared runtime dependencies for the binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"circle/internal/cache"
	"circle/internal/config"
	"circle/internal/database"
	"circle/internal/rewards"
	"circle/internal/seed"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SyncBadges bool
}

// InitRuntime connects to DB and Redis and optionally syncs the badge catalog.
// Redis is optional: the returned client is nil when it is unreachable.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if opts.SyncBadges {
		if err := SyncBadges(db, cfg); err != nil {
			return nil, nil, err
		}
	}
	return db, r, nil
}

// SyncBadges upserts the embedded badge catalog.
func SyncBadges(db *gorm.DB, cfg *config.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := seed.NewSeeder(db, Points(cfg)).SyncBadges(ctx); err != nil {
		return fmt.Errorf("failed to sync badge catalog: %w", err)
	}
	return nil
}

// Points returns the configured reward amounts.
func Points(cfg *config.Config) rewards.Points {
	return rewards.Points{
		Submission: cfg.SubmissionPoints,
		Vote:       cfg.VotePoints,
	}
}
