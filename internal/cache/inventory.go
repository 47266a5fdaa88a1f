package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	CommunityKeyPrefix = "community:%s"
	ProfileKeyPrefix   = "profile:%s"
	BadgeCatalogKey    = "badges:catalog"
)

const (
	CommunityTTL    = 10 * time.Minute
	ProfileTTL      = 5 * time.Minute
	BadgeCatalogTTL = time.Hour
)

// CommunityKey keys a community by id or slug.
func CommunityKey(ref string) string {
	return fmt.Sprintf(CommunityKeyPrefix, ref)
}

func ProfileKey(userID uuid.UUID) string {
	return fmt.Sprintf(ProfileKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidateCommunity drops both cache entries for a community.
func InvalidateCommunity(ctx context.Context, id uuid.UUID, slug string) {
	Invalidate(ctx, CommunityKey(id.String()))
	if slug != "" {
		Invalidate(ctx, CommunityKey(slug))
	}
}

func InvalidateProfile(ctx context.Context, userID uuid.UUID) {
	Invalidate(ctx, ProfileKey(userID))
}
