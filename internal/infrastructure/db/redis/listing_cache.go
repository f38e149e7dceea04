package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/99minutos/user-admin/internal/core/ports"
)

const (
	listingKeyPrefix     = "users:listing:"
	listingGenerationKey = "users:listing-generation"
	defaultListingTTL    = 5 * time.Minute
)

// ListingCache keeps the rendered user listing in Redis. Entries are keyed by
// a generation counter that Invalidate increments, so a listing computed
// before a write can never be read after it. Cache failures are logged and
// treated as misses so the listing falls back to Postgres.
type ListingCache struct {
	client redis.Cmdable
	ttl    time.Duration
	log    zerolog.Logger
}

// NewListingCache wraps client. A ttl <= 0 uses defaultListingTTL.
func NewListingCache(client redis.Cmdable, ttl time.Duration, log zerolog.Logger) *ListingCache {
	if ttl <= 0 {
		ttl = defaultListingTTL
	}
	return &ListingCache{client: client, ttl: ttl, log: log}
}

var _ ports.UserListingCache = (*ListingCache)(nil)

func listingKey(generation int64) string {
	return listingKeyPrefix + strconv.FormatInt(generation, 10)
}

func (c *ListingCache) Get(ctx context.Context) ([]ports.UserListItem, int64, bool) {
	generation, err := c.client.Get(ctx, listingGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		c.log.Warn().Err(err).Msg("listing cache generation read failed")
		return nil, 0, false
	}

	raw, err := c.client.Get(ctx, listingKey(generation)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn().Err(err).Msg("listing cache read failed")
		}
		return nil, generation, false
	}

	var items []ports.UserListItem
	if err := json.Unmarshal(raw, &items); err != nil {
		c.log.Warn().Err(err).Msg("listing cache entry corrupt")
		return nil, generation, false
	}
	return items, generation, true
}

// Set stores items under generation. A listing from a superseded generation
// is written to a key nobody reads and expires with the ttl.
func (c *ListingCache) Set(ctx context.Context, generation int64, items []ports.UserListItem) {
	raw, err := json.Marshal(items)
	if err != nil {
		c.log.Warn().Err(err).Msg("listing cache encode failed")
		return
	}
	if err := c.client.Set(ctx, listingKey(generation), raw, c.ttl).Err(); err != nil {
		c.log.Warn().Err(err).Msg("listing cache write failed")
	}
}

func (c *ListingCache) Invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, listingGenerationKey).Err(); err != nil {
		c.log.Warn().Err(err).Msg("listing cache invalidate failed")
	}
}
