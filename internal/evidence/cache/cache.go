// Package cache caches raw provider payloads in Redis so repeated refreshes
// of the same registry record within the TTL do not hit the provider again.
// Only fetched payloads are cached; the evidence store of record is
// PostgreSQL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	id "masterfile/pkg/domain"
)

// PayloadCache reads and writes provider payloads keyed by provider and the
// provider-native identifier (LEI, company number). A nil PayloadCache is
// valid and behaves as a cache that never hits.
type PayloadCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// New constructs a payload cache. ttl bounds how long a fetched payload is
// reused before the provider is consulted again.
func New(client redis.Cmdable, ttl time.Duration) *PayloadCache {
	return &PayloadCache{client: client, ttl: ttl}
}

func key(provider id.Source, identifier string) string {
	return fmt.Sprintf("masterfile:payload:%s:%s", provider, identifier)
}

// Find returns the cached payload and true on a hit. A miss is (nil, false,
// nil); cache infrastructure failures surface as errors so callers can decide
// to fall through to the provider.
func (c *PayloadCache) Find(ctx context.Context, provider id.Source, identifier string) (json.RawMessage, bool, error) {
	if c == nil || c.client == nil {
		return nil, false, nil
	}
	raw, err := c.client.Get(ctx, key(provider, identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("payload cache get: %w", err)
	}
	return raw, true, nil
}

// Save stores a fetched payload for the configured TTL.
func (c *PayloadCache) Save(ctx context.Context, provider id.Source, identifier string, payload json.RawMessage) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Set(ctx, key(provider, identifier), []byte(payload), c.ttl).Err(); err != nil {
		return fmt.Errorf("payload cache set: %w", err)
	}
	return nil
}
