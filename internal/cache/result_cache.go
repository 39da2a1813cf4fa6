// Package cache holds the calculation result cache: one slot per campaign,
// bounded by a TTL and a response-set fingerprint.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"altervalue/internal/model"
)

// DefaultTTL bounds how long a cached result may be served before a
// recompute is forced even without an invalidation.
const DefaultTTL = 5 * time.Minute

// Entry is one cached calculation with the metadata needed to decide
// whether it is still servable.
type Entry struct {
	Result      *model.CalculationResult `json:"result"`
	Fingerprint string                   `json:"fingerprint"`
	ComputedAt  time.Time                `json:"computedAt"`
}

// Store is the persistence backend for cache entries, keyed by campaign.
// A missing key is (nil, nil), not an error.
type Store interface {
	Get(ctx context.Context, campaignID string) (*Entry, error)
	Set(ctx context.Context, campaignID string, entry *Entry, ttl time.Duration) error
	Delete(ctx context.Context, campaignID string) error
}

// ResultCache serves calculation results from a Store, revalidating each
// hit against its age and the current response-set fingerprint.
type ResultCache struct {
	store Store
	ttl   time.Duration
}

// NewResultCache wires a cache over the given store. A non-positive ttl
// falls back to DefaultTTL.
func NewResultCache(store Store, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ResultCache{store: store, ttl: ttl}
}

// Get returns the cached result for the campaign together with its age,
// or nil when there is no servable entry. A hit is servable only when it
// is younger than the TTL and was computed over the same response set
// (fingerprint match). Store errors degrade to a miss: a broken cache
// must never block a computation.
func (c *ResultCache) Get(ctx context.Context, campaignID, fingerprint string) (*model.CalculationResult, time.Duration, bool) {
	entry, err := c.store.Get(ctx, campaignID)
	if err != nil || entry == nil || entry.Result == nil {
		return nil, 0, false
	}
	age := time.Since(entry.ComputedAt)
	if age >= c.ttl || entry.Fingerprint != fingerprint {
		return nil, 0, false
	}
	return entry.Result, age, true
}

// Put stores the result as the campaign's single cache slot, replacing
// whatever was there.
func (c *ResultCache) Put(ctx context.Context, campaignID, fingerprint string, result *model.CalculationResult) error {
	return c.store.Set(ctx, campaignID, &Entry{
		Result:      result,
		Fingerprint: fingerprint,
		ComputedAt:  time.Now(),
	}, c.ttl)
}

// Invalidate drops the campaign's slot. Called on every response mutation.
func (c *ResultCache) Invalidate(ctx context.Context, campaignID string) error {
	return c.store.Delete(ctx, campaignID)
}

// RedisStore keeps entries in Redis so invalidation is shared across
// instances. The Redis key TTL mirrors the cache TTL, so stale slots
// expire on their own.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) key(campaignID string) string {
	return fmt.Sprintf("campaign:%s:result", campaignID)
}

func (s *RedisStore) Get(ctx context.Context, campaignID string) (*Entry, error) {
	data, err := s.client.Get(ctx, s.key(campaignID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, campaignID string, entry *Entry, ttl time.Duration) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(campaignID), data, ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, campaignID string) error {
	return s.client.Del(ctx, s.key(campaignID)).Err()
}
