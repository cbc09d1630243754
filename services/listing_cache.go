package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"ticket-marketplace/models"
	"ticket-marketplace/utils"
)

const (
	listingCacheAllKey      = "marketplace:listings:all"
	listingCacheEventPrefix = "marketplace:listings:event:"
)

func listingCacheEventKey(eventID string) string {
	return listingCacheEventPrefix + eventID
}

// ListingCache keeps marketplace listing queries in Redis for a short TTL.
// It is an optimization only: a nil cache, a miss, or an open circuit all
// fall through to the store. Mutations invalidate the affected keys.
type ListingCache struct {
	redis   *redis.Client
	ttl     time.Duration
	breaker *utils.CircuitBreaker
}

func NewListingCache(redisClient *redis.Client, ttl time.Duration) *ListingCache {
	return &ListingCache{
		redis:   redisClient,
		ttl:     ttl,
		breaker: utils.NewCircuitBreaker("listing-cache"),
	}
}

func (c *ListingCache) Get(ctx context.Context, key string) ([]*models.Ticket, bool) {
	if c == nil {
		return nil, false
	}

	result, err := c.breaker.Execute(ctx, func() (any, error) {
		data, err := c.redis.Get(ctx, key).Bytes()
		if err == redis.Nil {
			// A miss is not a backend failure.
			return nil, nil
		}
		return data, err
	})
	if err != nil {
		if err != utils.ErrCircuitOpen {
			log.Printf("listing cache read failed for %s: %v", key, err)
		}
		return nil, false
	}

	data, _ := result.([]byte)
	if len(data) == 0 {
		return nil, false
	}

	var tickets []*models.Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		log.Printf("listing cache entry for %s is corrupt: %v", key, err)
		return nil, false
	}
	return tickets, true
}

func (c *ListingCache) Set(ctx context.Context, key string, tickets []*models.Ticket) {
	if c == nil {
		return
	}

	data, err := json.Marshal(tickets)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		log.Printf("listing cache write failed for %s: %v", key, err)
	}
}

// Invalidate drops the cached listings affected by a mutation on a ticket
// of the given event.
func (c *ListingCache) Invalidate(ctx context.Context, eventID string) {
	if c == nil {
		return
	}

	keys := []string{listingCacheAllKey}
	if eventID != "" {
		keys = append(keys, listingCacheEventKey(eventID))
	}
	if err := c.redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("listing cache invalidation failed for event %s: %v", eventID, err)
	}
}
