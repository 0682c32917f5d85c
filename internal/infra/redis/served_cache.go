// Package redis caches each participant's served-question hashes in a Redis
// set, fronting the relational store. The selector consults this set on
// every serve; caching it keeps the hot path off Postgres.
package redis

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizlive/internal/app"
	"quizlive/internal/domain"
)

// ServedCache decorates an app.Store: served hashes are read through a
// per-participant Redis SET (quiz:served:{participantID}) with a jittered
// TTL, loaded via singleflight on miss, and kept coherent on writes.
// All other Store operations pass through.
type ServedCache struct {
	app.Store
	client *redis.Client
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewServedCache(inner app.Store, client *redis.Client, ttl time.Duration) *ServedCache {
	return &ServedCache{
		Store:  inner,
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *ServedCache) ServedHashes(ctx context.Context, participantID string) ([]string, error) {
	key := c.key(participantID)

	hashes, err := c.client.SMembers(ctx, key).Result()
	if err == nil && len(hashes) > 0 {
		return hashes, nil
	}

	result, err, _ := c.sf.Do(participantID, func() (interface{}, error) {
		// Re-check in case another goroutine filled the set.
		hashes, err := c.client.SMembers(ctx, key).Result()
		if err == nil && len(hashes) > 0 {
			return hashes, nil
		}

		hashes, err = c.Store.ServedHashes(ctx, participantID)
		if err != nil {
			return nil, err
		}
		if len(hashes) > 0 {
			members := make([]interface{}, len(hashes))
			for i, h := range hashes {
				members[i] = h
			}
			pipe := c.client.Pipeline()
			pipe.SAdd(ctx, key, members...)
			if ttl := c.ttlWithJitter(); ttl > 0 {
				pipe.Expire(ctx, key, ttl)
			}
			_, _ = pipe.Exec(ctx)
		}
		return hashes, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]string), nil
}

func (c *ServedCache) RecordServe(ctx context.Context, served domain.ServedQuestion, progress domain.Progress) error {
	if err := c.Store.RecordServe(ctx, served, progress); err != nil {
		return err
	}
	// Keep the set coherent; on cache failure drop the key so the next read
	// rebuilds from the store.
	if err := c.client.SAdd(ctx, c.key(served.ParticipantID), served.QuestionHash).Err(); err != nil {
		_ = c.client.Del(ctx, c.key(served.ParticipantID)).Err()
	}
	return nil
}

func (c *ServedCache) ResetParticipant(ctx context.Context, participantID, liveID string) error {
	if err := c.Store.ResetParticipant(ctx, participantID, liveID); err != nil {
		return err
	}
	_ = c.client.Del(ctx, c.key(participantID)).Err()
	return nil
}

func (c *ServedCache) key(participantID string) string {
	return "quiz:served:" + participantID
}

func (c *ServedCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
