package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const blacklistPrefix = "blacklist:access:"

// Blacklist records revoked access tokens until they would have expired anyway.
// With a nil Redis client entries live in process memory.
type Blacklist struct {
	client *redis.Client

	mu    sync.Mutex
	local map[string]time.Time
}

func NewBlacklist(client *redis.Client) *Blacklist {
	return &Blacklist{client: client, local: make(map[string]time.Time)}
}

func (b *Blacklist) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if b.client != nil {
		return b.client.Set(ctx, blacklistPrefix+token, "1", ttl).Err()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	for k, exp := range b.local {
		if now.After(exp) {
			delete(b.local, k)
		}
	}
	b.local[token] = now.Add(ttl)
	return nil
}

func (b *Blacklist) Contains(ctx context.Context, token string) (bool, error) {
	if b.client != nil {
		n, err := b.client.Exists(ctx, blacklistPrefix+token).Result()
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	exp, ok := b.local[token]
	return ok && time.Now().Before(exp), nil
}
