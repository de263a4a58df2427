package auth

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Denylist records revoked token ids until the token would have expired anyway.
type Denylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// MemoryDenylist keeps revoked ids in process memory. Call Prune periodically.
type MemoryDenylist struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
}

func NewMemoryDenylist() *MemoryDenylist {
	return &MemoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *MemoryDenylist) Revoke(_ context.Context, jti string, until time.Time) error {
	d.mu.Lock()
	d.revoked[jti] = until
	d.mu.Unlock()
	return nil
}

func (d *MemoryDenylist) IsRevoked(_ context.Context, jti string) (bool, error) {
	d.mu.RLock()
	_, ok := d.revoked[jti]
	d.mu.RUnlock()
	return ok, nil
}

// Prune drops entries whose tokens have expired by now and returns how many were removed.
func (d *MemoryDenylist) Prune(now time.Time) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for jti, until := range d.revoked {
		if !until.After(now) {
			delete(d.revoked, jti)
			n++
		}
	}
	return n
}

// Len is the number of tracked ids.
func (d *MemoryDenylist) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.revoked)
}

const redisKeyPrefix = "revoked:"

// RedisDenylist stores revoked ids as expiring keys, so no pruning is needed.
type RedisDenylist struct {
	client *redis.Client
}

func NewRedisDenylist(client *redis.Client) *RedisDenylist {
	return &RedisDenylist{client: client}
}

// DialRedis connects and pings with a short timeout.
func DialRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	return client, nil
}

func (d *RedisDenylist) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return errors.Wrap(d.client.Set(ctx, redisKeyPrefix+jti, "1", ttl).Err(), "redis revoke")
}

func (d *RedisDenylist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := d.client.Exists(ctx, redisKeyPrefix+jti).Result()
	if err != nil {
		return false, errors.Wrap(err, "redis lookup")
	}
	return n > 0, nil
}
