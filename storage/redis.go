package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wrenbin/wrenbin/models"
)

const redisKeyPrefix = "paste:"

// burnScript reads a paste and deletes it in the same script invocation
// when it is flagged burn-after-reading. Redis runs scripts atomically,
// so concurrent viewers of a burn paste race on one GET+DEL and only the
// first gets the value back.
var burnScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then
  return false
end
local p = cjson.decode(v)
if p['burn_after_reading'] then
  redis.call('DEL', KEYS[1])
end
return v
`)

// RedisStore implements PasteStore using Redis. Expiry maps onto native
// key TTLs, so expired pastes disappear on their own and lookups report
// them as plain absence rather than ErrExpired.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a new Redis storage backend.
func NewRedisStore(addr, password string, db int) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Store saves a paste with SET NX; a live occupant rejects the write and
// an expired one cannot exist because Redis has already dropped its key.
func (r *RedisStore) Store(paste *models.Paste) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var ttl time.Duration
	if paste.ExpiresAt != nil {
		ttl = time.Until(*paste.ExpiresAt)
		if ttl <= 0 {
			// Already expired, hence logically absent: nothing to write.
			return nil
		}
	}

	data, err := json.Marshal(paste)
	if err != nil {
		return fmt.Errorf("failed to marshal paste: %w", err)
	}

	ok, err := r.client.SetNX(ctx, redisKeyPrefix+paste.Key, data, ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to store paste: %w", err)
	}
	if !ok {
		return ErrKeyCollision
	}
	return nil
}

// Get retrieves a paste without consuming it.
func (r *RedisStore) Get(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	data, err := r.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get paste: %w", err)
	}

	var paste models.Paste
	if err := json.Unmarshal([]byte(data), &paste); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paste: %w", err)
	}
	if paste.IsExpired() {
		// TTL should have removed it already; clock skew between the
		// app and Redis can leave a sliver. Reclaim and report.
		_ = r.Delete(key)
		return nil, ErrExpired
	}
	return &paste, nil
}

// GetAndBurn retrieves a paste for the view path via the atomic burn
// script.
func (r *RedisStore) GetAndBurn(key string) (*models.Paste, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := burnScript.Run(ctx, r.client, []string{redisKeyPrefix + key}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to run burn script: %w", err)
	}

	data, ok := result.(string)
	if !ok {
		return nil, nil
	}
	var paste models.Paste
	if err := json.Unmarshal([]byte(data), &paste); err != nil {
		return nil, fmt.Errorf("failed to unmarshal paste: %w", err)
	}
	if paste.IsExpired() {
		_ = r.Delete(key)
		return nil, ErrExpired
	}
	return &paste, nil
}

// Delete removes a paste.
func (r *RedisStore) Delete(key string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return r.client.Del(ctx, redisKeyPrefix+key).Err()
}

// PurgeExpired is a no-op: Redis reclaims expired keys natively.
func (r *RedisStore) PurgeExpired() (int, error) {
	return 0, nil
}

// Close closes the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
