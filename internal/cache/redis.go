package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultTTL = 15 * time.Minute

// RedisCache хранит строки корзины в Redis как JSON под ключом cart:<owner_id>.
type RedisCache struct {
	client  redis.Cmdable
	baseTTL time.Duration
}

// NewRedisCache создаёт кэш; ttl <= 0 заменяется значением по умолчанию.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, ownerID int64) ([]domain.CartLine, error) {
	data, err := r.client.Get(ctx, cacheKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var lines []domain.CartLine
	if err := json.Unmarshal(data, &lines); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return lines, nil
}

// Set сохраняет строки с TTL и небольшим разбросом, чтобы ключи не истекали одновременно.
func (r *RedisCache) Set(ctx context.Context, ownerID int64, lines []domain.CartLine) error {
	payload, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	ttl := r.baseTTL + jitter(r.baseTTL)
	if err := r.client.Set(ctx, cacheKey(ownerID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, ownerID int64) error {
	if err := r.client.Del(ctx, cacheKey(ownerID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis для health-check.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func jitter(base time.Duration) time.Duration {
	spread := int64(base / 5)
	if spread <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(spread))
}

func cacheKey(ownerID int64) string {
	return fmt.Sprintf("cart:%d", ownerID)
}

var _ CartCache = (*RedisCache)(nil)
