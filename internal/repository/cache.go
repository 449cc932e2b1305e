package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shenikar/border_conflict_monitor/internal/apperrors"
	"github.com/shenikar/border_conflict_monitor/internal/models"
	"github.com/shenikar/border_conflict_monitor/internal/service"
)

const snapshotCacheKey = "conflict:snapshot"

// SnapshotCache хранит последний снимок в Redis
type SnapshotCache struct {
	redisClient *redis.Client
	ttl         time.Duration
}

func NewSnapshotCache(redisClient *redis.Client, ttl time.Duration) service.SnapshotCache {
	return &SnapshotCache{
		redisClient: redisClient,
		ttl:         ttl,
	}
}

// GetSnapshot возвращает снимок из кеша или nil, nil при промахе
func (c *SnapshotCache) GetSnapshot(ctx context.Context) (*models.ConflictSnapshot, error) {
	val, err := c.redisClient.Get(ctx, snapshotCacheKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, &apperrors.TransportError{Service: apperrors.ServiceRedis, Op: "get snapshot", Err: err}
	}

	snapshot := &models.ConflictSnapshot{}
	if err := json.Unmarshal(val, snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot from cache: %w", err)
	}
	return snapshot, nil
}

// SetSnapshot сохраняет снимок в кеш
func (c *SnapshotCache) SetSnapshot(ctx context.Context, snapshot *models.ConflictSnapshot) error {
	val, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for cache: %w", err)
	}
	if err := c.redisClient.Set(ctx, snapshotCacheKey, val, c.ttl).Err(); err != nil {
		return &apperrors.TransportError{Service: apperrors.ServiceRedis, Op: "set snapshot", Err: err}
	}
	return nil
}

// InvalidateSnapshot удаляет снимок из кеша
func (c *SnapshotCache) InvalidateSnapshot(ctx context.Context) error {
	if err := c.redisClient.Del(ctx, snapshotCacheKey).Err(); err != nil {
		return &apperrors.TransportError{Service: apperrors.ServiceRedis, Op: "invalidate snapshot", Err: err}
	}
	return nil
}
