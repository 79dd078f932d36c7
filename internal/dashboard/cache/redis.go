// Package cache keeps computed dashboards in redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"crm_backend/internal/dashboard/transport"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "dashboard"

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func key(tenantID, userID uuid.UUID) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, tenantID, userID)
}

func (c *RedisCache) Get(ctx context.Context, tenantID, userID uuid.UUID) (transport.DashboardResponse, bool, error) {
	data, err := c.client.Get(ctx, key(tenantID, userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return transport.DashboardResponse{}, false, nil
	}
	if err != nil {
		return transport.DashboardResponse{}, false, err
	}

	var resp transport.DashboardResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return transport.DashboardResponse{}, false, fmt.Errorf("decode cached dashboard: %w", err)
	}
	return resp, true, nil
}

func (c *RedisCache) Set(ctx context.Context, tenantID, userID uuid.UUID, resp transport.DashboardResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key(tenantID, userID), data, c.ttl).Err()
}

// InvalidateTenant deletes the cached dashboards of every user of the tenant.
func (c *RedisCache) InvalidateTenant(ctx context.Context, tenantID uuid.UUID) error {
	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, tenantID)
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
