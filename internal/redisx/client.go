package redisx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// order_status:{order_id} -> JSON status view
	KeyOrderStatus = "order_status:%s"
)

var TTLStatusCache = 5 * time.Minute

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// StatusCache stores order status views with a TTL.
type StatusCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewStatusCache(rdb redis.Cmdable) *StatusCache {
	return &StatusCache{rdb: rdb, ttl: TTLStatusCache}
}

func statusKey(orderID string) string { return fmt.Sprintf(KeyOrderStatus, orderID) }

func (c *StatusCache) GetStatus(ctx context.Context, orderID string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, statusKey(orderID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *StatusCache) SetStatus(ctx context.Context, orderID, value string) error {
	return c.rdb.Set(ctx, statusKey(orderID), value, c.ttl).Err()
}

func (c *StatusCache) Delete(ctx context.Context, orderID string) error {
	return c.rdb.Del(ctx, statusKey(orderID)).Err()
}
