package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// AvailabilityCache はイベントの残席数のキャッシュを管理する
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	return &AvailabilityCache{client: client, ttl: ttl}
}

// GetAvailableSeats はイベントの残席数をキャッシュから取得する
func (c *AvailabilityCache) GetAvailableSeats(ctx context.Context, eventID string) (int, error) {
	val, err := c.client.Get(ctx, availabilityKey(eventID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetAvailableSeats はイベントの残席数をキャッシュに保存する
func (c *AvailabilityCache) SetAvailableSeats(ctx context.Context, eventID string, seats int) error {
	if err := c.client.Set(ctx, availabilityKey(eventID), seats, c.ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はイベントのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, eventID string) error {
	if err := c.client.Del(ctx, availabilityKey(eventID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func availabilityKey(eventID string) string {
	return fmt.Sprintf("availability:event:%s", eventID)
}
