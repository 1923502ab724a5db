package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Key patterns for live game data.
func worldKey(gameID string) string { return "game:" + gameID + ":world" }
func timerKey(gameID string) string { return "game:" + gameID + ":timer" }

// SetWorldState stores the live world snapshot JSON.
func (c *Client) SetWorldState(ctx context.Context, gameID string, state json.RawMessage) error {
	return c.rdb.Set(ctx, worldKey(gameID), []byte(state), 0).Err()
}

// GetWorldState retrieves the live world snapshot JSON. Returns nil when the
// cache holds nothing for the game; callers rehydrate from Postgres.
func (c *Client) GetWorldState(ctx context.Context, gameID string) (json.RawMessage, error) {
	data, err := c.rdb.Get(ctx, worldKey(gameID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get world state: %w", err)
	}
	return json.RawMessage(data), nil
}

// turnGracePeriod is the extra time after the displayed deadline before
// auto-advance triggers, giving players a few seconds of leeway.
const turnGracePeriod = 5 * time.Second

// SetTurnTimer creates a timer key with a TTL. When the key expires, Redis
// keyspace notifications trigger the auto-advance.
// The TTL includes a grace period so the key expires slightly after the displayed deadline.
func (c *Client) SetTurnTimer(ctx context.Context, gameID string, deadline time.Time) error {
	ttl := time.Until(deadline) + turnGracePeriod
	if ttl <= 0 {
		ttl = time.Second
	}
	return c.rdb.Set(ctx, timerKey(gameID), deadline.Unix(), ttl).Err()
}

// ClearTurnTimer removes the timer for a game.
func (c *Client) ClearTurnTimer(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, timerKey(gameID)).Err()
}

// DeleteGameData removes all Redis data for a game (on game end).
func (c *Client) DeleteGameData(ctx context.Context, gameID string) error {
	return c.rdb.Del(ctx, worldKey(gameID), timerKey(gameID)).Err()
}
