package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/legalbot/jai/internal/config"
	"github.com/legalbot/jai/internal/models"
)

const redisKeyPrefix = "chat:"

// RedisStore keeps conversation history in a Redis list per session. Turns
// are JSON encoded, RPUSHed in ask order, and expire together with the
// session cookie.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
// ttl should match the session expiry so orphaned histories age out.
func NewRedisStore(cfg config.ChatConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

// Append pushes a turn onto the session's list and refreshes its TTL.
func (r *RedisStore) Append(ctx context.Context, sessionID string, turn models.ConversationTurn) error {
	if turn.AskedAt.IsZero() {
		turn.AskedAt = time.Now()
	}
	data, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("failed to encode turn: %w", err)
	}

	key := redisKey(sessionID)
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append turn: %w", err)
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set history expiry: %w", err)
		}
	}
	return nil
}

// History returns the session's turns oldest first.
func (r *RedisStore) History(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	items, err := r.client.LRange(ctx, redisKey(sessionID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	turns := make([]models.ConversationTurn, 0, len(items))
	for _, item := range items {
		var turn models.ConversationTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("failed to decode turn: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

// Clear deletes the session's history.
func (r *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (r *RedisStore) Close() error {
	return r.client.Close()
}
