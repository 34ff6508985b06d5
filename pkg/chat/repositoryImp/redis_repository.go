package repositoryImp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"cropdoc/entities"
	"cropdoc/pkg/chat/repository"
)

const keyPrefix = "cropdoc:chat:"

type redisRepo struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis stores sessions as JSON values. ttl <= 0 keeps them forever.
func NewRedis(rdb *redis.Client, ttl time.Duration) repository.ChatHistoryRepository {
	return &redisRepo{rdb: rdb, ttl: ttl}
}

type storedSession struct {
	Messages  []entities.ChatMessage `json:"messages"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func sessionKey(id string) string { return keyPrefix + id }

func (r *redisRepo) Load(ctx context.Context, sessionID string) ([]entities.ChatMessage, error) {
	raw, err := r.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var s storedSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return s.Messages, nil
}

func (r *redisRepo) Save(ctx context.Context, sessionID string, msgs []entities.ChatMessage) error {
	data, err := json.Marshal(storedSession{Messages: msgs, UpdatedAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ttl := r.ttl
	if ttl < 0 {
		ttl = 0
	}
	if err := r.rdb.Set(ctx, sessionKey(sessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}
