package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const redisKeyPrefix = "intake:session:"

type redisRepo struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRepository stores each session as one JSON value. Every save
// refreshes the ttl, so idle sessions expire.
func NewRedisRepository(client *redis.Client, ttl time.Duration) Repository {
	return &redisRepo{client: client, ttl: ttl}
}

func redisKey(id uuid.UUID) string {
	return redisKeyPrefix + id.String()
}

func (r *redisRepo) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	data, err := r.client.Get(ctx, redisKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *redisRepo) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, redisKey(s.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (r *redisRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.client.Del(ctx, redisKey(id)).Err()
}
