// Package cache keeps live session snapshots and the action log in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/rummikube/internal/models"
	"github.com/redis/go-redis/v9"
)

// RedisClient is the subset of Redis commands the store uses, so tests can
// swap in a fake.
type RedisClient interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, keys ...string) error
	RPush(ctx context.Context, key string, values ...interface{}) error
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Ping(ctx context.Context) error
}

// goRedis adapts *redis.Client to RedisClient.
type goRedis struct {
	c *redis.Client
}

// NewClient connects to Redis at addr.
func NewClient(addr, password string, db int) (RedisClient, func() error) {
	c := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	return &goRedis{c: c}, c.Close
}

func (r *goRedis) Get(ctx context.Context, key string) (string, error) {
	return r.c.Get(ctx, key).Result()
}

func (r *goRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.c.Set(ctx, key, value, expiration).Err()
}

func (r *goRedis) Del(ctx context.Context, keys ...string) error {
	return r.c.Del(ctx, keys...).Err()
}

func (r *goRedis) RPush(ctx context.Context, key string, values ...interface{}) error {
	return r.c.RPush(ctx, key, values...).Err()
}

func (r *goRedis) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.c.LRange(ctx, key, start, stop).Result()
}

func (r *goRedis) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return r.c.Expire(ctx, key, expiration).Err()
}

func (r *goRedis) Ping(ctx context.Context) error {
	return r.c.Ping(ctx).Err()
}

// Store implements the session snapshot store and the action recorder.
type Store struct {
	client RedisClient
	ttl    time.Duration
}

// NewStore creates a store whose keys expire after ttl of inactivity.
// A zero ttl keeps keys forever.
func NewStore(client RedisClient, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// SaveSession stores the session snapshot, refreshing its expiry.
func (s *Store) SaveSession(ctx context.Context, rec models.SessionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(rec.PlayerID), data, s.ttl); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// LoadSession returns the stored snapshot, or models.ErrNotFound.
func (s *Store) LoadSession(ctx context.Context, playerID uuid.UUID) (*models.SessionRecord, error) {
	data, err := s.client.Get(ctx, sessionKey(playerID))
	if errors.Is(err, redis.Nil) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var rec models.SessionRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &rec, nil
}

// DeleteSession removes the player's snapshot.
func (s *Store) DeleteSession(ctx context.Context, playerID uuid.UUID) error {
	if err := s.client.Del(ctx, sessionKey(playerID)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RecordAction appends rec to the game's action list.
func (s *Store) RecordAction(ctx context.Context, rec models.ActionRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal action: %w", err)
	}
	key := actionsKey(rec.GameID)
	if err := s.client.RPush(ctx, key, string(data)); err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	if s.ttl > 0 {
		if err := s.client.Expire(ctx, key, s.ttl); err != nil {
			return fmt.Errorf("failed to refresh action log expiry: %w", err)
		}
	}
	return nil
}

// Actions returns the game's action log in the order it was written.
func (s *Store) Actions(ctx context.Context, gameID uuid.UUID) ([]models.ActionRecord, error) {
	items, err := s.client.LRange(ctx, actionsKey(gameID), 0, -1)
	if err != nil {
		return nil, fmt.Errorf("failed to read action log: %w", err)
	}
	out := make([]models.ActionRecord, 0, len(items))
	for _, item := range items {
		var rec models.ActionRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("failed to unmarshal action: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func sessionKey(playerID uuid.UUID) string {
	return fmt.Sprintf("rummikube:session:%s", playerID)
}

func actionsKey(gameID uuid.UUID) string {
	return fmt.Sprintf("rummikube:actions:%s", gameID)
}
