package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/confspace/conference-service/internal/domain"
)

const (
	roomKeyPrefix = "conference:room:"
	roomIndexKey  = "conference:rooms:active"
)

// RedisStore keeps room documents under conference:room:<id> with a TTL and
// the set of active ids under conference:rooms:active.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(ctx context.Context, redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStore{client: client, ttl: ttl}, nil
}

func roomKey(id string) string {
	return roomKeyPrefix + id
}

func (s *RedisStore) SaveRoom(ctx context.Context, room *domain.Room) error {
	data, err := json.Marshal(room)
	if err != nil {
		return fmt.Errorf("marshal room: %w", err)
	}

	_, err = s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, roomKey(room.ID), data, s.ttl)
		p.SAdd(ctx, roomIndexKey, room.ID)
		p.Expire(ctx, roomIndexKey, s.ttl)
		return nil
	})
	return err
}

func (s *RedisStore) GetRoom(ctx context.Context, id string) (*domain.Room, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrRoomNotFound
		}
		return nil, err
	}

	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("unmarshal room %s: %w", id, err)
	}
	return &room, nil
}

func (s *RedisStore) DeleteRoom(ctx context.Context, id string) error {
	_, err := s.client.Pipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, roomKey(id))
		p.SRem(ctx, roomIndexKey, id)
		return nil
	})
	return err
}

func (s *RedisStore) ListRoomIDs(ctx context.Context) ([]string, error) {
	ids, err := s.client.SMembers(ctx, roomIndexKey).Result()
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
