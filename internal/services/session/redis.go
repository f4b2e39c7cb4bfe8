package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	redisstorage "catalog_admin/internal/storage/redis"
)

// RedisStore shares sessions across panel replicas.
type RedisStore struct {
	client *redisstorage.Client
}

func NewRedisStore(client *redisstorage.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) Save(ctx context.Context, sid string, s Session, ttl time.Duration) error {
	const op = "session.RedisStore.Save"

	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.client.Set(ctx, sessionKey(sid), raw, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *RedisStore) Get(ctx context.Context, sid string) (Session, error) {
	const op = "session.RedisStore.Get"

	raw, err := r.client.Get(ctx, sessionKey(sid)).Bytes()
	if err == redis.Nil {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	return s, nil
}

func (r *RedisStore) Delete(ctx context.Context, sid string) error {
	const op = "session.RedisStore.Delete"

	if err := r.client.Del(ctx, sessionKey(sid)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func sessionKey(sid string) string {
	return "session:" + sid
}
