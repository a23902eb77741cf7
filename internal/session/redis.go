package session

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tabishkhalil463/FeastDash/internal/domain"
)

// RedisStore keeps sessions under session:<id> with a TTL, so abandoned
// sessions expire on their own.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (r *RedisStore) key(id string) string { return "session:" + id }

func (r *RedisStore) Create(ctx context.Context, s *Session) error {
	return r.save(ctx, s)
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := r.Client.Get(ctx, r.key(id)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RedisStore) UpdateTokens(ctx context.Context, id, access, refresh string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.AccessToken = access
	s.RefreshToken = refresh
	return r.save(ctx, s)
}

func (r *RedisStore) UpdateUser(ctx context.Context, id string, user domain.User) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.User = user
	return r.save(ctx, s)
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	return r.Client.Del(ctx, r.key(id)).Err()
}

func (r *RedisStore) save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	return r.Client.Set(ctx, r.key(s.ID), data, r.TTL).Err()
}

var _ Store = (*RedisStore)(nil)
