package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/support-portal/internal/domain"
)

const redisKeyPrefix = "session:"

// RedisStore keeps sessions in Redis with a TTL matching the remaining lifetime.
type RedisStore struct {
	client redis.UniversalClient
	now    func() time.Time
}

type redisRecord struct {
	UserID    string    `json:"userId"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+id).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	var record redisRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, err
	}
	sess := &domain.Session{
		ID:        id,
		UserID:    record.UserID,
		Username:  record.Username,
		CreatedAt: record.CreatedAt,
		ExpiresAt: record.ExpiresAt,
	}
	if sess.Expired(s.now()) {
		return nil, ErrNotFound
	}
	return sess, nil
}

func (s *RedisStore) Set(ctx context.Context, session *domain.Session) error {
	ttl := session.ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		return s.Destroy(ctx, session.ID)
	}
	payload, err := json.Marshal(redisRecord{
		UserID:    session.UserID,
		Username:  session.Username,
		CreatedAt: session.CreatedAt,
		ExpiresAt: session.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKeyPrefix+session.ID, payload, ttl).Err()
}

func (s *RedisStore) Destroy(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	return s.client.Del(ctx, redisKeyPrefix+id).Err()
}
