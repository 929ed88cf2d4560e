package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// consumeScript compares-and-deletes atomically so a confirmation token can
// be consumed at most once, even under concurrent confirm requests.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return 0
`)

// RedisTokenStore keeps email confirmation tokens in Redis with a TTL.
// Minting again for the same user replaces the outstanding token.
type RedisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) (*RedisTokenStore, error) {
	if rdb == nil {
		return nil, errors.New("users: redis client is required")
	}
	if ttl <= 0 {
		return nil, errors.New("users: token ttl must be > 0")
	}
	return &RedisTokenStore{rdb: rdb, ttl: ttl}, nil
}

func confirmKey(userID string) string {
	return "email_confirm:" + userID
}

func (s *RedisTokenStore) Mint(ctx context.Context, userID string) (string, error) {
	if userID == "" {
		return "", errors.New("users: user id is required")
	}
	token := uuid.NewString()
	if err := s.rdb.Set(ctx, confirmKey(userID), token, s.ttl).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (s *RedisTokenStore) Consume(ctx context.Context, userID, token string) (bool, error) {
	if userID == "" || token == "" {
		return false, nil
	}
	res, err := consumeScript.Run(ctx, s.rdb, []string{confirmKey(userID)}, token).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
