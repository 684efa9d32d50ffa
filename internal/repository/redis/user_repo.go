package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const (
	userTokenPrefix = "login:user:token"
	userTokenTTL    = 30 * time.Minute
)

// UserRepository 登录态存储：一个用户只保留最新的 access token
type UserRepository struct{}

func tokenKey(userID uint64) string {
	return fmt.Sprintf("%s:%d", userTokenPrefix, userID)
}

func (r *UserRepository) SetUserToken(userID uint64, token string) error {
	if err := Client.Set(context.Background(), tokenKey(userID), token, userTokenTTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *UserRepository) GetUserToken(userID uint64) (string, error) {
	token, err := Client.Get(context.Background(), tokenKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// ExtendUserToken 校验通过后顺延过期时间
func (r *UserRepository) ExtendUserToken(userID uint64) error {
	return Client.Expire(context.Background(), tokenKey(userID), userTokenTTL).Err()
}

func (r *UserRepository) DeleteUserToken(userID uint64) error {
	return Client.Del(context.Background(), tokenKey(userID)).Err()
}
