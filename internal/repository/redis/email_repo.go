package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCodeNotFound = errors.New("code not found or expired")
	ErrSendTooOften = errors.New("code requested too often")
)

const (
	emailCodePrefix = "email:code"
	emailCoolPrefix = "email:cool"
	CodeTTL         = 10 * time.Minute
	sendCooldown    = time.Minute
)

// EmailRepository 验证码存储，带发送冷却
type EmailRepository struct{}

func codeKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", emailCodePrefix, scope, email)
}

func coolKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s", emailCoolPrefix, scope, email)
}

// SaveCode 冷却期内重复请求直接拒绝
func (r *EmailRepository) SaveCode(scope, email, code string) error {
	ctx := context.Background()
	ok, err := Client.SetNX(ctx, coolKey(scope, email), 1, sendCooldown).Result()
	if err != nil {
		return ErrRedisUnavailable
	}
	if !ok {
		return ErrSendTooOften
	}
	return Client.Set(ctx, codeKey(scope, email), code, CodeTTL).Err()
}

// TakeCode 取出并删除，验证码只能用一次
func (r *EmailRepository) TakeCode(scope, email string) (string, error) {
	ctx := context.Background()
	code, err := Client.GetDel(ctx, codeKey(scope, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return code, nil
}
