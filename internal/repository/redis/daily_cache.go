package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	resultKeyPrefix = "daily:results" // daily:results:poll:<id> / daily:results:quiz:<id>
	resultTTL       = 48 * time.Hour
)

// DailyResultCache 只缓存历史日实例的结果 JSON。过去的投票/答题不再变化，
// 不需要失效逻辑；当天的结果永远现算，保证门控和计数都是实时的。
type DailyResultCache struct{}

func resultKey(kind string, id uint64) string {
	return fmt.Sprintf("%s:%s:%d", resultKeyPrefix, kind, id)
}

func (c *DailyResultCache) Get(ctx context.Context, kind string, id uint64) (string, bool) {
	if Client == nil {
		return "", false
	}
	v, err := Client.Get(ctx, resultKey(kind, id)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *DailyResultCache) Set(ctx context.Context, kind string, id uint64, payload string) {
	if Client == nil {
		return
	}
	// 写失败忽略，下次读自然回源
	_ = Client.Set(ctx, resultKey(kind, id), payload, resultTTL).Err()
}
