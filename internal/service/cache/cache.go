// Package cache 工具列表的短期缓存
package cache

import (
	"context"
	"time"
)

// Cache 列表缓存
// 任何写操作成功后都应调用 Invalidate
type Cache interface {
	// Get 读取缓存，未命中或已过期返回 ok=false
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	// Set 写入缓存
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate 清空全部列表缓存
	Invalidate(ctx context.Context) error
}
