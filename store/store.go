// Package store 提供 core.Store / core.KeyValueStore / core.ListStore 的实现。
//
// 接口定义在 core 包，这里只有实现：
//
//	var kv core.KeyValueStore = store.NewMemoryStore()
//	var ls core.ListStore = redisStore
package store

import (
	"context"

	"github.com/rushteam/homerec/core"
)

// Open 按配置选择后端：配置了 Redis 地址则连接 Redis，否则使用内存存储。
func Open(ctx context.Context, cfg RedisConfig) (core.ListStore, error) {
	if cfg.Addr == "" {
		return NewMemoryStoreWithListTTL(cfg.ListTTL), nil
	}
	rs, err := NewRedisStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return rs, nil
}
