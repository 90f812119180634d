package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rushteam/evrank/core"
)

// RedisOptions 是 RedisStore 的连接参数。零值使用 go-redis 默认超时。
type RedisOptions struct {
	DialTimeout time.Duration
	ReadTimeout time.Duration
}

// RedisStore 是 Redis 实现的只读 Store。
// 兼容 Upstash：使用 rediss:// 地址，token 作为密码。
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 按地址创建并 Ping 一次，连接失败时直接返回错误。
func NewRedisStore(ctx context.Context, addr string, db int, opts RedisOptions) (*RedisStore, error) {
	return newRedisStore(ctx, &redis.Options{
		Addr:        addr,
		DB:          db,
		DialTimeout: opts.DialTimeout,
		ReadTimeout: opts.ReadTimeout,
	})
}

// NewRedisStoreFromURL 按 redis:// 或 rediss:// URL 创建。
func NewRedisStoreFromURL(ctx context.Context, url string, opts RedisOptions) (*RedisStore, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opts.DialTimeout > 0 {
		ro.DialTimeout = opts.DialTimeout
	}
	if opts.ReadTimeout > 0 {
		ro.ReadTimeout = opts.ReadTimeout
	}
	return newRedisStore(ctx, ro)
}

func newRedisStore(ctx context.Context, ro *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", ro.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func (r *RedisStore) Name() string { return "redis" }

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, core.ErrStoreNotFound
	}
	return val, err
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

var _ core.Store = (*RedisStore)(nil)
