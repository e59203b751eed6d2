// Package cache хранит JSON-значения в Redis: кэш профилей и правил расходов,
// одноразовые коды перехода в веб-версию и отметки обработанных событий Stripe.
// Все ключи получают общий префикс из конфига.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/barbershop-manager/internal/config"
)

// Cache обёртка над клиентом Redis.
type Cache struct {
	db     *redis.Client
	prefix string
}

// InitServer подключается к Redis и проверяет соединение.
func InitServer(ctx context.Context, cfg config.RedisConnection) (*Cache, error) {
	const op = "cache.InitServer"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	c := &Cache{db: db, prefix: cfg.KeyPrefix}
	if err := c.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (c *Cache) key(k string) string {
	return c.prefix + k
}

// Ping проверяет соединение, используется в /health.
func (c *Cache) Ping(ctx context.Context) error {
	return c.db.Ping(ctx).Err()
}

// Get читает значение в result. Возвращает false, если ключа нет.
func (c *Cache) Get(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Get"
	val, err := c.db.Get(ctx, c.key(key)).Bytes()
	return decode(op, val, err, result)
}

// Take атомарно читает и удаляет значение (GETDEL).
func (c *Cache) Take(ctx context.Context, key string, result any) (bool, error) {
	const op = "cache.Take"
	val, err := c.db.GetDel(ctx, c.key(key)).Bytes()
	return decode(op, val, err, result)
}

func decode(op string, val []byte, err error, result any) (bool, error) {
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if err = json.Unmarshal(val, result); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}

// Set сохраняет значение в JSON с временем жизни expiration.
func (c *Cache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	const op = "cache.Set"
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err = c.db.Set(ctx, c.key(key), data, expiration).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Claim ставит отметку на ttl (SET NX). true означает, что отметки ещё не было
// и вызывающий первым занял ключ.
func (c *Cache) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	const op = "cache.Claim"
	ok, err := c.db.SetNX(ctx, c.key(key), time.Now().UTC().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return ok, nil
}

// Invalidate удаляет ключ.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	const op = "cache.Invalidate"
	if err := c.db.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает соединение.
func (c *Cache) Close() error {
	return c.db.Close()
}
