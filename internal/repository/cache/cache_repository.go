package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/arthropod-dashboard/internal/domain"
	"github.com/arthropod-dashboard/internal/domain/repository"
)

const optionsKey = "options:current"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

// DeleteByPrefix инвалидирует все ключи с данным префиксом. Используется
// при перезагрузке датасета, чтобы сбросить закешированные агрегаты.
func (r *cacheRepository) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := r.client.Scan(ctx, 0, prefix+"*", 0).Iterator()

	deleted := 0
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			r.logger.Error("Failed to delete from cache",
				zap.String("key", iter.Val()), zap.Error(err))
			return fmt.Errorf("cache delete error: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("cache scan error: %w", err)
	}

	r.logger.Debug("Cache prefix invalidated",
		zap.String("prefix", prefix), zap.Int("deleted", deleted))
	return nil
}

// GetOptions получает домены фильтров из кеша
func (r *cacheRepository) GetOptions(ctx context.Context) (*domain.FilterOptions, error) {
	data, err := r.Get(ctx, optionsKey)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var options domain.FilterOptions
	if err := json.Unmarshal(data, &options); err != nil {
		r.logger.Error("Failed to unmarshal options from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal options: %w", err)
	}

	return &options, nil
}

// SetOptions сохраняет домены фильтров в кеше
func (r *cacheRepository) SetOptions(ctx context.Context, options *domain.FilterOptions, ttl time.Duration) error {
	data, err := json.Marshal(options)
	if err != nil {
		r.logger.Error("Failed to marshal options", zap.Error(err))
		return fmt.Errorf("marshal options: %w", err)
	}

	return r.Set(ctx, optionsKey, data, ttl)
}

// DeleteOptions удаляет домены фильтров из кеша
func (r *cacheRepository) DeleteOptions(ctx context.Context) error {
	return r.Delete(ctx, optionsKey)
}
