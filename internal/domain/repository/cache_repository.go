package repository

import (
	"context"
	"time"

	"github.com/arthropod-dashboard/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// DeleteByPrefix удаляет все ключи с данным префиксом
	DeleteByPrefix(ctx context.Context, prefix string) error

	// GetOptions получает домены фильтров из кеша
	GetOptions(ctx context.Context) (*domain.FilterOptions, error)

	// SetOptions сохраняет домены фильтров в кеше
	SetOptions(ctx context.Context, options *domain.FilterOptions, ttl time.Duration) error

	// DeleteOptions удаляет домены фильтров из кеша
	DeleteOptions(ctx context.Context) error
}
