package services

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
)

const categoryCacheSize = 64

// CategoryReader is the storage surface of the registry.
type CategoryReader interface {
	ListCategories(ctx context.Context, kind core.Kind) ([]core.Category, error)
	GetCategory(ctx context.Context, id string) (core.Category, error)
}

// CategoryService is the read-only category registry. Categories are
// seeded by migration and never change at runtime, so cached entries only
// leave the cache by TTL or size.
type CategoryService struct {
	store  CategoryReader
	cache  *cache.LRUCache[core.Category]
	group  singleflight.Group
	logger *log.Logger
}

func NewCategoryService(store CategoryReader, ttl time.Duration, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.Default(log.ComponentCategories)
	}
	return &CategoryService{
		store:  store,
		cache:  cache.NewLRUCache[core.Category](categoryCacheSize, ttl),
		logger: logger,
	}
}

// List returns categories ordered by name; an empty kind lists all.
func (s *CategoryService) List(ctx context.Context, kind core.Kind) ([]core.Category, error) {
	if kind != "" && !kind.Valid() {
		return nil, core.NewValidationError(core.FieldKind, core.ErrInvalidKind)
	}
	cats, err := s.store.ListCategories(ctx, kind)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		s.cache.Set(c.ID, c)
	}
	return cats, nil
}

// Get resolves one category. Concurrent misses for the same id share a
// single storage read.
func (s *CategoryService) Get(ctx context.Context, id string) (core.Category, error) {
	if c, ok := s.cache.Get(id); ok {
		return c, nil
	}

	v, err, shared := s.group.Do(id, func() (any, error) {
		c, err := s.store.GetCategory(ctx, id)
		if err != nil {
			return core.Category{}, err
		}
		s.cache.Set(id, c)
		return c, nil
	})
	if err != nil {
		return core.Category{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "Shared category lookup", log.FieldCategoryID, id)
	}
	return v.(core.Category), nil
}

// Exists reports whether id names a category. Only storage failures are errors.
func (s *CategoryService) Exists(ctx context.Context, id string) (bool, error) {
	_, err := s.Get(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case core.IsNotFound(err):
		return false, nil
	default:
		return false, err
	}
}

// Cache exposes the lookup cache for sweeping and metrics.
func (s *CategoryService) Cache() *cache.LRUCache[core.Category] {
	return s.cache
}
