package database

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/providers"
	"github.com/bookbridge/librental/internal/domain/repositories"
)

// catalogCacheTTL bounds how stale the unfiltered catalog read may be.
const catalogCacheTTL = 30 // seconds

// Cache keys. Everything lives under books:* so the invalidation service can
// clear the namespace with one pattern delete.
const (
	catalogCacheKey     = "books:all"
	catalogCachePattern = "books:*"
)

// CachedBookAdapter wraps a BookRepository with a short-lived cache. Only
// the catalog-wide list is cached; every filtered or by-id read goes
// straight to the database so members never see stale search results.
type CachedBookAdapter struct {
	adapter repositories.BookRepository
	cache   providers.CacheProvider
}

// NewCachedBookAdapter creates a new cached book adapter
func NewCachedBookAdapter(adapter repositories.BookRepository, cache providers.CacheProvider) repositories.BookRepository {
	return &CachedBookAdapter{
		adapter: adapter,
		cache:   cache,
	}
}

// List retrieves books, serving the catalog-wide read from cache when fresh
func (a *CachedBookAdapter) List(ctx context.Context, filter repositories.BookFilter) ([]*entities.Book, error) {
	if !filter.IsCatalogWide() {
		return a.adapter.List(ctx, filter)
	}

	if cached, err := a.cache.Get(ctx, catalogCacheKey); err == nil {
		var books []*entities.Book
		if err := json.Unmarshal(cached, &books); err == nil {
			return books, nil
		}
		log.Warn().Err(err).Msg("failed to unmarshal cached catalog")
	}

	books, err := a.adapter.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(books); err == nil {
		if err := a.cache.Set(ctx, catalogCacheKey, data, catalogCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to cache catalog")
		}
	}

	return books, nil
}

// GetByID retrieves a book by ID, bypassing the cache
func (a *CachedBookAdapter) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	return a.adapter.GetByID(ctx, id)
}

// FindAvailableByTitle bypasses the cache
func (a *CachedBookAdapter) FindAvailableByTitle(ctx context.Context, title string) (*entities.Book, error) {
	return a.adapter.FindAvailableByTitle(ctx, title)
}

// Create creates a book and drops the cached catalog
func (a *CachedBookAdapter) Create(ctx context.Context, book *entities.Book) error {
	if err := a.adapter.Create(ctx, book); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

// Update updates a book and drops the cached catalog
func (a *CachedBookAdapter) Update(ctx context.Context, book *entities.Book) error {
	if err := a.adapter.Update(ctx, book); err != nil {
		return err
	}
	a.invalidate(ctx)
	return nil
}

func (a *CachedBookAdapter) invalidate(ctx context.Context) {
	if err := a.cache.DeletePattern(ctx, catalogCachePattern); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate catalog cache")
	}
}
