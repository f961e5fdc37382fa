package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookbridge/librental/internal/domain/entities"
	"github.com/bookbridge/librental/internal/domain/repositories"
	apperrors "github.com/bookbridge/librental/pkg/errors"
)

type memoryCache struct {
	data    map[string][]byte
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, error) {
	value, ok := c.data[key]
	if !ok {
		return nil, apperrors.NewNotFoundError("key not found")
	}
	return value, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	c.data[key] = value
	return nil
}

func (c *memoryCache) Delete(ctx context.Context, key string) error {
	delete(c.data, key)
	return nil
}

func (c *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	c.data = map[string][]byte{}
	return nil
}

func (c *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := c.data[key]
	return ok, nil
}

type countingBookRepo struct {
	books []*entities.Book
	lists int
}

func (r *countingBookRepo) Create(ctx context.Context, book *entities.Book) error {
	r.books = append(r.books, book)
	return nil
}

func (r *countingBookRepo) GetByID(ctx context.Context, id string) (*entities.Book, error) {
	for _, b := range r.books {
		if b.ID == id {
			return b, nil
		}
	}
	return nil, apperrors.NewNotFoundError("book not found")
}

func (r *countingBookRepo) Update(ctx context.Context, book *entities.Book) error { return nil }

func (r *countingBookRepo) List(ctx context.Context, filter repositories.BookFilter) ([]*entities.Book, error) {
	r.lists++
	return r.books, nil
}

func (r *countingBookRepo) FindAvailableByTitle(ctx context.Context, title string) (*entities.Book, error) {
	return nil, apperrors.NewNotFoundError("no available book matches this title")
}

func TestCachedList_ServesSecondCatalogReadFromCache(t *testing.T) {
	repo := &countingBookRepo{books: []*entities.Book{{ID: "bk1", Title: "Cached"}}}
	cache := newMemoryCache()
	adapter := NewCachedBookAdapter(repo, cache)

	filter := repositories.BookFilter{OrderByCreatedDesc: true}

	first, err := adapter.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.lists)

	second, err := adapter.List(context.Background(), filter)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "bk1", second[0].ID)
	assert.Equal(t, 1, repo.lists, "second catalog read should not hit the database")
}

func TestCachedList_FilteredReadsBypassCache(t *testing.T) {
	repo := &countingBookRepo{}
	cache := newMemoryCache()
	adapter := NewCachedBookAdapter(repo, cache)

	_, err := adapter.List(context.Background(), repositories.BookFilter{Genre: "Classic"})
	require.NoError(t, err)
	_, err = adapter.List(context.Background(), repositories.BookFilter{Genre: "Classic"})
	require.NoError(t, err)

	assert.Equal(t, 2, repo.lists)
	assert.Empty(t, cache.data)
}

func TestCachedCreate_InvalidatesCatalog(t *testing.T) {
	repo := &countingBookRepo{}
	cache := newMemoryCache()
	adapter := NewCachedBookAdapter(repo, cache)

	// Warm the cache
	_, err := adapter.List(context.Background(), repositories.BookFilter{})
	require.NoError(t, err)

	err = adapter.Create(context.Background(), &entities.Book{ID: "bk2"})
	require.NoError(t, err)

	assert.Contains(t, cache.deleted, "books:*")
	assert.Empty(t, cache.data)
}
