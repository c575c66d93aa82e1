package library

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memRepo struct {
	mu     sync.Mutex
	nextID uint64
	books  map[uint64]Book

	createErr error
	gets      int
}

func newMemRepo() *memRepo {
	return &memRepo{books: map[uint64]Book{}}
}

func (r *memRepo) Create(_ context.Context, b *Book) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	b.ID = r.nextID
	r.books[b.ID] = *b
	return nil
}

func (r *memRepo) Get(_ context.Context, id uint64) (*Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gets++
	b, ok := r.books[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &b, nil
}

func (r *memRepo) List(_ context.Context, offset, limit int) ([]Book, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]uint64, 0, len(r.books))
	for id := range r.books {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []Book
	for i := offset; i < len(ids) && len(out) < limit; i++ {
		out = append(out, r.books[ids[i]])
	}
	return out, nil
}

func (r *memRepo) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.books)), nil
}

func (r *memRepo) Delete(_ context.Context, id uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.books[id]; !ok {
		return ErrNotFound
	}
	delete(r.books, id)
	return nil
}

type memCache struct {
	books       map[uint64]Book
	invalidated []uint64
	readErr     error
}

func newMemCache() *memCache {
	return &memCache{books: map[uint64]Book{}}
}

func (c *memCache) GetBook(_ context.Context, id uint64) (*Book, error) {
	if c.readErr != nil {
		return nil, c.readErr
	}
	b, ok := c.books[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (c *memCache) SetBook(_ context.Context, b *Book) error {
	c.books[b.ID] = *b
	return nil
}

func (c *memCache) Invalidate(_ context.Context, id uint64) error {
	delete(c.books, id)
	c.invalidated = append(c.invalidated, id)
	return nil
}

var errDown = errors.New("database down")
