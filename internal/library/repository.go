package library

import "context"

// Repository persists book records
type Repository interface {
	Create(ctx context.Context, b *Book) error
	Get(ctx context.Context, id uint64) (*Book, error)
	List(ctx context.Context, offset, limit int) ([]Book, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uint64) error
}

// Cache is a read-through cache for single books.
// GetBook returns nil, nil on a miss.
type Cache interface {
	GetBook(ctx context.Context, id uint64) (*Book, error)
	SetBook(ctx context.Context, b *Book) error
	Invalidate(ctx context.Context, id uint64) error
}

// NopCache never stores anything
type NopCache struct{}

func (NopCache) GetBook(context.Context, uint64) (*Book, error) { return nil, nil }
func (NopCache) SetBook(context.Context, *Book) error            { return nil }
func (NopCache) Invalidate(context.Context, uint64) error        { return nil }
