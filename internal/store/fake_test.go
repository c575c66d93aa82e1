package store

import (
	"context"
	"errors"
	"sync"

	"github.com/billmal071/pavilion/internal/api"
)

// fakeClient is an api.Client whose behavior is set per test
type fakeClient struct {
	mu sync.Mutex

	listFn    func(ctx context.Context, page, pageSize int) (*api.BookPage, error)
	getFn     func(ctx context.Context, id string) (*api.Book, error)
	createFn  func(ctx context.Context, book api.NewBook) (*api.Book, error)
	deleteFn  func(ctx context.Context, id string) error
	contentFn func(ctx context.Context, id string) (string, error)

	listCalls [][2]int
}

var errNotConfigured = errors.New("not configured")

func (f *fakeClient) ListBooks(ctx context.Context, page, pageSize int) (*api.BookPage, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, [2]int{page, pageSize})
	fn := f.listFn
	f.mu.Unlock()
	if fn == nil {
		return nil, errNotConfigured
	}
	return fn(ctx, page, pageSize)
}

func (f *fakeClient) GetBook(ctx context.Context, id string) (*api.Book, error) {
	if f.getFn == nil {
		return nil, errNotConfigured
	}
	return f.getFn(ctx, id)
}

func (f *fakeClient) CreateBook(ctx context.Context, book api.NewBook) (*api.Book, error) {
	if f.createFn == nil {
		return nil, errNotConfigured
	}
	return f.createFn(ctx, book)
}

func (f *fakeClient) DeleteBook(ctx context.Context, id string) error {
	if f.deleteFn == nil {
		return errNotConfigured
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeClient) GetBookContent(ctx context.Context, id string) (string, error) {
	if f.contentFn == nil {
		return "", errNotConfigured
	}
	return f.contentFn(ctx, id)
}

func (f *fakeClient) ListCalls() [][2]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][2]int, len(f.listCalls))
	copy(out, f.listCalls)
	return out
}

func pageOf(total int64, ids ...uint64) *api.BookPage {
	books := make([]api.Book, 0, len(ids))
	for _, id := range ids {
		books = append(books, api.Book{ID: id, Title: "book"})
	}
	return &api.BookPage{Books: books, Total: total}
}
