package api

import (
	"context"
	"io"
	"time"
)

// Book is a book record as served by the backend
type Book struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Format    string    `json:"format"`
	FilePath  string    `json:"file_path"`
	FileSize  int64     `json:"file_size"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookPage is one page of the book listing
type BookPage struct {
	Books []Book `json:"books"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// NewBook is the multipart payload for book creation
type NewBook struct {
	Title    string
	Author   string
	Filename string
	File     io.Reader
}

// Client defines the interface for the book backend
type Client interface {
	// ListBooks fetches one page of books
	ListBooks(ctx context.Context, page, pageSize int) (*BookPage, error)

	// GetBook fetches a single book by identifier
	GetBook(ctx context.Context, id string) (*Book, error)

	// CreateBook uploads a new book
	CreateBook(ctx context.Context, book NewBook) (*Book, error)

	// DeleteBook removes a book
	DeleteBook(ctx context.Context, id string) error

	// GetBookContent fetches the readable text of a book
	GetBookContent(ctx context.Context, id string) (string, error)
}
