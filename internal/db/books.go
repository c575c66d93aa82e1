package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/billmal071/pavilion/internal/library"
)

const bookColumns = `id, title, author, format, file_path, file_size, created_at, updated_at`

// BookRepo stores books in SQL. Deleted rows are kept with deleted_at set.
type BookRepo struct {
	db *sqlx.DB
}

// NewBookRepo creates a repository on an open connection
func NewBookRepo(db *sqlx.DB) *BookRepo {
	return &BookRepo{db: db}
}

// Create inserts a book and sets its ID and timestamps
func (r *BookRepo) Create(ctx context.Context, b *library.Book) error {
	if err := b.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO books (title, author, format, file_path, file_size, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id`)
	return r.db.QueryRowxContext(ctx, query,
		b.Title, b.Author, b.Format, b.FilePath, b.FileSize, b.CreatedAt, b.UpdatedAt,
	).Scan(&b.ID)
}

// Get retrieves a book by ID
func (r *BookRepo) Get(ctx context.Context, id uint64) (*library.Book, error) {
	b := &library.Book{}
	err := r.db.GetContext(ctx, b, r.db.Rebind(`
		SELECT `+bookColumns+`
		FROM books WHERE id = ? AND deleted_at IS NULL`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, library.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// List returns books in insertion order
func (r *BookRepo) List(ctx context.Context, offset, limit int) ([]library.Book, error) {
	books := []library.Book{}
	err := r.db.SelectContext(ctx, &books, r.db.Rebind(`
		SELECT `+bookColumns+`
		FROM books WHERE deleted_at IS NULL
		ORDER BY id ASC
		LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, err
	}
	return books, nil
}

// Count returns the number of books that are not deleted
func (r *BookRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM books WHERE deleted_at IS NULL`)
	return n, err
}

// Delete marks a book as deleted
func (r *BookRepo) Delete(ctx context.Context, id uint64) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE books SET deleted_at = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`), now, now, id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return library.ErrNotFound
	}
	return nil
}
