package library

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Upload is a book file received from a client
type Upload struct {
	Filename string
	Size     int64
	Body     io.Reader
}

// Page is one page of the book list
type Page struct {
	Books []Book `json:"books"`
	Total int64  `json:"total"`
	Page  int    `json:"page"`
	Size  int    `json:"size"`
}

// Service implements the book operations on top of a repository and an upload directory
type Service struct {
	repo      Repository
	cache     Cache
	uploadDir string
	maxSize   int64
	log       zerolog.Logger
}

// Option configures a Service
type Option func(*Service)

// WithCache sets the cache used by GetBook
func WithCache(c Cache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithMaxUploadSize limits the size of stored files. Zero means unlimited.
func WithMaxUploadSize(n int64) Option {
	return func(s *Service) { s.maxSize = n }
}

// WithLogger sets the service logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a book service storing files under uploadDir
func NewService(repo Repository, uploadDir string, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		cache:     NopCache{},
		uploadDir: uploadDir,
		log:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UploadDir returns the directory holding stored book files
func (s *Service) UploadDir() string {
	return s.uploadDir
}

// FilePath returns the on-disk location of a book's file
func (s *Service) FilePath(b *Book) string {
	return filepath.Join(s.uploadDir, b.FilePath)
}

// CreateBook validates and stores an uploaded book
func (s *Service) CreateBook(ctx context.Context, title, author string, up Upload) (*Book, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	base := filepath.Base(up.Filename)
	format, err := ParseFormat(base)
	if err != nil {
		return nil, err
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if up.Body == nil {
		return nil, errors.New("upload has no body")
	}

	if err := os.MkdirAll(s.uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	name := uuid.NewString() + "_" + base
	dest := filepath.Join(s.uploadDir, name)

	written, err := s.save(dest, up.Body)
	if err != nil {
		os.Remove(dest)
		return nil, err
	}

	book := &Book{
		Title:    title,
		Author:   strings.TrimSpace(author),
		Format:   format,
		FilePath: name,
		FileSize: written,
	}
	if err := s.repo.Create(ctx, book); err != nil {
		os.Remove(dest)
		return nil, fmt.Errorf("failed to save book: %w", err)
	}

	s.log.Info().Uint64("book_id", book.ID).Str("format", string(format)).Int64("size", written).Msg("book created")
	return book, nil
}

func (s *Service) save(dest string, body io.Reader) (int64, error) {
	f, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	src := body
	if s.maxSize > 0 {
		src = io.LimitReader(body, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return n, fmt.Errorf("failed to save file: %w", err)
	}
	if s.maxSize > 0 && n > s.maxSize {
		return n, ErrFileTooLarge
	}
	return n, nil
}

// GetBook returns a book, consulting the cache first
func (s *Service) GetBook(ctx context.Context, id uint64) (*Book, error) {
	if b, err := s.cache.GetBook(ctx, id); err != nil {
		s.log.Warn().Err(err).Uint64("book_id", id).Msg("cache read failed")
	} else if b != nil {
		return b, nil
	}

	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetBook(ctx, b); err != nil {
		s.log.Warn().Err(err).Uint64("book_id", id).Msg("cache write failed")
	}
	return b, nil
}

// ListBooks returns one page of books. Out of range paging is normalized.
func (s *Service) ListBooks(ctx context.Context, page, pageSize int) (*Page, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count books: %w", err)
	}
	books, err := s.repo.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	if books == nil {
		books = []Book{}
	}
	return &Page{Books: books, Total: total, Page: page, Size: pageSize}, nil
}

// DeleteBook removes the record and then its file
func (s *Service) DeleteBook(ctx context.Context, id uint64) error {
	b, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.log.Warn().Err(err).Uint64("book_id", id).Msg("cache invalidate failed")
	}
	if err := os.Remove(s.FilePath(b)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete book file: %w", err)
	}
	s.log.Info().Uint64("book_id", id).Msg("book deleted")
	return nil
}

// GetBookContent returns the readable text of a book
func (s *Service) GetBookContent(ctx context.Context, id uint64) (string, error) {
	b, err := s.GetBook(ctx, id)
	if err != nil {
		return "", err
	}

	switch b.Format {
	case FormatTXT:
		data, err := os.ReadFile(s.FilePath(b))
		if err != nil {
			return "", fmt.Errorf("failed to read book content: %w", err)
		}
		return string(data), nil
	case FormatEPUB:
		return ExtractEPUB(s.FilePath(b))
	case FormatPDF, FormatMOBI:
		return "", ErrContentUnsupported
	default:
		return "", fmt.Errorf("%w: %s", ErrInvalidFormat, b.Format)
	}
}
