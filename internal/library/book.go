package library

import (
	"errors"
	"strings"
	"time"
)

// Format is a supported book file format
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatEPUB Format = "epub"
	FormatTXT  Format = "txt"
	FormatMOBI Format = "mobi"
)

// Book is a stored book record
type Book struct {
	ID        uint64    `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	Author    string    `db:"author" json:"author"`
	Format    Format    `db:"format" json:"format"`
	FilePath  string    `db:"file_path" json:"file_path"`
	FileSize  int64     `db:"file_size" json:"file_size"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

var (
	ErrTitleRequired      = errors.New("book title is required")
	ErrFormatRequired     = errors.New("book format is required")
	ErrFilePathRequired   = errors.New("book file path is required")
	ErrInvalidFormat      = errors.New("unsupported book format")
	ErrNotFound           = errors.New("book not found")
	ErrFileTooLarge       = errors.New("book file exceeds size limit")
	ErrContentUnsupported = errors.New("content preview not available for this format")
)

// ParseFormat returns the format for a file name's extension
func ParseFormat(filename string) (Format, error) {
	i := strings.LastIndex(filename, ".")
	if i < 0 || i == len(filename)-1 {
		return "", ErrInvalidFormat
	}
	f := Format(strings.ToLower(filename[i+1:]))
	if !f.Valid() {
		return "", ErrInvalidFormat
	}
	return f, nil
}

// Valid reports whether f is a supported format
func (f Format) Valid() bool {
	switch f {
	case FormatPDF, FormatEPUB, FormatTXT, FormatMOBI:
		return true
	default:
		return false
	}
}

// Validate checks the fields required for storage
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrTitleRequired
	}
	if b.Format == "" {
		return ErrFormatRequired
	}
	if b.FilePath == "" {
		return ErrFilePathRequired
	}
	return nil
}
