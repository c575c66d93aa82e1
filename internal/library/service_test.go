package library

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, opts ...Option) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(repo, filepath.Join(t.TempDir(), "uploads"), opts...), repo
}

func upload(name, body string) Upload {
	return Upload{Filename: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"book.pdf", FormatPDF, false},
		{"Book.EPUB", FormatEPUB, false},
		{"notes.txt", FormatTXT, false},
		{"kindle.mobi", FormatMOBI, false},
		{"archive.tar.gz", "", true},
		{"README", "", true},
		{"trailing.", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFormat(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBookValidate(t *testing.T) {
	assert.ErrorIs(t, (&Book{}).Validate(), ErrTitleRequired)
	assert.ErrorIs(t, (&Book{Title: "t"}).Validate(), ErrFormatRequired)
	assert.ErrorIs(t, (&Book{Title: "t", Format: FormatTXT}).Validate(), ErrFilePathRequired)
	assert.NoError(t, (&Book{Title: "t", Format: FormatTXT, FilePath: "x.txt"}).Validate())
}

func TestCreateBook(t *testing.T) {
	svc, repo := newTestService(t)

	book, err := svc.CreateBook(context.Background(), " Dune ", "Herbert", upload("dune.txt", "spice"))

	require.NoError(t, err)
	assert.Equal(t, uint64(1), book.ID)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, FormatTXT, book.Format)
	assert.Equal(t, int64(5), book.FileSize)
	assert.True(t, strings.HasSuffix(book.FilePath, "_dune.txt"))
	assert.Len(t, repo.books, 1)

	data, err := os.ReadFile(svc.FilePath(book))
	require.NoError(t, err)
	assert.Equal(t, "spice", string(data))
}

func TestCreateBook_StripsDirectories(t *testing.T) {
	svc, _ := newTestService(t)

	book, err := svc.CreateBook(context.Background(), "x", "", upload("../../etc/x.txt", "a"))

	require.NoError(t, err)
	assert.NotContains(t, book.FilePath, "/")
	assert.Equal(t, svc.UploadDir(), filepath.Dir(svc.FilePath(book)))
}

func TestCreateBook_Validation(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, "  ", "a", upload("a.txt", "x"))
	assert.ErrorIs(t, err, ErrTitleRequired)

	_, err = svc.CreateBook(ctx, "t", "a", upload("a.docx", "x"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = svc.CreateBook(ctx, "t", "a", upload("noext", "x"))
	assert.ErrorIs(t, err, ErrInvalidFormat)

	assert.Empty(t, repo.books)
}

func TestCreateBook_TooLarge(t *testing.T) {
	svc, repo := newTestService(t, WithMaxUploadSize(4))
	ctx := context.Background()

	_, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "12345"))
	assert.ErrorIs(t, err, ErrFileTooLarge)

	// declared size lies, body is still capped
	_, err = svc.CreateBook(ctx, "t", "", Upload{Filename: "a.txt", Size: 1, Body: strings.NewReader("123456789")})
	assert.ErrorIs(t, err, ErrFileTooLarge)

	assert.Empty(t, repo.books)
	entries, _ := os.ReadDir(svc.UploadDir())
	assert.Empty(t, entries)
}

func TestCreateBook_RepoFailureRemovesFile(t *testing.T) {
	svc, repo := newTestService(t)
	repo.createErr = errDown

	_, err := svc.CreateBook(context.Background(), "t", "", upload("a.txt", "x"))

	assert.ErrorIs(t, err, errDown)
	entries, err := os.ReadDir(svc.UploadDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListBooks_Normalizes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	for i := 0; i < 12; i++ {
		_, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "x"))
		require.NoError(t, err)
	}

	page, err := svc.ListBooks(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, DefaultPageSize, page.Size)
	assert.Len(t, page.Books, 10)
	assert.Equal(t, int64(12), page.Total)

	page, err = svc.ListBooks(ctx, 2, 10)
	require.NoError(t, err)
	require.Len(t, page.Books, 2)
	assert.Equal(t, uint64(11), page.Books[0].ID)

	page, err = svc.ListBooks(ctx, 1, 500)
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.Size)

	page, err = svc.ListBooks(ctx, 9, 10)
	require.NoError(t, err)
	assert.NotNil(t, page.Books)
	assert.Empty(t, page.Books)
}

func TestGetBook_UsesCache(t *testing.T) {
	cache := newMemCache()
	svc, repo := newTestService(t, WithCache(cache))
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "x"))
	require.NoError(t, err)

	_, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)
	_, err = svc.GetBook(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.gets)
	assert.Contains(t, cache.books, created.ID)
}

func TestGetBook_CacheErrorFallsBack(t *testing.T) {
	cache := newMemCache()
	cache.readErr = errDown
	svc, repo := newTestService(t, WithCache(cache))
	ctx := context.Background()

	created, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "x"))
	require.NoError(t, err)

	got, err := svc.GetBook(ctx, created.ID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 1, repo.gets)
}

func TestGetBook_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetBook(context.Background(), 42)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteBook(t *testing.T) {
	cache := newMemCache()
	svc, repo := newTestService(t, WithCache(cache))
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "x"))
	require.NoError(t, err)
	path := svc.FilePath(book)

	require.NoError(t, svc.DeleteBook(ctx, book.ID))

	assert.Empty(t, repo.books)
	assert.Equal(t, []uint64{book.ID}, cache.invalidated)
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.ErrorIs(t, svc.DeleteBook(ctx, book.ID), ErrNotFound)
}

func TestDeleteBook_MissingFileIsFine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	book, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "x"))
	require.NoError(t, err)
	require.NoError(t, os.Remove(svc.FilePath(book)))

	assert.NoError(t, svc.DeleteBook(ctx, book.ID))
}

func TestGetBookContent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	txt, err := svc.CreateBook(ctx, "t", "", upload("a.txt", "plain words"))
	require.NoError(t, err)
	content, err := svc.GetBookContent(ctx, txt.ID)
	require.NoError(t, err)
	assert.Equal(t, "plain words", content)

	pdf, err := svc.CreateBook(ctx, "t", "", upload("a.pdf", "%PDF"))
	require.NoError(t, err)
	_, err = svc.GetBookContent(ctx, pdf.ID)
	assert.ErrorIs(t, err, ErrContentUnsupported)

	mobi, err := svc.CreateBook(ctx, "t", "", upload("a.mobi", "x"))
	require.NoError(t, err)
	_, err = svc.GetBookContent(ctx, mobi.ID)
	assert.ErrorIs(t, err, ErrContentUnsupported)

	_, err = svc.GetBookContent(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}
