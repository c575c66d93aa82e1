package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/config"
)

// ErrHTMLContent indicates the download returned HTML instead of a file
var ErrHTMLContent = errors.New("received HTML content instead of file")

// Manager fetches stored book files from the uploads endpoint
type Manager struct {
	httpClient *http.Client
	uploadsURL string
	userAgent  string
	retry      api.RetryConfig
	progress   io.Writer
}

// Option configures a Manager
type Option func(*Manager)

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(m *Manager) { m.httpClient = c }
}

// WithProgress sets where the progress bar is drawn. nil hides it.
func WithProgress(w io.Writer) Option {
	return func(m *Manager) { m.progress = w }
}

// WithRetry sets the retry policy for the file request
func WithRetry(cfg api.RetryConfig) Option {
	return func(m *Manager) { m.retry = cfg }
}

// New creates a manager for files served under uploadsURL
func New(uploadsURL string, opts ...Option) *Manager {
	m := &Manager{
		httpClient: &http.Client{
			Timeout: 0, // No timeout for downloads
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        10,
				IdleConnTimeout:     30 * time.Second,
				DisableCompression:  true,
				MaxIdleConnsPerHost: 5,
			},
		},
		uploadsURL: strings.TrimRight(uploadsURL, "/"),
		retry:      api.RetryConfig{MaxAttempts: 1},
		progress:   os.Stderr,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManager creates a manager from the application config
func NewManager() *Manager {
	cfg := config.Get()
	m := New(cfg.API.UploadsURL, WithRetry(api.DefaultRetryConfig()))
	m.userAgent = cfg.Network.UserAgent
	return m
}

// FileURL returns the location of a book's stored file
func (m *Manager) FileURL(book api.Book) string {
	return m.uploadsURL + "/" + url.PathEscape(book.FilePath)
}

// Download saves a book's file into destDir and returns the written path.
// An interrupted download left as <name>.part is resumed when the server
// honors range requests.
func (m *Manager) Download(ctx context.Context, book api.Book, destDir string) (string, error) {
	if book.FilePath == "" {
		return "", fmt.Errorf("book %d has no stored file", book.ID)
	}
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", err
	}

	dest := filepath.Join(destDir, FileName(book))
	temp := dest + ".part"

	var offset int64
	if info, err := os.Stat(temp); err == nil {
		offset = info.Size()
	}

	var resp *http.Response
	err := api.RetryOperation(ctx, m.retry, func() error {
		r, err := m.get(ctx, book, offset)
		if err != nil {
			return err
		}
		if r.StatusCode == http.StatusRequestedRangeNotSatisfiable && offset > 0 {
			resp = r
			return nil
		}
		if r.StatusCode != http.StatusOK && r.StatusCode != http.StatusPartialContent {
			r.Body.Close()
			return &api.RequestError{
				Method:     http.MethodGet,
				Path:       m.FileURL(book),
				StatusCode: r.StatusCode,
				Message:    "file not available",
				RetryAfter: api.ParseRetryAfter(r.Header.Get("Retry-After"), time.Now()),
			}
		}
		resp = r
		return nil
	})
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	// the .part file already holds everything
	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable {
		if err := m.finish(temp, dest, book.FileSize); err != nil {
			return "", err
		}
		return dest, nil
	}

	// Check content type - if it's HTML, this is likely an error page
	if strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", ErrHTMLContent
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if resp.StatusCode == http.StatusPartialContent && offset > 0 {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	} else {
		offset = 0
	}

	file, err := os.OpenFile(temp, flags, 0644)
	if err != nil {
		return "", err
	}
	defer file.Close()

	total := int64(-1)
	if resp.ContentLength >= 0 {
		total = offset + resp.ContentLength
	}
	bar := m.newBar(total, FileName(book))
	bar.Set64(offset)

	if _, err := io.Copy(io.MultiWriter(file, bar), resp.Body); err != nil {
		return "", err
	}
	bar.Finish()

	if err := file.Close(); err != nil {
		return "", err
	}
	if err := m.finish(temp, dest, book.FileSize); err != nil {
		return "", err
	}
	return dest, nil
}

// finish verifies the temp file and moves it to its final location
func (m *Manager) finish(temp, dest string, size int64) error {
	if err := VerifySize(temp, size); err != nil {
		os.Remove(temp)
		return err
	}
	return os.Rename(temp, dest)
}

func (m *Manager) get(ctx context.Context, book api.Book, offset int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.FileURL(book), nil)
	if err != nil {
		return nil, err
	}
	if m.userAgent != "" {
		req.Header.Set("User-Agent", m.userAgent)
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
	}
	return m.httpClient.Do(req)
}

func (m *Manager) newBar(total int64, name string) *progressbar.ProgressBar {
	w := m.progress
	if w == nil {
		w = io.Discard
	}
	return progressbar.NewOptions64(
		total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

var unsafeChars = strings.NewReplacer(
	"/", "_", `\`, "_", ":", "_", "*", "_", "?", "_",
	`"`, "_", "<", "_", ">", "_", "|", "_",
)

// FileName builds a local file name from the book title and format
func FileName(book api.Book) string {
	ext := book.Format
	if ext == "" {
		ext = strings.TrimPrefix(filepath.Ext(book.FilePath), ".")
	}

	name := strings.TrimSpace(unsafeChars.Replace(book.Title))
	if name == "" {
		// stored names are <uuid>_<original>
		name = book.FilePath
		if i := strings.Index(name, "_"); i >= 0 {
			name = name[i+1:]
		}
		name = strings.TrimSuffix(name, filepath.Ext(name))
	}
	if name == "" {
		name = fmt.Sprintf("book-%d", book.ID)
	}

	if ext == "" {
		return name
	}
	return name + "." + ext
}
