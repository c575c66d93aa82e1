package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultBaseURL is used when no base URL is configured
const DefaultBaseURL = "http://localhost:8080/api"

// HTTPClient talks to the book backend over its REST API
type HTTPClient struct {
	baseURL   string
	userAgent string
	retry     RetryConfig
	http      *http.Client
}

// NewHTTPClient creates a client rooted at baseURL (e.g. http://host:8080/api).
// Requests are attempted once; use WithRetry to enable retries of idempotent calls.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		retry:   RetryConfig{MaxAttempts: 1},
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// WithRetry replaces the retry policy for GET and DELETE requests
func (c *HTTPClient) WithRetry(cfg RetryConfig) *HTTPClient {
	c.retry = cfg
	return c
}

// BaseURL returns the API root the client talks to
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// ListBooks fetches one page of the listing
func (c *HTTPClient) ListBooks(ctx context.Context, page, pageSize int) (*BookPage, error) {
	path := fmt.Sprintf("/books?page=%d&page_size=%d", page, pageSize)

	var result BookPage
	if err := c.send(ctx, http.MethodGet, path, &result); err != nil {
		return nil, err
	}
	if result.Books == nil {
		result.Books = []Book{}
	}
	return &result, nil
}

// GetBook fetches a single book
func (c *HTTPClient) GetBook(ctx context.Context, id string) (*Book, error) {
	var book Book
	if err := c.send(ctx, http.MethodGet, bookPath(id), &book); err != nil {
		return nil, err
	}
	return &book, nil
}

// CreateBook streams a multipart upload of the book file and its metadata
func (c *HTTPClient) CreateBook(ctx context.Context, book NewBook) (*Book, error) {
	if book.File == nil {
		return nil, &RequestError{Method: http.MethodPost, Path: "/books", Message: "no file to upload"}
	}

	pr, pw := io.Pipe()
	defer pr.Close()

	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeBookForm(mw, book))
	}()

	var created Book
	if err := c.do(ctx, http.MethodPost, "/books", pr, mw.FormDataContentType(), &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteBook removes a book
func (c *HTTPClient) DeleteBook(ctx context.Context, id string) error {
	return c.send(ctx, http.MethodDelete, bookPath(id), nil)
}

// GetBookContent fetches the readable text of a book
func (c *HTTPClient) GetBookContent(ctx context.Context, id string) (string, error) {
	var content string
	if err := c.send(ctx, http.MethodGet, bookPath(id)+"/content", &content); err != nil {
		return "", err
	}
	return content, nil
}

func bookPath(id string) string {
	return "/books/" + url.PathEscape(id)
}

func writeBookForm(mw *multipart.Writer, book NewBook) error {
	if err := mw.WriteField("title", book.Title); err != nil {
		return err
	}
	if err := mw.WriteField("author", book.Author); err != nil {
		return err
	}

	part, err := mw.CreateFormFile("file", filepath.Base(book.Filename))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, book.File); err != nil {
		return err
	}
	return mw.Close()
}

// send performs an idempotent request under the retry policy
func (c *HTTPClient) send(ctx context.Context, method, path string, out interface{}) error {
	err := RetryOperation(ctx, c.retry, func() error {
		return c.do(ctx, method, path, nil, "", out)
	})
	if err == nil {
		return nil
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return err
	}
	return &RequestError{Method: method, Path: path, Message: err.Error(), Err: err}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body io.Reader, contentType string, out interface{}) error {
	fail := func(status int, msg string, err error) error {
		return &RequestError{Method: method, Path: path, StatusCode: status, Message: msg, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fail(0, err.Error(), err)
	}

	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(0, err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(0, err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data, resp.StatusCode),
			RetryAfter: ParseRetryAfter(resp.Header.Get("Retry-After"), time.Now()),
		}
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fail(0, "invalid response body: "+err.Error(), err)
	}
	return nil
}

// errorMessage pulls the server's explanation out of an error body, if any
func errorMessage(body []byte, status int) string {
	if gjson.ValidBytes(body) {
		for _, key := range []string{"error", "message"} {
			if msg := gjson.GetBytes(body, key).String(); msg != "" {
				return msg
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 && !gjson.ValidBytes(body) {
		return text
	}
	return strings.ToLower(http.StatusText(status))
}
