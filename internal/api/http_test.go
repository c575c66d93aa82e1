package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testBase = "http://books.test/api"

type httpClientSuite struct {
	suite.Suite

	ctx    context.Context
	client *HTTPClient
}

func TestHTTPClientSuite(t *testing.T) {
	suite.Run(t, new(httpClientSuite))
}

func (s *httpClientSuite) SetupTest() {
	s.ctx = context.Background()
	s.client = NewHTTPClient(testBase, 5*time.Second)
}

func (s *httpClientSuite) TearDownTest() {
	gock.Off()
}

func (s *httpClientSuite) Test_ListBooks_DefaultPaging() {
	gock.New(testBase).
		Get("/books").
		MatchParam("page", "1").
		MatchParam("page_size", "10").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{
			"books": []map[string]interface{}{{"id": 1, "title": "Dune", "format": "epub"}},
			"total": 1,
			"page":  1,
			"size":  10,
		})

	page, err := s.client.ListBooks(s.ctx, 1, 10)

	require.NoError(s.T(), err)
	require.Len(s.T(), page.Books, 1)
	assert.Equal(s.T(), uint64(1), page.Books[0].ID)
	assert.Equal(s.T(), "Dune", page.Books[0].Title)
	assert.Equal(s.T(), int64(1), page.Total)
	assert.True(s.T(), gock.IsDone())
}

func (s *httpClientSuite) Test_ListBooks_NullBooks() {
	gock.New(testBase).
		Get("/books").
		Reply(http.StatusOK).
		BodyString(`{"books":null,"total":0}`)

	page, err := s.client.ListBooks(s.ctx, 3, 10)

	require.NoError(s.T(), err)
	assert.NotNil(s.T(), page.Books)
	assert.Empty(s.T(), page.Books)
}

func (s *httpClientSuite) Test_GetBook_NotFound() {
	gock.New(testBase).
		Get("/books/5").
		Reply(http.StatusNotFound).
		JSON(map[string]string{"error": "Book not found"})

	book, err := s.client.GetBook(s.ctx, "5")

	assert.Nil(s.T(), book)
	var reqErr *RequestError
	require.True(s.T(), errors.As(err, &reqErr))
	assert.Equal(s.T(), http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(s.T(), "Book not found", reqErr.Message)
	assert.Equal(s.T(), "/books/5", reqErr.Path)
	assert.Contains(s.T(), err.Error(), "Book not found")
}

func (s *httpClientSuite) Test_GetBook_NetworkError() {
	gock.New(testBase).
		Get("/books/5").
		ReplyError(errors.New("connection refused"))

	_, err := s.client.GetBook(s.ctx, "5")

	var reqErr *RequestError
	require.True(s.T(), errors.As(err, &reqErr))
	assert.Zero(s.T(), reqErr.StatusCode)
	assert.Contains(s.T(), reqErr.Message, "connection refused")
}

func (s *httpClientSuite) Test_GetBook_BadBody() {
	gock.New(testBase).
		Get("/books/5").
		Reply(http.StatusOK).
		BodyString("<html>oops</html>")

	_, err := s.client.GetBook(s.ctx, "5")

	var reqErr *RequestError
	require.True(s.T(), errors.As(err, &reqErr))
	assert.Contains(s.T(), reqErr.Message, "invalid response body")
}

func (s *httpClientSuite) Test_CreateBook_Multipart() {
	var gotTitle, gotAuthor, gotFilename, gotContent string

	gock.New(testBase).
		Post("/books").
		MatchType("multipart/form-data").
		AddMatcher(func(req *http.Request, _ *gock.Request) (bool, error) {
			if err := req.ParseMultipartForm(1 << 20); err != nil {
				return false, err
			}
			gotTitle = req.FormValue("title")
			gotAuthor = req.FormValue("author")
			file, header, err := req.FormFile("file")
			if err != nil {
				return false, err
			}
			defer file.Close()
			data, _ := io.ReadAll(file)
			gotFilename = header.Filename
			gotContent = string(data)
			return true, nil
		}).
		Reply(http.StatusCreated).
		JSON(map[string]interface{}{"id": 9, "title": "Dune", "format": "txt"})

	created, err := s.client.CreateBook(s.ctx, NewBook{
		Title:    "Dune",
		Author:   "Frank Herbert",
		Filename: "/tmp/books/dune.txt",
		File:     strings.NewReader("the spice must flow"),
	})

	require.NoError(s.T(), err)
	assert.Equal(s.T(), uint64(9), created.ID)
	assert.Equal(s.T(), "Dune", gotTitle)
	assert.Equal(s.T(), "Frank Herbert", gotAuthor)
	assert.Equal(s.T(), "dune.txt", gotFilename)
	assert.Equal(s.T(), "the spice must flow", gotContent)
}

func (s *httpClientSuite) Test_CreateBook_NoFile() {
	_, err := s.client.CreateBook(s.ctx, NewBook{Title: "Dune"})

	var reqErr *RequestError
	require.True(s.T(), errors.As(err, &reqErr))
	assert.Equal(s.T(), "no file to upload", reqErr.Message)
}

func (s *httpClientSuite) Test_DeleteBook_NoContent() {
	gock.New(testBase).
		Delete("/books/3").
		Reply(http.StatusNoContent)

	err := s.client.DeleteBook(s.ctx, "3")

	assert.NoError(s.T(), err)
	assert.True(s.T(), gock.IsDone())
}

func (s *httpClientSuite) Test_DeleteBook_ServerError() {
	gock.New(testBase).
		Delete("/books/3").
		Reply(http.StatusInternalServerError).
		JSON(map[string]string{"error": "Failed to delete book"})

	err := s.client.DeleteBook(s.ctx, "3")

	require.Error(s.T(), err)
	assert.Contains(s.T(), err.Error(), "Failed to delete book")
}

func (s *httpClientSuite) Test_GetBookContent() {
	gock.New(testBase).
		Get("/books/7/content").
		Reply(http.StatusOK).
		BodyString(`"Call me Ishmael."`)

	content, err := s.client.GetBookContent(s.ctx, "7")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Call me Ishmael.", content)
}

func (s *httpClientSuite) Test_NoRetryByDefault() {
	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusServiceUnavailable)
	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{"id": 1})

	_, err := s.client.GetBook(s.ctx, "1")

	require.Error(s.T(), err)
	assert.True(s.T(), gock.IsPending())
}

func (s *httpClientSuite) Test_RetryServerError() {
	s.client.WithRetry(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2,
	})

	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusServiceUnavailable)
	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{"id": 1, "title": "Emma"})

	book, err := s.client.GetBook(s.ctx, "1")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Emma", book.Title)
	assert.True(s.T(), gock.IsDone())
}

func (s *httpClientSuite) Test_RateLimitedHonorsRetryAfter() {
	s.client.WithRetry(RetryConfig{
		MaxAttempts: 2,
		BaseDelay:   time.Millisecond,
		MaxDelay:    2 * time.Second,
		Multiplier:  2,
	})

	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusTooManyRequests).
		SetHeader("Retry-After", "1").
		JSON(map[string]string{"error": "rate limit exceeded"})
	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{"id": 1, "title": "Emma"})

	started := time.Now()
	book, err := s.client.GetBook(s.ctx, "1")

	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Emma", book.Title)
	assert.GreaterOrEqual(s.T(), time.Since(started), time.Second)
}

func (s *httpClientSuite) Test_RateLimitedGivesUpOnLongRetryAfter() {
	s.client.WithRetry(RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Millisecond,
		MaxDelay:    100 * time.Millisecond,
		Multiplier:  2,
	})

	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusTooManyRequests).
		SetHeader("Retry-After", "30")
	gock.New(testBase).
		Get("/books/1").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{"id": 1})

	_, err := s.client.GetBook(s.ctx, "1")

	var reqErr *RequestError
	require.ErrorAs(s.T(), err, &reqErr)
	assert.Equal(s.T(), http.StatusTooManyRequests, reqErr.StatusCode)
	assert.Equal(s.T(), 30*time.Second, reqErr.RetryAfter)
	assert.True(s.T(), gock.IsPending())
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Book not found", errorMessage([]byte(`{"error":"Book not found"}`), 404))
	assert.Equal(t, "limit", errorMessage([]byte(`{"message":"limit"}`), 429))
	assert.Equal(t, "upstream down", errorMessage([]byte("upstream down\n"), 502))
	assert.Equal(t, "not found", errorMessage(nil, 404))
}
