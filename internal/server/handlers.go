package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/billmal071/pavilion/internal/library"
)

// multipart overhead allowed on top of the file size limit
const formSlack = 1 << 20

// statusFor maps service errors to HTTP status codes
func statusFor(err error) int {
	var tooBig *http.MaxBytesError
	switch {
	case errors.Is(err, library.ErrTitleRequired),
		errors.Is(err, library.ErrInvalidFormat),
		errors.Is(err, library.ErrFormatRequired),
		errors.Is(err, library.ErrFilePathRequired):
		return http.StatusBadRequest
	case errors.Is(err, library.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, library.ErrFileTooLarge), errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, library.ErrContentUnsupported):
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error body. Internal errors get the fallback message.
func fail(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		c.Error(err)
		msg = fallback
	}
	if status == http.StatusRequestEntityTooLarge {
		msg = library.ErrFileTooLarge.Error()
	}
	c.JSON(status, gin.H{"error": msg})
}

func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid book ID"})
		return 0, false
	}
	return id, true
}

func (s *Server) createBook(c *gin.Context) {
	if s.cfg.MaxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadSize+formSlack)
	}

	file, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			fail(c, err, "")
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	f, err := file.Open()
	if err != nil {
		fail(c, err, "Failed to read upload")
		return
	}
	defer f.Close()

	book, err := s.svc.CreateBook(c.Request.Context(), c.PostForm("title"), c.PostForm("author"), library.Upload{
		Filename: file.Filename,
		Size:     file.Size,
		Body:     f,
	})
	if err != nil {
		format, _ := library.ParseFormat(file.Filename)
		s.metrics.uploads.WithLabelValues(string(format), "rejected").Inc()
		fail(c, err, "Failed to create book")
		return
	}

	s.metrics.uploads.WithLabelValues(string(book.Format), "stored").Inc()
	s.metrics.uploadLen.Observe(float64(book.FileSize))
	c.JSON(http.StatusCreated, book)
}

func (s *Server) listBooks(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	result, err := s.svc.ListBooks(c.Request.Context(), page, pageSize)
	if err != nil {
		fail(c, err, "Failed to fetch books")
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) getBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	book, err := s.svc.GetBook(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to fetch book")
		return
	}
	c.JSON(http.StatusOK, book)
}

func (s *Server) getBookContent(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	content, err := s.svc.GetBookContent(c.Request.Context(), id)
	if err != nil {
		fail(c, err, "Failed to read book content")
		return
	}
	c.JSON(http.StatusOK, content)
}

func (s *Server) deleteBook(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := s.svc.DeleteBook(c.Request.Context(), id); err != nil {
		fail(c, err, "Failed to delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
