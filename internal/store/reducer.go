package store

import "github.com/billmal071/pavilion/internal/api"

// Event is a committed outcome of an action
type Event interface {
	isEvent()
}

// ListRequested marks a list fetch as in flight
type ListRequested struct{}

// ListLoaded carries a successful list response for the requested page
type ListLoaded struct {
	Page     int
	PageSize int
	Result   api.BookPage
}

// ListFailed carries a failed list fetch
type ListFailed struct {
	Message string
}

// BookRequested marks a single-book fetch as in flight
type BookRequested struct{}

// BookLoaded carries a successfully fetched book
type BookLoaded struct {
	Book api.Book
}

// BookFailed carries a failed single-book fetch
type BookFailed struct {
	Message string
}

// ErrorDismissed clears the recorded error
type ErrorDismissed struct{}

func (ListRequested) isEvent()  {}
func (ListLoaded) isEvent()     {}
func (ListFailed) isEvent()     {}
func (BookRequested) isEvent()  {}
func (BookLoaded) isEvent()     {}
func (BookFailed) isEvent()     {}
func (ErrorDismissed) isEvent() {}

// Reduce returns the state that results from applying ev to s.
// It performs no I/O and does not modify s.
func Reduce(s State, ev Event) State {
	next := s.Clone()

	switch ev := ev.(type) {
	case ListRequested:
		next.ListLoading = true
	case ListLoaded:
		books := ev.Result.Books
		if ev.PageSize > 0 && len(books) > ev.PageSize {
			books = books[:ev.PageSize]
		}
		next.Books = make([]api.Book, len(books))
		copy(next.Books, books)
		next.TotalBooks = ev.Result.Total
		next.CurrentPage = ev.Page
		if ev.PageSize > 0 {
			next.PageSize = ev.PageSize
		}
		next.ListLoading = false
	case ListFailed:
		next.Error = ev.Message
		next.ListLoading = false
	case BookRequested:
		next.BookLoading = true
	case BookLoaded:
		book := ev.Book
		next.CurrentBook = &book
		next.BookLoading = false
	case BookFailed:
		next.Error = ev.Message
		next.BookLoading = false
	case ErrorDismissed:
		next.Error = ""
	}

	next.Loading = next.ListLoading || next.BookLoading
	return next
}
