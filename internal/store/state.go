package store

import "github.com/billmal071/pavilion/internal/api"

// DefaultPageSize is the page size used when an action is not given one
const DefaultPageSize = 10

// State is the UI-visible slice of book data. Values handed out by the
// store are copies; mutating them does not affect the store.
type State struct {
	Books       []api.Book
	CurrentBook *api.Book
	TotalBooks  int64
	CurrentPage int
	PageSize    int

	// Loading is true while the latest list or book request is in flight
	Loading     bool
	ListLoading bool
	BookLoading bool

	// Error holds the last fetch failure message, empty when none
	Error string

	// Version counts commits; a larger Version is a newer state
	Version uint64
}

// InitialState is the state of a fresh store
func InitialState(pageSize int) State {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return State{
		Books:       []api.Book{},
		CurrentPage: 1,
		PageSize:    pageSize,
	}
}

// TotalPages returns the number of pages implied by TotalBooks and PageSize
func (s State) TotalPages() int {
	if s.PageSize < 1 || s.TotalBooks <= 0 {
		return 1
	}
	return int((s.TotalBooks + int64(s.PageSize) - 1) / int64(s.PageSize))
}

// Clone returns a deep copy
func (s State) Clone() State {
	c := s
	c.Books = make([]api.Book, len(s.Books))
	copy(c.Books, s.Books)
	if s.CurrentBook != nil {
		b := *s.CurrentBook
		c.CurrentBook = &b
	}
	return c
}
