// Package store is the application state container for book data.
//
// Views read State snapshots and call actions; actions perform the HTTP
// call through an api.Client and commit the outcome through Reduce. Every
// list or book request carries a sequence number and only the latest one
// issued for its operation may commit, so a slow response can never
// overwrite the result of a newer request.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/billmal071/pavilion/internal/api"
)

// ErrSuperseded is returned by a fetch whose response arrived after a newer
// request for the same operation had been issued. Its result was discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

type operation int

const (
	opList operation = iota
	opBook
	numOps
)

// Option configures a Store
type Option func(*Store)

// WithLogger injects the logger actions report to
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.log = logger
	}
}

// WithPageSize sets the page size used when an action is given none
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// Store holds the current book state and the actions that change it
type Store struct {
	client   api.Client
	log      zerolog.Logger
	pageSize int

	mu      sync.RWMutex
	state   State
	seq     [numOps]uint64
	subs    map[int]func(State)
	nextSub int

	// deliverMu orders subscriber calls; delivered is the newest Version sent
	deliverMu sync.Mutex
	delivered uint64
}

// New creates a store backed by client
func New(client api.Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		log:      zerolog.Nop(),
		pageSize: DefaultPageSize,
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state = InitialState(s.pageSize)
	return s
}

// PageSize returns the default page size
func (s *Store) PageSize() int {
	return s.pageSize
}

// Snapshot returns a copy of the current state
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Subscribe registers fn to receive committed states in commit order. A
// state already overtaken by a newer commit is skipped. fn must not call
// store actions. The returned function removes the subscription.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// FetchBooks loads one page of books. Zero or negative arguments fall back
// to page 1 and the store's page size. A failure is recorded in State.Error
// and also returned.
func (s *Store) FetchBooks(ctx context.Context, page, pageSize int) error {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = s.pageSize
	}

	seq := s.begin(opList, ListRequested{})

	result, err := s.client.ListBooks(ctx, page, pageSize)
	if err != nil {
		if !s.commit(opList, seq, ListFailed{Message: err.Error()}) {
			return fmt.Errorf("%w: %v", ErrSuperseded, err)
		}
		s.log.Warn().Err(err).Int("page", page).Int("page_size", pageSize).Msg("fetch books failed")
		return err
	}

	if !s.commit(opList, seq, ListLoaded{Page: page, PageSize: pageSize, Result: *result}) {
		s.log.Debug().Int("page", page).Msg("discarding stale book list")
		return ErrSuperseded
	}
	return nil
}

// FetchBookByID loads a single book into State.CurrentBook. A failure is
// recorded in State.Error and also returned.
func (s *Store) FetchBookByID(ctx context.Context, id string) error {
	s.log.Debug().Str("book_id", id).Msg("fetching book")

	seq := s.begin(opBook, BookRequested{})

	book, err := s.client.GetBook(ctx, id)
	if err != nil {
		if !s.commit(opBook, seq, BookFailed{Message: err.Error()}) {
			return fmt.Errorf("%w: %v", ErrSuperseded, err)
		}
		s.log.Warn().Err(err).Str("book_id", id).Msg("fetch book failed")
		return err
	}

	if !s.commit(opBook, seq, BookLoaded{Book: *book}) {
		s.log.Debug().Str("book_id", id).Msg("discarding stale book")
		return ErrSuperseded
	}
	return nil
}

// CreateBook uploads a book and then reloads the first page. An upload
// failure is returned to the caller and is not recorded in State.Error.
func (s *Store) CreateBook(ctx context.Context, book api.NewBook) (*api.Book, error) {
	created, err := s.client.CreateBook(ctx, book)
	if err != nil {
		return nil, err
	}
	s.log.Info().Uint64("book_id", created.ID).Str("title", created.Title).Msg("book created")

	s.refresh(ctx)
	return created, nil
}

// DeleteBook removes a book and then reloads the first page. A delete
// failure is returned to the caller and is not recorded in State.Error.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	if err := s.client.DeleteBook(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("book_id", id).Msg("book deleted")

	s.refresh(ctx)
	return nil
}

// BookByID looks a book up in the currently loaded page only
func (s *Store) BookByID(id uint64) (api.Book, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.state.Books {
		if b.ID == id {
			return b, true
		}
	}
	return api.Book{}, false
}

// DismissError clears State.Error
func (s *Store) DismissError() {
	s.mu.Lock()
	snapshot := s.apply(ErrorDismissed{})
	s.mu.Unlock()

	s.notify(snapshot)
}

// refresh reloads the default list; its failure lands in State.Error
func (s *Store) refresh(ctx context.Context) {
	if err := s.FetchBooks(ctx, 1, s.pageSize); err != nil {
		s.log.Debug().Err(err).Msg("refresh after write failed")
	}
}

func (s *Store) begin(op operation, ev Event) uint64 {
	s.mu.Lock()
	s.seq[op]++
	seq := s.seq[op]
	snapshot := s.apply(ev)
	s.mu.Unlock()

	s.notify(snapshot)
	return seq
}

// commit applies ev only if seq is still the latest request for op
func (s *Store) commit(op operation, seq uint64, ev Event) bool {
	s.mu.Lock()
	if s.seq[op] != seq {
		s.mu.Unlock()
		return false
	}
	snapshot := s.apply(ev)
	s.mu.Unlock()

	s.notify(snapshot)
	return true
}

// apply reduces ev into the state and stamps a new Version. Callers hold mu.
func (s *Store) apply(ev Event) State {
	version := s.state.Version + 1
	s.state = Reduce(s.state, ev)
	s.state.Version = version
	return s.state.Clone()
}

// notify hands state to subscribers unless a newer state already went out,
// so the last state a subscriber sees is always the store's latest.
func (s *Store) notify(state State) {
	s.deliverMu.Lock()
	defer s.deliverMu.Unlock()
	if state.Version <= s.delivered {
		return
	}
	s.delivered = state.Version

	s.mu.RLock()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.RUnlock()

	for _, fn := range subs {
		fn(state.Clone())
	}
}
