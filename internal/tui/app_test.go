package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/router"
	"github.com/billmal071/pavilion/internal/store"
)

type fakeClient struct {
	mu        sync.Mutex
	books     []api.Book
	deleteErr error
	listCalls []int
}

func newFakeClient(n int) *fakeClient {
	c := &fakeClient{}
	for i := 1; i <= n; i++ {
		c.books = append(c.books, api.Book{ID: uint64(i), Title: fmt.Sprintf("Book %d", i), Format: "txt", FileSize: 2048})
	}
	return c
}

func (c *fakeClient) ListBooks(_ context.Context, page, pageSize int) (*api.BookPage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listCalls = append(c.listCalls, page)
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(c.books) {
		start = len(c.books)
	}
	if end > len(c.books) {
		end = len(c.books)
	}
	books := append([]api.Book{}, c.books[start:end]...)
	return &api.BookPage{Books: books, Total: int64(len(c.books)), Page: page, Size: pageSize}, nil
}

func (c *fakeClient) GetBook(_ context.Context, id string) (*api.Book, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, b := range c.books {
		if fmt.Sprint(b.ID) == id {
			b := b
			return &b, nil
		}
	}
	return nil, &api.RequestError{Method: "GET", Path: "/books/" + id, StatusCode: 404, Message: "book not found"}
}

func (c *fakeClient) CreateBook(context.Context, api.NewBook) (*api.Book, error) {
	return nil, errors.New("not supported")
}

func (c *fakeClient) DeleteBook(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.deleteErr != nil {
		return c.deleteErr
	}
	for i, b := range c.books {
		if fmt.Sprint(b.ID) == id {
			c.books = append(c.books[:i], c.books[i+1:]...)
			return nil
		}
	}
	return errors.New("missing")
}

func (c *fakeClient) GetBookContent(_ context.Context, id string) (string, error) {
	if id == "404" {
		return "", errors.New("content not found")
	}
	return "Text of book " + id, nil
}

// drive feeds msg to the app and runs every resulting command until the
// queue is empty, skipping tea.Quit
func drive(t *testing.T, app App, msg tea.Msg) App {
	t.Helper()
	queue := []tea.Msg{msg}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 100, "update loop did not settle")
		next := queue[0]
		queue = queue[1:]

		model, cmd := app.Update(next)
		app = model.(App)
		queue = append(queue, runCmd(cmd)...)
	}
	return app
}

func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	switch msg := msg.(type) {
	case nil, tea.QuitMsg:
		return nil
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, runCmd(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func start(t *testing.T, client *fakeClient, path string) App {
	t.Helper()
	st := store.New(client)
	app := NewApp(context.Background(), router.New(), st, client, path)
	return drive(t, app, runCmd(app.Init())[0])
}

func TestApp_HomeMountsFirstPage(t *testing.T) {
	client := newFakeClient(12)

	app := start(t, client, "")

	assert.Equal(t, router.ViewHome, app.Route().Route.View)
	assert.Len(t, app.State().Books, store.DefaultPageSize)
	assert.Equal(t, int64(12), app.State().TotalBooks)
	assert.Contains(t, app.View(), "Book 1")
	assert.Contains(t, app.View(), "Page 1 of 2")
}

func TestApp_Paging(t *testing.T) {
	client := newFakeClient(12)
	app := start(t, client, "/")

	app = drive(t, app, key("n"))
	assert.Equal(t, 2, app.State().CurrentPage)
	assert.Len(t, app.State().Books, 2)

	// last page: no further request
	app = drive(t, app, key("n"))
	assert.Equal(t, []int{1, 2}, client.listCalls)

	app = drive(t, app, key("p"))
	assert.Equal(t, 1, app.State().CurrentPage)
}

func TestApp_EnterOpensDetail(t *testing.T) {
	client := newFakeClient(3)
	app := start(t, client, "/")

	app = drive(t, app, key("down"))
	app = drive(t, app, key("enter"))

	assert.Equal(t, router.BookDetail, app.Route().Route.Name)
	assert.Equal(t, "2", app.Route().Param("id"))
	require.NotNil(t, app.State().CurrentBook)
	assert.Equal(t, uint64(2), app.State().CurrentBook.ID)
	assert.Contains(t, app.View(), "Book 2")
	assert.Contains(t, app.View(), "2.0 KB")
}

func TestApp_ReadingRoute(t *testing.T) {
	client := newFakeClient(8)

	app := start(t, client, "/reading/7")

	assert.Equal(t, router.ReadingView, app.Route().Route.Name)
	assert.Equal(t, "7", app.Route().Param("id"))
	assert.Contains(t, app.View(), "Text of book 7")

	app = drive(t, app, key("esc"))
	assert.Equal(t, router.BookDetail, app.Route().Route.Name)
	assert.Equal(t, "7", app.Route().Param("id"))

	app = drive(t, app, key("esc"))
	assert.Equal(t, router.Home, app.Route().Route.Name)
}

func TestApp_ReadingContentError(t *testing.T) {
	client := newFakeClient(1)

	app := start(t, client, "/reading/404")

	assert.Contains(t, app.View(), "content not found")
	assert.Contains(t, app.State().Error, "book not found")
}

func TestApp_UnknownPathKeepsView(t *testing.T) {
	client := newFakeClient(1)
	app := start(t, client, "/")

	app = drive(t, app, NavigateMsg{Path: "/library"})

	assert.Equal(t, router.Home, app.Route().Route.Name)
	assert.Contains(t, app.Status(), "/library")
}

func TestApp_DeleteFailureShownInline(t *testing.T) {
	client := newFakeClient(2)
	client.deleteErr = errors.New("DELETE /books/1 failed: 500")
	app := start(t, client, "/")

	app = drive(t, app, key("d"))

	assert.Contains(t, app.Status(), "Delete failed")
	assert.Empty(t, app.State().Error)
	assert.Len(t, app.State().Books, 2)
}

func TestApp_DeleteFromDetailReturnsHome(t *testing.T) {
	client := newFakeClient(2)
	app := start(t, client, "/books/1")

	app = drive(t, app, key("d"))

	assert.Equal(t, router.Home, app.Route().Route.Name)
	assert.Equal(t, int64(1), app.State().TotalBooks)
	assert.Equal(t, "", app.Status())
}

func TestApp_DismissError(t *testing.T) {
	client := newFakeClient(1)
	app := start(t, client, "/books/99")
	require.NotEmpty(t, app.State().Error)

	app = drive(t, app, NavigateMsg{Path: "/"})
	app = drive(t, app, key("x"))

	assert.Empty(t, app.State().Error)
}

func TestApp_IgnoresOlderSnapshots(t *testing.T) {
	client := newFakeClient(3)
	app := start(t, client, "/")
	current := app.State()
	require.NotZero(t, current.Version)

	stale := current.Clone()
	stale.Version = current.Version - 1
	stale.Books = nil
	stale.Loading = true
	app = drive(t, app, StateMsg{State: stale})

	assert.Equal(t, current, app.State())
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.0 MB", FormatSize(2<<20))
}
