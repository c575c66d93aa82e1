package tui

import (
	"context"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/router"
	"github.com/billmal071/pavilion/internal/store"
)

// App is the root Bubble Tea model. It owns navigation and renders one of
// the three views for the active route.
type App struct {
	ctx    context.Context
	router *router.Router
	store  *store.Store
	client api.Client

	start string
	route router.Match
	state store.State

	list     list.Model
	viewport viewport.Model

	content        string
	contentID      string
	contentErr     error
	contentLoading bool

	status string
	width  int
	height int
}

// NewApp creates the application model. start is the first path to open.
func NewApp(ctx context.Context, r *router.Router, s *store.Store, client api.Client, start string) App {
	if start == "" {
		start = "/"
	}
	state := s.Snapshot()
	return App{
		ctx:      ctx,
		router:   r,
		store:    s,
		client:   client,
		start:    start,
		state:    state,
		list:     newBookList(state.Books),
		viewport: viewport.New(80, 20),
		width:    80,
		height:   24,
	}
}

// Route returns the active route match
func (a App) Route() router.Match {
	return a.route
}

// State returns the last store snapshot seen by the app
func (a App) State() store.State {
	return a.state
}

// Status returns the inline status line
func (a App) Status() string {
	return a.status
}

func (a App) Init() tea.Cmd {
	return navigate(a.start)
}

func navigate(path string) tea.Cmd {
	return func() tea.Msg { return NavigateMsg{Path: path} }
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		a.list.SetSize(msg.Width, msg.Height-4)
		a.viewport.Width = msg.Width
		a.viewport.Height = msg.Height - 4
		return a, nil

	case NavigateMsg:
		return a.navigate(msg.Path)

	case StateMsg:
		a.setState(msg.State)
		return a, nil

	case actionMsg:
		a.setState(msg.state)
		if msg.op == opDelete {
			if msg.err != nil {
				a.status = "Delete failed: " + msg.err.Error()
				return a, nil
			}
			a.status = "Book deleted"
			if a.route.Route.View != router.ViewHome {
				return a, navigate("/")
			}
		}
		return a, nil

	case contentMsg:
		if msg.id != a.contentID {
			return a, nil
		}
		a.contentLoading = false
		a.content, a.contentErr = msg.content, msg.err
		a.viewport.SetContent(a.content)
		a.viewport.GotoTop()
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.route.Route.View {
		case router.ViewHome:
			return a.updateHome(msg)
		case router.ViewBookDetail:
			return a.updateDetail(msg)
		case router.ViewReading:
			return a.updateReading(msg)
		}
		if msg.String() == "q" {
			return a, tea.Quit
		}
	}
	return a, nil
}

// navigate resolves path and mounts its view. Unknown paths keep the
// current view and report the problem in the status line.
func (a App) navigate(path string) (tea.Model, tea.Cmd) {
	match, err := a.router.Resolve(path)
	if err != nil {
		a.status = fmt.Sprintf("Cannot open %s: %v", path, err)
		return a, nil
	}

	a.route = match
	a.status = ""

	switch match.Route.View {
	case router.ViewHome:
		return a, a.fetchBooks(a.state.CurrentPage)
	case router.ViewBookDetail:
		return a, a.fetchBook(match.Param("id"))
	case router.ViewReading:
		id := match.Param("id")
		a.contentID = id
		a.contentLoading = true
		a.content, a.contentErr = "", nil
		a.viewport.SetContent("")
		return a, tea.Batch(a.fetchBook(id), a.fetchContent(id))
	}
	return a, nil
}

// setState keeps the newest snapshot; store commits can arrive out of order
func (a *App) setState(s store.State) {
	if s.Version < a.state.Version {
		return
	}
	a.state = s
	a.list.SetItems(bookItems(s.Books))
}

func (a App) fetchBooks(page int) tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		err := st.FetchBooks(ctx, page, st.PageSize())
		return actionMsg{op: opList, state: st.Snapshot(), err: err}
	}
}

func (a App) fetchBook(id string) tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		err := st.FetchBookByID(ctx, id)
		return actionMsg{op: opBook, state: st.Snapshot(), err: err}
	}
}

func (a App) deleteBook(id string) tea.Cmd {
	st, ctx := a.store, a.ctx
	return func() tea.Msg {
		err := st.DeleteBook(ctx, id)
		return actionMsg{op: opDelete, state: st.Snapshot(), err: err}
	}
}

// dismissError must not run on the update loop: the store notifies Run's
// subscriber, which sends to this program
func (a App) dismissError() tea.Cmd {
	st := a.store
	return func() tea.Msg {
		st.DismissError()
		return actionMsg{op: opDismiss, state: st.Snapshot()}
	}
}

func (a App) fetchContent(id string) tea.Cmd {
	client, ctx := a.client, a.ctx
	return func() tea.Msg {
		content, err := client.GetBookContent(ctx, id)
		return contentMsg{id: id, content: content, err: err}
	}
}

// currentBook returns the book for the active route: the loaded
// CurrentBook when it matches, else the entry from the loaded page
func (a App) currentBook() (api.Book, bool) {
	id := a.route.Param("id")
	if b := a.state.CurrentBook; b != nil && strconv.FormatUint(b.ID, 10) == id {
		return *b, true
	}
	n, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return api.Book{}, false
	}
	return a.store.BookByID(n)
}

func (a App) pathTo(name string, id uint64) tea.Cmd {
	path, err := a.router.Path(name, "id", strconv.FormatUint(id, 10))
	if err != nil {
		return nil
	}
	return navigate(path)
}

func (a App) updateHome(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return a, tea.Quit
	case "enter":
		if item, ok := a.list.SelectedItem().(BookItem); ok {
			return a, a.pathTo(router.BookDetail, item.Book.ID)
		}
		return a, nil
	case "n", "right":
		if a.state.CurrentPage < a.state.TotalPages() {
			return a, a.fetchBooks(a.state.CurrentPage + 1)
		}
		return a, nil
	case "p", "left":
		if a.state.CurrentPage > 1 {
			return a, a.fetchBooks(a.state.CurrentPage - 1)
		}
		return a, nil
	case "r":
		return a, a.fetchBooks(a.state.CurrentPage)
	case "d":
		if item, ok := a.list.SelectedItem().(BookItem); ok {
			a.status = fmt.Sprintf("Deleting %q...", item.Book.Title)
			return a, a.deleteBook(strconv.FormatUint(item.Book.ID, 10))
		}
		return a, nil
	case "x":
		a.status = ""
		return a, a.dismissError()
	}

	var cmd tea.Cmd
	a.list, cmd = a.list.Update(msg)
	return a, cmd
}

func (a App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := a.route.Param("id")
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "backspace", "h":
		return a, navigate("/")
	case "enter", "r":
		path, err := a.router.Path(router.ReadingView, "id", id)
		if err != nil {
			a.status = err.Error()
			return a, nil
		}
		return a, navigate(path)
	case "d":
		a.status = "Deleting..."
		return a, a.deleteBook(id)
	}
	return a, nil
}

func (a App) updateReading(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "esc", "backspace":
		path, err := a.router.Path(router.BookDetail, "id", a.route.Param("id"))
		if err != nil {
			return a, navigate("/")
		}
		return a, navigate(path)
	}

	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}
