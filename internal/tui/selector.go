package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/billmal071/pavilion/internal/api"
)

// BookItem wraps a Book for the list component
type BookItem struct {
	Book api.Book
}

func (b BookItem) Title() string { return b.Book.Title }

func (b BookItem) Description() string {
	var parts []string

	if b.Book.Author != "" {
		parts = append(parts, b.Book.Author)
	}
	if b.Book.Format != "" {
		parts = append(parts, strings.ToUpper(b.Book.Format))
	}
	if b.Book.FileSize > 0 {
		parts = append(parts, FormatSize(b.Book.FileSize))
	}

	if len(parts) == 0 {
		return "No metadata available"
	}
	return strings.Join(parts, " | ")
}

func (b BookItem) FilterValue() string { return b.Book.Title }

// BookDelegate renders book items in two lines
type BookDelegate struct{}

func (d BookDelegate) Height() int                             { return 2 }
func (d BookDelegate) Spacing() int                            { return 1 }
func (d BookDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d BookDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	book, ok := item.(BookItem)
	if !ok {
		return
	}

	// Truncate title if too long
	title := book.Book.Title
	if len([]rune(title)) > 60 {
		title = string([]rune(title)[:57]) + "..."
	}

	line := fmt.Sprintf("#%d %s", book.Book.ID, title)
	var str string
	if index == m.Index() {
		str = SelectedStyle.Render("  ➤ " + line)
	} else {
		str = NormalStyle.Render("    " + line)
	}
	str += "\n" + DimStyle.Render("      "+book.Description())

	fmt.Fprint(w, str)
}

func bookItems(books []api.Book) []list.Item {
	items := make([]list.Item, len(books))
	for i, b := range books {
		items[i] = BookItem{Book: b}
	}
	return items
}

func newBookList(books []api.Book) list.Model {
	l := list.New(bookItems(books), BookDelegate{}, 70, 20)
	l.Title = "Library"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle
	return l
}
