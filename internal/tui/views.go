package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/billmal071/pavilion/internal/router"
)

func (a App) View() string {
	var body string
	switch a.route.Route.View {
	case router.ViewHome:
		body = a.homeView()
	case router.ViewBookDetail:
		body = a.detailView()
	case router.ViewReading:
		body = a.readingView()
	default:
		body = DimStyle.Render("  Loading...")
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(body)
	if a.state.Error != "" {
		b.WriteString("\n" + ErrorStyle.Render("  Error: "+a.state.Error))
	}
	if a.status != "" {
		b.WriteString("\n" + WarningStyle.Render("  "+a.status))
	}
	b.WriteString("\n")
	return b.String()
}

func help(parts ...string) string {
	return HelpStyle.Render("  " + strings.Join(parts, " • "))
}

func (a App) homeView() string {
	var b strings.Builder

	if len(a.state.Books) == 0 && !a.state.Loading {
		b.WriteString(TitleStyle.Render("  Library") + "\n")
		b.WriteString(DimStyle.Render("  No books yet. Add one with `pavilion add <file>`."))
	} else {
		b.WriteString(a.list.View())
	}

	footer := fmt.Sprintf("  Page %d of %d • %d books", a.state.CurrentPage, a.state.TotalPages(), a.state.TotalBooks)
	if a.state.Loading {
		footer += " • loading..."
	}
	b.WriteString("\n" + DimStyle.Render(footer))
	b.WriteString("\n" + help("↑/↓: navigate", "enter: open", "n/p: page", "d: delete", "r: refresh", "x: dismiss error", "q: quit"))
	return b.String()
}

func (a App) detailView() string {
	book, ok := a.currentBook()
	if !ok {
		if a.state.Loading {
			return DimStyle.Render("  Loading book " + a.route.Param("id") + "...")
		}
		return DimStyle.Render("  Book "+a.route.Param("id")+" is not available") + "\n" + help("esc: back")
	}

	row := func(label, value string) string {
		if value == "" {
			value = "-"
		}
		return LabelStyle.Render(label) + value
	}
	lines := []string{
		TitleStyle.Render(book.Title),
		row("Author", book.Author),
		row("Format", strings.ToUpper(book.Format)),
		row("Size", FormatSize(book.FileSize)),
		row("Added", FormatDate(book.CreatedAt)),
		row("ID", strconv.FormatUint(book.ID, 10)),
	}

	return BoxStyle.Render(strings.Join(lines, "\n")) + "\n" +
		help("r/enter: read", "d: delete", "esc: back", "q: quit")
}

func (a App) readingView() string {
	title := "Book " + a.route.Param("id")
	if book, ok := a.currentBook(); ok {
		title = book.Title
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("  "+title) + "\n")
	switch {
	case a.contentLoading:
		b.WriteString(DimStyle.Render("  Loading content..."))
	case a.contentErr != nil:
		b.WriteString(ErrorStyle.Render("  Cannot read this book: " + a.contentErr.Error()))
	default:
		b.WriteString(a.viewport.View())
		b.WriteString("\n" + DimStyle.Render(fmt.Sprintf("  %3.f%%", a.viewport.ScrollPercent()*100)))
	}
	b.WriteString("\n" + help("↑/↓: scroll", "esc: back", "q: quit"))
	return b.String()
}
