package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/store"
	"github.com/billmal071/pavilion/internal/tui"
)

var listCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List books",
	Long: `List one page of books held by the server.

Examples:
  pavilion ls                  First page
  pavilion ls -p 3             Third page
  pavilion ls -p 2 -n 25       Second page of 25`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().IntP("page", "p", 1, "page number")
	listCmd.Flags().IntP("page-size", "n", 0, "books per page (default from api.page_size)")
}

func runList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	_, st := newStore()
	if err := st.FetchBooks(cmd.Context(), page, pageSize); err != nil {
		return fmt.Errorf("failed to list books: %w", err)
	}

	printPage(os.Stdout, st.Snapshot())
	return nil
}

func printPage(w io.Writer, s store.State) {
	if len(s.Books) == 0 {
		if s.TotalBooks == 0 {
			fmt.Fprintln(w, "No books in the library.")
		} else {
			fmt.Fprintf(w, "Page %d is empty (%d books, %d pages).\n", s.CurrentPage, s.TotalBooks, s.TotalPages())
		}
		return
	}

	fmt.Fprintf(w, "Books (page %d of %d, %d total):\n\n", s.CurrentPage, s.TotalPages(), s.TotalBooks)
	for _, b := range s.Books {
		printBook(w, b)
	}
}

func printBook(w io.Writer, b api.Book) {
	// Title (truncate if too long)
	title := b.Title
	if len([]rune(title)) > 50 {
		title = string([]rune(title)[:47]) + "..."
	}
	fmt.Fprintf(w, "[%d] %s\n", b.ID, title)

	var meta []string
	if b.Author != "" {
		meta = append(meta, b.Author)
	}
	if b.Format != "" {
		meta = append(meta, strings.ToUpper(b.Format))
	}
	meta = append(meta, tui.FormatSize(b.FileSize))
	fmt.Fprintf(w, "   %s\n\n", strings.Join(meta, " | "))
}
