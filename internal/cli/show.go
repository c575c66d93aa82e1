package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/tui"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st := newStore()
		if err := st.FetchBookByID(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to fetch book %s: %w", args[0], err)
		}

		book := st.Snapshot().CurrentBook
		if book == nil {
			return fmt.Errorf("book %s not found", args[0])
		}
		printDetail(os.Stdout, *book)
		return nil
	},
}

func printDetail(w io.Writer, b api.Book) {
	fmt.Fprintf(w, "Title:   %s\n", b.Title)
	if b.Author != "" {
		fmt.Fprintf(w, "Author:  %s\n", b.Author)
	}
	fmt.Fprintf(w, "Format:  %s\n", strings.ToUpper(b.Format))
	fmt.Fprintf(w, "Size:    %s\n", tui.FormatSize(b.FileSize))
	fmt.Fprintf(w, "Added:   %s\n", tui.FormatDate(b.CreatedAt))
	fmt.Fprintf(w, "ID:      %d\n", b.ID)
	if Verbose() {
		fmt.Fprintf(w, "File:    %s\n", b.FilePath)
	}
}
