package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/notify"
)

var addCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Upload a book",
	Long: `Upload a book file to the library.

Supported formats: pdf, epub, txt, mobi. The title defaults to the file
name without its extension.

Examples:
  pavilion add dune.epub
  pavilion add notes.txt -t "Field Notes" -a "Me"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringP("title", "t", "", "book title")
	addCmd.Flags().StringP("author", "a", "", "book author")
}

// defaultTitle derives a title from a file name
func defaultTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSpace(strings.TrimSuffix(base, filepath.Ext(base)))
}

func runAdd(cmd *cobra.Command, args []string) error {
	path := args[0]
	title, _ := cmd.Flags().GetString("title")
	author, _ := cmd.Flags().GetString("author")
	if title == "" {
		title = defaultTitle(path)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	bar := progressbar.DefaultBytes(info.Size(), "Uploading")
	reader := progressbar.NewReader(f, bar)

	_, st := newStore()
	Printf("Uploading %s as %q\n", path, title)
	book, err := st.CreateBook(cmd.Context(), api.NewBook{
		Title:    title,
		Author:   author,
		Filename: filepath.Base(path),
		File:     &reader,
	})
	if err != nil {
		notify.UploadFailed(filepath.Base(path), err.Error())
		return fmt.Errorf("upload failed: %w", err)
	}
	bar.Finish()

	notify.UploadComplete(book.Title)
	Successf("Added [%d] %s", book.ID, book.Title)
	if s := st.Snapshot(); s.Error == "" {
		Printf("Library now holds %d books\n", s.TotalBooks)
	}
	return nil
}
