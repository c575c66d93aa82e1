package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/config"
	"github.com/billmal071/pavilion/internal/downloader"
	"github.com/billmal071/pavilion/internal/notify"
)

var getCmd = &cobra.Command{
	Use:     "get <id>",
	Aliases: []string{"download"},
	Short:   "Download a book file",
	Long: `Download the stored file of a book.

An interrupted download is resumed on the next run.

Examples:
  pavilion get 3
  pavilion get -o ~/Books 3`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		outputDir, _ := cmd.Flags().GetString("output")
		if outputDir == "" {
			outputDir = config.Get().Downloads.Path
		}

		_, st := newStore()
		if err := st.FetchBookByID(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to fetch book %s: %w", args[0], err)
		}
		book := st.Snapshot().CurrentBook

		m := downloader.NewManager()
		Printf("Fetching %s\n", m.FileURL(*book))

		path, err := m.Download(cmd.Context(), *book, outputDir)
		if err != nil {
			notify.DownloadFailed(downloader.FileName(*book), err.Error())
			return fmt.Errorf("download failed: %w", err)
		}

		notify.DownloadComplete(filepath.Base(path))
		Successf("Saved %s", path)
		return nil
	},
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "output directory (default: downloads.path)")
}
