package cli

import (
	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse [path]",
	Short: "Open the interactive library browser",
	Long: `Open the full-screen browser.

The optional path selects the first view:
  /               the book list (default)
  /books/<id>     one book
  /reading/<id>   the reading view`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/"
		if len(args) == 1 {
			path = args[0]
		}

		client, st := newStore()
		return tui.Run(cmd.Context(), client, st, path)
	},
}
