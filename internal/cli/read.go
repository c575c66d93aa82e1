package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
)

var readCmd = &cobra.Command{
	Use:   "read <id>",
	Short: "Print the text of a book",
	Long: `Print the readable text of a book to stdout.

Text and EPUB books are supported; the server rejects PDF and MOBI.
Use "pavilion browse /reading/<id>" to read in a scrolling view.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient()
		content, err := client.GetBookContent(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("failed to read book %s: %w", args[0], err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), content)
		return nil
	},
}
