package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/notify"
)

var removeCmd = &cobra.Command{
	Use:     "rm <id>...",
	Aliases: []string{"remove", "delete"},
	Short:   "Delete books",
	Args:    cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st := newStore()

		var failed int
		for _, id := range args {
			if err := st.DeleteBook(cmd.Context(), id); err != nil {
				Errorf("failed to delete %s: %v", id, err)
				failed++
				continue
			}
			notify.BookDeleted(id)
			Successf("Deleted %s", id)
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d deletions failed", failed, len(args))
		}
		return nil
	},
}
