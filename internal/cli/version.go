package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "pavilion version %s (%s)\n", config.Version, config.Commit)
	},
}
