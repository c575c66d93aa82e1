package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
)

var completionCmd = &cobra.Command{
	Use:   "completion [bash|zsh|fish|powershell]",
	Short: "Generate shell completion scripts",
	Long: `Generate shell completion scripts for pavilion.

To load completions:

Bash:
  $ source <(pavilion completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ pavilion completion bash > /etc/bash_completion.d/pavilion
  # macOS:
  $ pavilion completion bash > /usr/local/etc/bash_completion.d/pavilion

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it.  You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ pavilion completion zsh > "${fpath[1]}/_pavilion"

Fish:
  $ pavilion completion fish | source

  # To load completions for each session, execute once:
  $ pavilion completion fish > ~/.config/fish/completions/pavilion.fish

PowerShell:
  PS> pavilion completion powershell | Out-String | Invoke-Expression`,
	DisableFlagsInUseLine: true,
	ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
	Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		case "powershell":
			return rootCmd.GenPowerShellCompletionWithDesc(os.Stdout)
		default:
			return fmt.Errorf("unsupported shell: %s", args[0])
		}
	},
}

func init() {
	// Book ids are completed from the first page the server returns
	showCmd.ValidArgsFunction = completeBookIDs
	readCmd.ValidArgsFunction = completeBookIDs
	removeCmd.ValidArgsFunction = completeBookIDs
	getCmd.ValidArgsFunction = completeBookIDs
}

const completionPageSize = 100

// completeBookIDs provides dynamic completion for book ids
func completeBookIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	page, err := api.NewClient().ListBooks(cmd.Context(), 1, completionPageSize)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return bookCompletions(page.Books), cobra.ShellCompDirectiveNoFileComp
}

// bookCompletions formats "ID<tab>Title (FORMAT)" entries
func bookCompletions(books []api.Book) []string {
	completions := make([]string, 0, len(books))
	for _, b := range books {
		completions = append(completions, fmt.Sprintf("%d\t%s (%s)", b.ID, truncateTitle(b.Title, 40), b.Format))
	}
	return completions
}

// truncateTitle truncates a title to the specified length
func truncateTitle(title string, maxLen int) string {
	r := []rune(title)
	if len(r) <= maxLen {
		return title
	}
	return string(r[:maxLen-3]) + "..."
}
