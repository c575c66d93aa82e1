package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/api"
	"github.com/billmal071/pavilion/internal/config"
	"github.com/billmal071/pavilion/internal/logging"
	"github.com/billmal071/pavilion/internal/notify"
	"github.com/billmal071/pavilion/internal/store"
)

var (
	cfgFile string
	verbose bool
	logger  zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "pavilion",
	Short: "Browse, read and manage a book library",
	Long: `pavilion is a client and server for a small book library.

Books are uploaded to a pavilion server, listed page by page, shown in
detail and read in the terminal.

Examples:
  pavilion serve                          Start the library server
  pavilion add dune.epub -t "Dune"        Upload a book
  pavilion ls                             List the first page of books
  pavilion show 3                         Show book #3
  pavilion read 3                         Print the text of book #3
  pavilion browse                         Open the interactive browser
  pavilion browse /reading/3              Open the browser on a path`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize config
		if err := config.Init(cfgFile); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		cfg := config.Get()
		level := cfg.Log.Level
		if verbose {
			level = "debug"
		}
		logger = logging.Setup(level, cfg.Log.Pretty)
		return nil
	},
}

// notifyGrace is how long Execute waits for pending desktop notifications
const notifyGrace = 3 * time.Second

// Execute runs the root command
func Execute() error {
	err := rootCmd.Execute()
	if !notify.Wait(notifyGrace) {
		logger.Debug().Msg("exiting with notifications still pending")
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.config/pavilion/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(browseCmd)
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(completionCmd)
}

// newStore builds the client and the application store from config
func newStore() (*api.HTTPClient, *store.Store) {
	client := api.NewClient()
	st := store.New(client,
		store.WithLogger(logger.With().Str("component", "store").Logger()),
		store.WithPageSize(config.Get().API.PageSize),
	)
	return client, st
}

// Verbose returns whether verbose mode is enabled
func Verbose() bool {
	return verbose
}

// Printf prints if verbose mode is enabled
func Printf(format string, args ...interface{}) {
	if verbose {
		fmt.Printf(format, args...)
	}
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(format string, args ...interface{}) {
	fmt.Printf("✓ "+format+"\n", args...)
}
