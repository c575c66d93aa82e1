package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and modify pavilion configuration.

Configuration is stored in ~/.config/pavilion/config.yaml. Every key can
also be set from the environment as PAVILION_<SECTION>_<KEY>.

Examples:
  pavilion config get api.base_url
  pavilion config set api.base_url http://books.local:8080/api
  pavilion config set database.driver postgres
  pavilion config set redis.addr localhost:6379`,
}

var configGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Get a configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := config.GetValue(key)
		if value == nil {
			return fmt.Errorf("key not found: %s", key)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		value := args[1]

		if err := config.Set(key, value); err != nil {
			return fmt.Errorf("failed to set config: %w", err)
		}

		Successf("Set %s = %s", key, value)
		fmt.Printf("Config saved to: %s\n", config.GetConfigPath())
		return nil
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Config file: %s\n", config.GetConfigPath())
		fmt.Fprintf(w, "Database:    %s\n", config.GetDBPath())
		fmt.Fprintf(w, "Config dir:  %s\n", config.GetConfigDir())
	},
}

func init() {
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configPathCmd)
}
