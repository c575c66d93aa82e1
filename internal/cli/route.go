package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/billmal071/pavilion/internal/router"
)

var routeCmd = &cobra.Command{
	Use:   "route [path]",
	Short: "Resolve a browser path, or list routes",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r := router.New()
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			for _, rt := range r.Routes() {
				fmt.Fprintf(out, "%-14s %-16s %s\n", rt.Name, rt.Pattern, rt.View)
			}
			return nil
		}

		m, err := r.Resolve(args[0])
		if err != nil {
			return fmt.Errorf("%s: %w", args[0], err)
		}

		fmt.Fprintf(out, "route: %s\nview:  %s\n", m.Route.Name, m.Route.View)
		keys := make([]string, 0, len(m.Params))
		for k := range m.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "param: %s=%q\n", k, m.Params[k])
		}
		return nil
	},
}
