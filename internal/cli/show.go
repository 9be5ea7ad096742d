// internal/cli/show.go
package syncbench

import (
	"github.com/mwiater/syncbench/internal/appconfig"
	"github.com/spf13/cobra"
)

// showCmd represents the 'show' command group for displaying resources.
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Group commands for displaying resources",
}

// showConfigCmd prints the merged configuration, flags and environment included.
var showConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Show config settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := currentConfig(nil)
		if err != nil {
			return err
		}
		if err := appconfig.LoadDotEnv(".env"); err != nil {
			return err
		}
		_ = cfg.ResolveAPIKey(lookupEnv)
		appconfig.ShowConfig(cmd.OutOrStdout(), cfg.ConfigPath, *cfg)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.AddCommand(showConfigCmd)
}
