// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/classgroups/classgroups/internal/config"
	"github.com/classgroups/classgroups/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "classgroups",
	Short: "classgroups manages student groups and plagiarism match links",
	Long: `classgroups manages group sets, groups and memberships of course units
and keeps plagiarism match links consistent, through a JSON API and a CLI.`,
	Args: cobra.OnlyValidArgs,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		if cfg, err = config.ReadConfig(configPath); err != nil {
			return err
		}

		return logger.Init(cfg.Log)
	},
	SilenceUsage: true,
}

var (
	configPath string // Path to the configuration file

	cfg config.Config
)

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "directory holding main.toml")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
