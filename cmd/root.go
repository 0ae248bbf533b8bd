package cmd

import (
	"github.com/spf13/cobra"

	"filmroom/config"
)

func Root(config *config.Config) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "filmroom",
		Short: "game film api and media relay",
	}
	rootCmd.AddCommand(server(config))
	rootCmd.AddCommand(proxy(config))
	return rootCmd
}
