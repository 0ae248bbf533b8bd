package cmd

import (
	"github.com/spf13/cobra"

	"filmroom/config"
	server2 "filmroom/server"
)

func server(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "start the film api server",
		Run: func(cmd *cobra.Command, args []string) {
			server2.RunHttp(config)
		},
	}
}
