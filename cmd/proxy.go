package cmd

import (
	"github.com/spf13/cobra"

	"filmroom/config"
	proxy2 "filmroom/proxy"
)

func proxy(config *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "proxy",
		Short: "start the media relay for browser playback",
		Run: func(cmd *cobra.Command, args []string) {
			proxy2.RunHttp(config)
		},
	}
}
