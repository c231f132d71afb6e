package realtime

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/pipeline"
)

// Command creates the realtime processing command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Process live audio from a capture device",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Capture source, never file playback.
			settings.Audio.File.Path = ""
			return pipeline.Run(cmd.Context(), settings, os.Stdout)
		},
	}

	cmd.Flags().StringVarP(&settings.Audio.Source, "source", "s", viper.GetString("audio.source"), "Capture device name or ID")
	_ = viper.BindPFlags(cmd.Flags())

	return cmd
}
