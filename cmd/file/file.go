package file

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/tkarvinen/soundpulse/internal/conf"
	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/pipeline"
)

// Command creates the file playback command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file [input.wav]",
		Short: "Process audio from a WAV file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.Audio.File.Path = args[0]
			}
			if settings.Audio.File.Path == "" {
				return errors.NewStd("no input file given").
					Component("cmd").
					Category(errors.CategoryConfiguration).
					Build()
			}
			return pipeline.Run(cmd.Context(), settings, os.Stdout)
		},
	}

	cmd.Flags().BoolVarP(&settings.Audio.File.Loop, "loop", "l", false, "Loop playback until interrupted")

	return cmd
}
