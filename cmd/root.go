package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tkarvinen/soundpulse/cmd/devices"
	"github.com/tkarvinen/soundpulse/cmd/file"
	"github.com/tkarvinen/soundpulse/cmd/realtime"
	"github.com/tkarvinen/soundpulse/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "soundpulse",
		Short: "Audio-reactive output pipeline",
		Long: "Soundpulse captures audio, runs it through an analysis chain " +
			"and drives output channels with the result.",
	}

	// Set up the global flags for the root command.
	cobra.CheckErr(setupFlags(rootCmd, settings))

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		realtime.Command(settings),
		file.Command(settings),
		devices.Command(),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags have precedence over the config file; re-validate the
		// merged settings before any subcommand runs.
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().IntVarP(&settings.Audio.SampleRate, "samplerate", "r", viper.GetInt("audio.samplerate"), "Capture sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&settings.Audio.ChunkSize, "chunksize", viper.GetInt("audio.chunksize"), "Samples per processing chunk")
	rootCmd.PersistentFlags().StringVar(&settings.Chain.Path, "chain", viper.GetString("chain.path"), "Path to algorithm chain configuration file")
	rootCmd.PersistentFlags().IntVarP(&settings.Chain.NumOutputs, "outputs", "n", viper.GetInt("chain.numoutputs"), "Number of output channels")
	rootCmd.PersistentFlags().StringVarP(&settings.Output.Type, "output", "o", viper.GetString("output.type"), "Output sink type: null or writer")
	rootCmd.PersistentFlags().BoolVar(&settings.VAD.Enabled, "vad", viper.GetBool("vad.enabled"), "Gate processing on detected voice activity")
	rootCmd.PersistentFlags().IntVar(&settings.VAD.Mode, "vad-mode", viper.GetInt("vad.mode"), "Voice detector aggressiveness, 0 to 3")
	rootCmd.PersistentFlags().BoolVar(&settings.Audio.HighPass.Enabled, "highpass", viper.GetBool("audio.highpass.enabled"), "Apply a high-pass filter to the input")
	rootCmd.PersistentFlags().Float64Var(&settings.Audio.HighPass.Cutoff, "highpass-cutoff", viper.GetFloat64("audio.highpass.cutoff"), "High-pass cutoff frequency in Hz")
	rootCmd.PersistentFlags().BoolVar(&settings.Metrics.Enabled, "metrics", viper.GetBool("metrics.enabled"), "Expose Prometheus metrics over HTTP")
	rootCmd.PersistentFlags().StringVar(&settings.Metrics.Listen, "metrics-listen", viper.GetString("metrics.listen"), "Metrics endpoint listen address")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
