// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "soundpulse")
	viper.SetDefault("main.log.level", "info")

	viper.SetDefault("audio.source", "sysdefault")
	viper.SetDefault("audio.samplerate", DefaultSampleRate)
	viper.SetDefault("audio.chunksize", DefaultChunkSize)
	viper.SetDefault("audio.file.path", "")
	viper.SetDefault("audio.file.loop", true)
	viper.SetDefault("audio.highpass.enabled", false)
	viper.SetDefault("audio.highpass.cutoff", DefaultHighPassCutoff)
	viper.SetDefault("audio.highpass.order", DefaultHighPassOrder)

	viper.SetDefault("vad.enabled", false)
	viper.SetDefault("vad.mode", DefaultVADMode)
	viper.SetDefault("vad.frameduration", DefaultVADFrameDuration)
	viper.SetDefault("vad.resamplerate", DefaultVADResampleRate)

	viper.SetDefault("chain.path", "")
	viper.SetDefault("chain.numoutputs", DefaultNumOutputs)

	viper.SetDefault("output.type", "writer")

	viper.SetDefault("metrics.enabled", false)
	viper.SetDefault("metrics.listen", "0.0.0.0:8090")
}
