// config.go: settings struct and functions to load the application settings.
package conf

import (
	"errors"
	"fmt"
	"sync"

	"github.com/spf13/viper"
)

// AudioSettings contains settings for audio acquisition.
type AudioSettings struct {
	Source     string // capture device name or ID, "sysdefault" for system default
	SampleRate int    // sample rate in Hz
	ChunkSize  int    // samples per chunk
	File       struct {
		Path string // path to audio file for file playback source
		Loop bool   // loop file playback
	}
	HighPass HighPassSettings // high-pass filter settings
}

// HighPassSettings contains settings for the input high-pass filter.
type HighPassSettings struct {
	Enabled bool    // true to enable the high-pass filter
	Cutoff  float64 // cutoff frequency in Hz
	Order   int     // Butterworth filter order
}

// VADSettings contains settings for voice activity detection.
type VADSettings struct {
	Enabled       bool // true to gate algorithm processing on voice activity
	Mode          int  // aggressiveness mode 0-3, higher is more aggressive
	FrameDuration int  // classifier frame duration in ms, 10, 20 or 30
	ResampleRate  int  // classifier sample rate in Hz
}

// ChainSettings contains settings for the algorithm chain.
type ChainSettings struct {
	Path       string // path to the chain configuration file
	NumOutputs int    // number of output vector slots
}

// OutputSettings contains settings for the output sink.
type OutputSettings struct {
	Type string // sink type: "writer" or "null"
}

// MetricsSettings contains settings for the telemetry endpoint.
type MetricsSettings struct {
	Enabled bool   // true to enable Prometheus telemetry endpoint
	Listen  string // listen address and port of telemetry endpoint
}

// Settings contains all application settings.
type Settings struct {
	Debug bool // true to enable debug output

	Main struct {
		Name string // name of this node, used in logging
		Log  struct {
			Level string // minimum log level: debug, info, warn, error
		}
	}

	Audio   AudioSettings
	VAD     VADSettings
	Chain   ChainSettings
	Output  OutputSettings
	Metrics MetricsSettings
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into a new
// Settings instance.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the
// configuration file when one is present.
func initViper() error {
	viper.SetConfigName("soundpulse")
	viper.SetConfigType("yaml")

	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/soundpulse")
	viper.AddConfigPath("/etc/soundpulse")

	setDefaultConfig()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// No config file, defaults and flags apply.
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// Setting returns the current settings instance, loading it on first use.
func Setting() *Settings {
	settingsMutex.RLock()
	if settingsInstance != nil {
		defer settingsMutex.RUnlock()
		return settingsInstance
	}
	settingsMutex.RUnlock()

	settings, err := Load()
	if err != nil {
		return nil
	}
	return settings
}
