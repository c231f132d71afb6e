package audio

import (
	"github.com/tkarvinen/soundpulse/internal/conf"
)

// NewSource creates the audio source selected by the settings: file
// playback when a file path is configured, soundcard capture otherwise.
// Stream sources are constructed directly by embedding applications.
func NewSource(settings *conf.Settings) (Source, error) {
	if settings.Audio.File.Path != "" {
		return NewFileSource(
			settings.Audio.File.Path,
			settings.Audio.SampleRate,
			settings.Audio.ChunkSize,
			settings.Audio.File.Loop,
		)
	}

	return NewCaptureSource(CaptureConfig{
		Device:     settings.Audio.Source,
		SampleRate: settings.Audio.SampleRate,
		ChunkSize:  settings.Audio.ChunkSize,
	}), nil
}
