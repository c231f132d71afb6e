// conf/validate.go settings validation
package conf

import (
	"github.com/tkarvinen/soundpulse/internal/errors"
)

// ValidateSettings checks that loaded settings are usable before any
// component is constructed from them.
func ValidateSettings(settings *Settings) error {
	if settings.Audio.SampleRate <= 0 {
		return errors.Newf("invalid sample rate: %d", settings.Audio.SampleRate).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("setting", "audio.samplerate").
			Build()
	}

	if settings.Audio.ChunkSize <= 0 {
		return errors.Newf("invalid chunk size: %d", settings.Audio.ChunkSize).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("setting", "audio.chunksize").
			Build()
	}

	if settings.Chain.NumOutputs <= 0 {
		return errors.Newf("invalid number of outputs: %d", settings.Chain.NumOutputs).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("setting", "chain.numoutputs").
			Build()
	}

	if settings.VAD.Mode < 0 || settings.VAD.Mode > 3 {
		return errors.Newf("invalid VAD mode: %d, must be 0-3", settings.VAD.Mode).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("setting", "vad.mode").
			Build()
	}

	if settings.Audio.HighPass.Enabled && settings.Audio.HighPass.Order < 1 {
		return errors.Newf("invalid high-pass filter order: %d", settings.Audio.HighPass.Order).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("setting", "audio.highpass.order").
			Build()
	}

	return nil
}
