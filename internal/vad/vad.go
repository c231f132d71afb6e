// Package vad gates the processing pipeline on detected voice activity.
// Chunks are resampled to a rate the detector supports, partitioned into
// fixed-duration frames and classified frame by frame; a chunk counts as
// speech when any of its frames does.
package vad

import (
	"encoding/binary"
	"log/slog"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/dsp"
	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
)

// Classifier decides whether a single PCM frame contains speech. The
// frame is 16-bit little-endian mono at the given rate.
type Classifier interface {
	IsSpeech(sampleRate int, frame []byte) (bool, error)
}

// webrtcClassifier wraps the WebRTC voice activity detector.
type webrtcClassifier struct {
	vad *webrtcvad.VAD
}

func (c *webrtcClassifier) IsSpeech(sampleRate int, frame []byte) (bool, error) {
	return c.vad.Process(sampleRate, frame)
}

// Config controls the gate.
type Config struct {
	// Mode is the detector aggressiveness, 0 (least) to 3 (most).
	Mode int
	// FrameDuration is the classification frame length in milliseconds.
	// The detector accepts 10, 20 or 30.
	FrameDuration int
	// ResampleRate is the rate chunks are converted to before
	// classification. The detector accepts 8000, 16000, 32000 or 48000.
	ResampleRate int
}

// Gate wraps a frame classifier with the chunk-level resample, framing
// and aggregation logic. It is not safe for concurrent use; the
// processing loop owns it.
type Gate struct {
	classifier    Classifier
	frameDuration int
	resampleRate  int
	frameSamples  int

	// speaking tracks the current speech state so transitions can be
	// logged once instead of per chunk.
	speaking bool

	logger *slog.Logger
}

// New creates a gate backed by the WebRTC detector.
func New(config Config) (*Gate, error) {
	detector, err := webrtcvad.New()
	if err != nil {
		return nil, errors.New(err).
			Component("vad").
			Category(errors.CategoryState).
			Context("operation", "init_detector").
			Build()
	}
	if err := detector.SetMode(config.Mode); err != nil {
		return nil, errors.Newf("voice detector mode must be 0 to 3, got %d", config.Mode).
			Component("vad").
			Category(errors.CategoryConfiguration).
			Context("mode", config.Mode).
			Build()
	}

	return NewWithClassifier(config, &webrtcClassifier{vad: detector})
}

// NewWithClassifier creates a gate with a caller-provided classifier.
func NewWithClassifier(config Config, classifier Classifier) (*Gate, error) {
	if config.Mode < 0 || config.Mode > 3 {
		return nil, errors.Newf("voice detector mode must be 0 to 3, got %d", config.Mode).
			Component("vad").
			Category(errors.CategoryConfiguration).
			Context("mode", config.Mode).
			Build()
	}

	switch config.FrameDuration {
	case 10, 20, 30:
	default:
		return nil, errors.Newf("voice detector frame duration must be 10, 20 or 30 ms, got %d", config.FrameDuration).
			Component("vad").
			Category(errors.CategoryConfiguration).
			Context("frame_duration", config.FrameDuration).
			Build()
	}

	switch config.ResampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return nil, errors.Newf("voice detector sample rate must be 8, 16, 32 or 48 kHz, got %d", config.ResampleRate).
			Component("vad").
			Category(errors.CategoryConfiguration).
			Context("resample_rate", config.ResampleRate).
			Build()
	}

	logger := logging.ForService("vad")
	if logger == nil {
		logger = slog.Default()
	}

	return &Gate{
		classifier:    classifier,
		frameDuration: config.FrameDuration,
		resampleRate:  config.ResampleRate,
		frameSamples:  config.ResampleRate * config.FrameDuration / 1000,
		logger:        logger,
	}, nil
}

// IsSpeech classifies a chunk. The chunk is resampled to the detector
// rate, split into frames and classified until the first speech frame;
// a trailing partial frame is discarded. The chunk itself is never
// modified.
func (g *Gate) IsSpeech(chunk *audio.Chunk) (bool, error) {
	samples := chunk.Samples
	if chunk.SampleRate != g.resampleRate {
		floats := dsp.SamplesToFloat64(chunk.Samples)
		resampled, err := dsp.Resample(floats, chunk.SampleRate, g.resampleRate)
		if err != nil {
			return false, errors.New(err).
				Component("vad").
				Category(errors.CategoryAudio).
				Context("operation", "resample_chunk").
				Context("from_rate", chunk.SampleRate).
				Build()
		}
		samples = dsp.Float64ToSamples(resampled)
	}

	speech := false
	for offset := 0; offset+g.frameSamples <= len(samples); offset += g.frameSamples {
		frame := samplesToBytes(samples[offset : offset+g.frameSamples])
		active, err := g.classifier.IsSpeech(g.resampleRate, frame)
		if err != nil {
			return false, errors.New(err).
				Component("vad").
				Category(errors.CategoryAudio).
				Context("operation", "classify_frame").
				Context("frame_offset", offset).
				Build()
		}
		if active {
			speech = true
			break
		}
	}

	if speech != g.speaking {
		g.speaking = speech
		if speech {
			g.logger.Debug("speech started")
		} else {
			g.logger.Debug("speech ended")
		}
	}

	return speech, nil
}

// Speaking reports the state after the most recent classification.
func (g *Gate) Speaking() bool {
	return g.speaking
}

// samplesToBytes packs samples as 16-bit little-endian PCM.
func samplesToBytes(samples []int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}
