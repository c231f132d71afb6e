package chain

import (
	"math"

	"github.com/tkarvinen/soundpulse/internal/audio"
)

// volume maps the mean absolute amplitude of a chunk linearly onto the
// byte range and replicates it across every channel. Full-scale input
// saturates the output. Chunks gated out as non-speech go dark.
type volume struct {
	numOutputs int
	gain       float64
}

func newVolume(config AlgorithmConfig) (Algorithm, error) {
	return &volume{
		numOutputs: config.NumOutputs,
		gain:       paramOr(config.Params, "gain", 1.0),
	}, nil
}

func (a *volume) Name() string    { return "volume" }
func (a *volume) NumOutputs() int { return a.numOutputs }

func (a *volume) Process(chunk *audio.Chunk, isSpeech bool) []float64 {
	out := make([]float64, a.numOutputs)
	if !isSpeech {
		return out
	}

	level := meanAbsAmplitude(chunk.Samples) / 32768.0 * 255.0 * a.gain
	for i := range out {
		out[i] = level
	}
	return out
}

// dynamicVolume maps amplitude onto the byte range against an adaptive
// window. The window trackers start inverted (the minimum large, the
// maximum small) and converge monotonically onto the observed extremes,
// so quiet material fills the output range after a few chunks instead
// of staying dim. The dynamic_range parameter caps how far below the
// peak the window floor may sit, in decibels.
type dynamicVolume struct {
	numOutputs   int
	dynamicRange float64
	minInput     float64
	maxInput     float64
}

func newDynamicVolume(config AlgorithmConfig) (Algorithm, error) {
	return &dynamicVolume{
		numOutputs:   config.NumOutputs,
		dynamicRange: paramOr(config.Params, "dynamic_range", 40),
		minInput:     paramOr(config.Params, "min_input", 1000),
		maxInput:     paramOr(config.Params, "max_input", 100),
	}, nil
}

func (a *dynamicVolume) Name() string    { return "volume_dynamic" }
func (a *dynamicVolume) NumOutputs() int { return a.numOutputs }

func (a *dynamicVolume) Process(chunk *audio.Chunk, isSpeech bool) []float64 {
	out := make([]float64, a.numOutputs)
	if !isSpeech {
		// Gated-out chunks stay dark and leave the window untouched.
		return out
	}

	raw := meanAbsAmplitude(chunk.Samples)

	if raw > a.maxInput {
		a.maxInput = raw
	}
	if raw > 0 && raw < a.minInput {
		a.minInput = raw
	}

	level := a.scale(raw)
	for i := range out {
		out[i] = level
	}
	return out
}

// scale maps raw amplitude into [0, 255] against the current window.
func (a *dynamicVolume) scale(raw float64) float64 {
	// The floor never sits more than dynamicRange dB below the peak,
	// otherwise one loud transient would pin everything after it high.
	floor := a.maxInput / dbRatio(a.dynamicRange)
	lo := a.minInput
	if floor > lo {
		lo = floor
	}

	span := a.maxInput - lo
	if span <= 0 {
		return 0
	}

	level := (raw - lo) / span * 255.0
	if level < 0 {
		return 0
	}
	if level > 255 {
		return 255
	}
	return level
}

// dbRatio converts decibels to a linear amplitude ratio.
func dbRatio(db float64) float64 {
	return math.Pow(10, db/20)
}

func meanAbsAmplitude(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(len(samples))
}
