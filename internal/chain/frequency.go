package chain

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/tkarvinen/soundpulse/internal/audio"
	"github.com/tkarvinen/soundpulse/internal/dsp"
	"github.com/tkarvinen/soundpulse/internal/errors"
)

// frequency splits the chunk spectrum into one band per output channel
// and reports the peak amplitude in each. Band edges are spaced on the
// mel scale so low frequencies, where most musical and vocal energy
// lives, get more channels than the high end.
type frequency struct {
	numOutputs int
	sampleRate int
	edges      []float64
	gain       float64
}

func newFrequency(config AlgorithmConfig) (Algorithm, error) {
	nyquist := float64(config.SampleRate) / 2

	minFreq := paramOr(config.Params, "min_freq", 20)
	maxFreq := paramOr(config.Params, "max_freq", nyquist)
	if maxFreq > nyquist {
		maxFreq = nyquist
	}
	if minFreq <= 0 || minFreq >= maxFreq {
		return nil, errors.Newf("frequency band range %g..%g Hz is invalid", minFreq, maxFreq).
			Component("chain").
			Category(errors.CategoryConfiguration).
			Context("min_freq", minFreq).
			Context("max_freq", maxFreq).
			Build()
	}

	return &frequency{
		numOutputs: config.NumOutputs,
		sampleRate: config.SampleRate,
		edges:      dsp.MelBandEdges(config.NumOutputs, minFreq, maxFreq),
		gain:       paramOr(config.Params, "gain", 1.0),
	}, nil
}

func (a *frequency) Name() string    { return "frequency" }
func (a *frequency) NumOutputs() int { return a.numOutputs }

func (a *frequency) Process(chunk *audio.Chunk, _ bool) []float64 {
	floats := dsp.SamplesToFloat64(chunk.Samples)
	spectrum := fft.FFTReal(floats)

	n := len(floats)
	out := make([]float64, a.numOutputs)
	if n == 0 {
		return out
	}

	// A full-scale tone lands its energy in one bin with magnitude N/2,
	// so dividing by N/2 recovers the tone amplitude in [0, 1].
	norm := float64(n) / 2
	binHz := float64(a.sampleRate) / float64(n)

	for band := 0; band < a.numOutputs; band++ {
		lo, hi := a.edges[band], a.edges[band+1]

		var peak float64
		for bin := 1; bin <= n/2; bin++ {
			freq := float64(bin) * binHz
			if freq < lo {
				continue
			}
			if freq >= hi {
				break
			}
			if mag := cmplx.Abs(spectrum[bin]); mag > peak {
				peak = mag
			}
		}

		level := peak / norm * 255.0 * a.gain
		if level > 255 {
			level = 255
		}
		out[band] = level
	}
	return out
}
