package dsp

import (
	"math"

	"github.com/tkarvinen/soundpulse/internal/errors"
)

// sincTaps is the one-sided width of the windowed-sinc kernel. 16 input
// samples per side keeps aliasing rejection well below the 16-bit noise
// floor at the conversion ratios used here.
const sincTaps = 16

// Resample converts audio from one sample rate to another using
// band-limited windowed-sinc interpolation. The kernel is symmetric, so
// the conversion is linear-phase; when downsampling the kernel cutoff is
// lowered to the output Nyquist frequency to avoid aliasing.
func Resample(input []float64, fromRate, toRate int) ([]float64, error) {
	if fromRate <= 0 || toRate <= 0 {
		return nil, errors.Newf("invalid sample rates: %d -> %d", fromRate, toRate).
			Component("dsp").
			Category(errors.CategoryValidation).
			Context("operation", "resample").
			Build()
	}

	if fromRate == toRate {
		out := make([]float64, len(input))
		copy(out, input)
		return out, nil
	}

	if len(input) == 0 {
		return []float64{}, nil
	}

	ratio := float64(toRate) / float64(fromRate)
	outLen := int(math.Ceil(float64(len(input)) * ratio))
	output := make([]float64, outLen)

	// Normalized kernel cutoff relative to the input Nyquist.
	cutoff := 1.0
	if toRate < fromRate {
		cutoff = ratio
	}

	for i := range output {
		// Position of this output sample on the input time axis.
		pos := float64(i) / ratio
		center := int(math.Floor(pos))

		var sum, norm float64
		for j := center - sincTaps + 1; j <= center+sincTaps; j++ {
			if j < 0 || j >= len(input) {
				continue
			}
			x := pos - float64(j)
			w := hannWindow(x / float64(sincTaps))
			h := cutoff * sinc(cutoff*x) * w
			sum += input[j] * h
			norm += h
		}

		// Normalizing by the kernel sum keeps unity gain near the
		// chunk edges where the kernel is truncated.
		if norm != 0 {
			output[i] = sum / norm
		}
	}

	return output, nil
}

// sinc is the normalized sinc function sin(pi*x)/(pi*x).
func sinc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// hannWindow evaluates a Hann window for x in [-1, 1].
func hannWindow(x float64) float64 {
	if x < -1 || x > 1 {
		return 0
	}
	return 0.5 * (1.0 + math.Cos(math.Pi*x))
}
