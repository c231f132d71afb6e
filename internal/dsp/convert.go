package dsp

import "math"

const (
	int16Scale = 32768.0
	int16Min   = -32768
	int16Max   = 32767
)

// SamplesToFloat64 converts int16 PCM samples to float64 in [-1, 1).
func SamplesToFloat64(samples []int16) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s) / int16Scale
	}
	return out
}

// Float64ToSamples requantizes float64 samples in [-1, 1] back to int16,
// clipping to the valid range before narrowing.
func Float64ToSamples(samples []float64) []int16 {
	out := make([]int16, len(samples))
	for i, s := range samples {
		v := math.Round(s * int16Scale)
		if v > int16Max {
			v = int16Max
		} else if v < int16Min {
			v = int16Min
		}
		out[i] = int16(v)
	}
	return out
}

// ClampInt16 clips a float64 sample value to the int16 range.
func ClampInt16(v float64) int16 {
	if v > int16Max {
		return int16Max
	}
	if v < int16Min {
		return int16Min
	}
	return int16(v)
}
