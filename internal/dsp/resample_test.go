package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResample_Validation(t *testing.T) {
	_, err := Resample([]float64{0}, 0, 16000)
	assert.Error(t, err)

	_, err = Resample([]float64{0}, 44100, -1)
	assert.Error(t, err)
}

func TestResample_SameRateCopies(t *testing.T) {
	input := []float64{0.1, 0.2, 0.3}
	out, err := Resample(input, 16000, 16000)
	require.NoError(t, err)
	assert.Equal(t, input, out)

	out[0] = 9.0
	assert.InDelta(t, 0.1, input[0], 1e-12, "output must not alias the input")
}

func TestResample_OutputLength(t *testing.T) {
	tests := []struct {
		name     string
		inLen    int
		from, to int
		outLen   int
	}{
		{"44k1 to 16k", 2048, 44100, 16000, 744},
		{"16k to 48k", 160, 16000, 48000, 480},
		{"empty", 0, 44100, 16000, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Resample(make([]float64, tt.inLen), tt.from, tt.to)
			require.NoError(t, err)
			assert.Len(t, out, tt.outLen)
		})
	}
}

func TestResample_PreservesTone(t *testing.T) {
	const (
		fromRate = 44100
		toRate   = 16000
		freq     = 440.0
	)

	input := sine(freq, fromRate, 8192)
	out, err := Resample(input, fromRate, toRate)
	require.NoError(t, err)

	// The resampled tone should keep its amplitude.
	assert.InDelta(t, 1.0/math.Sqrt2, rms(out), 0.02)

	// And its frequency: count zero crossings over the interior.
	crossings := 0
	for i := 1; i < len(out); i++ {
		if (out[i-1] < 0) != (out[i] < 0) {
			crossings++
		}
	}
	gotFreq := float64(crossings) / 2.0 * float64(toRate) / float64(len(out))
	assert.InDelta(t, freq, gotFreq, 5.0)
}

func TestResample_SilenceStaysSilent(t *testing.T) {
	out, err := Resample(make([]float64, 2048), 44100, 16000)
	require.NoError(t, err)
	for i, s := range out {
		require.InDelta(t, 0.0, s, 1e-12, "sample %d", i)
	}
}

func TestConvert_RoundTrip(t *testing.T) {
	samples := []int16{0, 1, -1, 16384, -16384, 32767, -32768}
	floats := SamplesToFloat64(samples)
	back := Float64ToSamples(floats)
	assert.Equal(t, samples, back)
}

func TestConvert_ClipsBeforeNarrowing(t *testing.T) {
	back := Float64ToSamples([]float64{1.5, -1.5})
	assert.Equal(t, []int16{32767, -32768}, back)

	assert.Equal(t, int16(32767), ClampInt16(1e6))
	assert.Equal(t, int16(-32768), ClampInt16(-1e6))
	assert.Equal(t, int16(100), ClampInt16(100))
}

func TestMelScale(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		for _, hz := range []float64{50, 440, 1000, 8000} {
			assert.InDelta(t, hz, MelToHz(HzToMel(hz)), 1e-6)
		}
	})

	t.Run("monotonic", func(t *testing.T) {
		assert.Less(t, HzToMel(100), HzToMel(200))
		assert.Less(t, HzToMel(1000), HzToMel(2000))
	})

	t.Run("band edges", func(t *testing.T) {
		edges := MelBandEdges(5, 20, 8000)
		require.Len(t, edges, 6)
		assert.InDelta(t, 20, edges[0], 1e-6)
		assert.InDelta(t, 8000, edges[5], 1e-6)
		for i := 1; i < len(edges); i++ {
			assert.Greater(t, edges[i], edges[i-1])
		}
	})
}
