package dsp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sine generates a test tone at the given frequency.
func sine(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2.0 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

// rms measures signal power over the tail of a buffer, skipping the
// filter settling transient.
func rms(signal []float64) float64 {
	start := len(signal) / 2
	var sum float64
	for _, s := range signal[start:] {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(signal)-start))
}

func TestNewHighPass_Validation(t *testing.T) {
	t.Run("zero passes", func(t *testing.T) {
		_, err := NewHighPass(44100, 100, 0.707, 0)
		assert.Error(t, err)
	})

	t.Run("cutoff above nyquist", func(t *testing.T) {
		_, err := NewHighPass(44100, 30000, 0.707, 1)
		assert.Error(t, err)
	})

	t.Run("valid", func(t *testing.T) {
		f, err := NewHighPass(44100, 100, 0.707, 1)
		require.NoError(t, err)
		assert.False(t, f.IsZero())
	})
}

func TestHighPass_RejectsDC(t *testing.T) {
	f, err := NewHighPass(44100, 100, 0.707, 1)
	require.NoError(t, err)

	input := make([]float64, 4096)
	for i := range input {
		input[i] = 0.8
	}
	f.ApplyBatch(input)

	assert.Less(t, rms(input), 0.01, "DC should be rejected by highpass")
}

func TestHighPass_PassesHighFrequencies(t *testing.T) {
	f, err := NewHighPass(44100, 100, 0.707, 1)
	require.NoError(t, err)

	input := sine(5000, 44100, 4096)
	f.ApplyBatch(input)

	// A 5 kHz tone is far above the 100 Hz cutoff, expect ~unity gain.
	assert.InDelta(t, 1.0/math.Sqrt2, rms(input), 0.05)
}

func TestFilter_Reset(t *testing.T) {
	f, err := NewHighPass(44100, 1000, 0.707, 2)
	require.NoError(t, err)

	first := sine(5000, 44100, 512)
	f.ApplyBatch(first)

	second := sine(5000, 44100, 512)
	f.Reset()
	f.ApplyBatch(second)

	fresh, err := NewHighPass(44100, 1000, 0.707, 2)
	require.NoError(t, err)
	expected := sine(5000, 44100, 512)
	fresh.ApplyBatch(expected)

	for i := range second {
		assert.InDelta(t, expected[i], second[i], 1e-12, "reset filter should match a fresh filter at sample %d", i)
	}
}

func TestButterworthHighPass_SectionCount(t *testing.T) {
	tests := []struct {
		order    int
		sections int
	}{
		{1, 1},
		{2, 1},
		{4, 2},
		{5, 3},
	}

	for _, tt := range tests {
		chain, err := NewButterworthHighPass(44100, 100, tt.order)
		require.NoError(t, err, "order %d", tt.order)
		assert.Equal(t, tt.sections, chain.Length(), "order %d", tt.order)
	}
}

func TestButterworthHighPass_Validation(t *testing.T) {
	_, err := NewButterworthHighPass(44100, 100, 0)
	assert.Error(t, err)

	_, err = NewButterworthHighPass(44100, 30000, 5)
	assert.Error(t, err)
}

func TestButterworthHighPass_Response(t *testing.T) {
	const (
		sampleRate = 44100
		cutoff     = 100.0
		order      = 5
	)

	t.Run("stopband", func(t *testing.T) {
		chain, err := NewButterworthHighPass(sampleRate, cutoff, order)
		require.NoError(t, err)

		// One octave below cutoff a 5th-order filter attenuates ~30 dB.
		input := sine(50, sampleRate, 1<<15)
		chain.ApplyBatch(input)
		assert.Less(t, rms(input), 0.05)
	})

	t.Run("passband", func(t *testing.T) {
		chain, err := NewButterworthHighPass(sampleRate, cutoff, order)
		require.NoError(t, err)

		input := sine(2000, sampleRate, 1<<15)
		chain.ApplyBatch(input)
		assert.InDelta(t, 1.0/math.Sqrt2, rms(input), 0.05)
	})

	t.Run("cutoff is -3dB", func(t *testing.T) {
		chain, err := NewButterworthHighPass(sampleRate, cutoff, order)
		require.NoError(t, err)

		input := sine(cutoff, sampleRate, 1<<16)
		chain.ApplyBatch(input)
		expected := 1.0 / math.Sqrt2 * math.Sqrt(0.5) // -3 dB on RMS of full-scale sine
		assert.InDelta(t, expected, rms(input), 0.05)
	})
}

func TestFilterChain_AddFilter(t *testing.T) {
	chain := NewFilterChain()
	assert.Error(t, chain.AddFilter(nil))
	assert.Error(t, chain.AddFilter(&Filter{}))

	f, err := NewHighPass(44100, 100, 0.707, 1)
	require.NoError(t, err)
	require.NoError(t, chain.AddFilter(f))
	assert.Equal(t, 1, chain.Length())
}
