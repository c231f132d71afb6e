package vad

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tkarvinen/soundpulse/internal/audio"
)

// fakeClassifier records the frames it sees and answers from a script.
type fakeClassifier struct {
	results []bool
	calls   int
	frames  [][]byte
	rate    int
}

func (f *fakeClassifier) IsSpeech(sampleRate int, frame []byte) (bool, error) {
	f.rate = sampleRate
	f.frames = append(f.frames, frame)
	result := false
	if f.calls < len(f.results) {
		result = f.results[f.calls]
	}
	f.calls++
	return result, nil
}

func chunkOf(samples []int16, rate int) *audio.Chunk {
	return &audio.Chunk{
		Samples:    samples,
		SampleRate: rate,
		Channels:   1,
		Timestamp:  time.Now(),
	}
}

func newTestGate(t *testing.T, fake *fakeClassifier) *Gate {
	t.Helper()
	gate, err := NewWithClassifier(Config{
		Mode:          1,
		FrameDuration: 30,
		ResampleRate:  16000,
	}, fake)
	require.NoError(t, err)
	return gate
}

func TestGate_FramePartitioning(t *testing.T) {
	fake := &fakeClassifier{}
	gate := newTestGate(t, fake)

	// 2.5 frames at 16 kHz and 30 ms. The partial tail is discarded.
	const frameSamples = 480
	chunk := chunkOf(make([]int16, frameSamples*2+frameSamples/2), 16000)

	speech, err := gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.False(t, speech)
	assert.Equal(t, 2, fake.calls, "partial frame must not be classified")
	assert.Equal(t, 16000, fake.rate)
	for _, frame := range fake.frames {
		assert.Len(t, frame, frameSamples*2, "16-bit PCM bytes per frame")
	}
}

func TestGate_AnyFrameTriggersSpeech(t *testing.T) {
	fake := &fakeClassifier{results: []bool{false, true, false}}
	gate := newTestGate(t, fake)

	chunk := chunkOf(make([]int16, 480*4), 16000)
	speech, err := gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.True(t, speech)
	assert.Equal(t, 2, fake.calls, "classification stops at the first speech frame")
}

func TestGate_SubFrameChunkIsNotSpeech(t *testing.T) {
	fake := &fakeClassifier{results: []bool{true}}
	gate := newTestGate(t, fake)

	// Shorter than one frame, nothing to classify.
	speech, err := gate.IsSpeech(chunkOf(make([]int16, 100), 16000))
	require.NoError(t, err)
	assert.False(t, speech)
	assert.Zero(t, fake.calls)
}

func TestGate_ResamplesForeignRates(t *testing.T) {
	fake := &fakeClassifier{}
	gate := newTestGate(t, fake)

	// 2048 samples at 44.1 kHz resample to 743 at 16 kHz, one full frame.
	chunk := chunkOf(make([]int16, 2048), 44100)
	_, err := gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.Equal(t, 1, fake.calls)
	assert.Equal(t, 16000, fake.rate)
}

func TestGate_FrameBytesAreLittleEndian(t *testing.T) {
	fake := &fakeClassifier{}
	gate := newTestGate(t, fake)

	samples := make([]int16, 480)
	samples[0] = 0x1234
	samples[1] = -1

	_, err := gate.IsSpeech(chunkOf(samples, 16000))
	require.NoError(t, err)
	require.Len(t, fake.frames, 1)

	frame := fake.frames[0]
	assert.Equal(t, uint16(0x1234), binary.LittleEndian.Uint16(frame[0:2]))
	assert.Equal(t, uint16(0xFFFF), binary.LittleEndian.Uint16(frame[2:4]))
}

func TestGate_SpeakingEdgeTracking(t *testing.T) {
	fake := &fakeClassifier{results: []bool{true, true, false}}
	gate := newTestGate(t, fake)

	chunk := chunkOf(make([]int16, 480), 16000)

	speech, err := gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.True(t, speech)
	assert.True(t, gate.Speaking())

	speech, err = gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.True(t, speech)
	assert.True(t, gate.Speaking())

	speech, err = gate.IsSpeech(chunk)
	require.NoError(t, err)
	assert.False(t, speech)
	assert.False(t, gate.Speaking())
}

func TestGate_ConfigValidation(t *testing.T) {
	valid := Config{Mode: 1, FrameDuration: 30, ResampleRate: 16000}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"mode too low", func(c *Config) { c.Mode = -1 }},
		{"mode too high", func(c *Config) { c.Mode = 4 }},
		{"bad frame duration", func(c *Config) { c.FrameDuration = 25 }},
		{"bad resample rate", func(c *Config) { c.ResampleRate = 44100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid
			tt.mutate(&config)
			_, err := NewWithClassifier(config, &fakeClassifier{})
			assert.Error(t, err)
		})
	}

	for _, duration := range []int{10, 20, 30} {
		config := valid
		config.FrameDuration = duration
		gate, err := NewWithClassifier(config, &fakeClassifier{})
		require.NoError(t, err)
		assert.Equal(t, 16*duration, gate.frameSamples)
	}
}

func TestGate_SilenceIsNotSpeech(t *testing.T) {
	gate, err := New(Config{Mode: 3, FrameDuration: 30, ResampleRate: 16000})
	require.NoError(t, err)

	speech, err := gate.IsSpeech(chunkOf(make([]int16, 2048), 16000))
	require.NoError(t, err)
	assert.False(t, speech, "digital silence must not register as speech")
}
