package audio

import (
	"encoding/binary"
	"time"
)

// Chunk is a timestamped block of mono 16-bit PCM samples. A chunk is
// immutable once produced and owned by whichever component currently
// holds it.
type Chunk struct {
	Samples    []int16   // signed 16-bit PCM samples
	SampleRate int       // sample rate in Hz
	Channels   int       // channel count, 1 for mono
	Timestamp  time.Time // monotonic capture timestamp
}

// FrameCount returns the number of sample frames in the chunk.
func (c *Chunk) FrameCount() int {
	if c.Channels == 0 {
		return 0
	}
	return len(c.Samples) / c.Channels
}

// Duration returns the play time of the chunk.
func (c *Chunk) Duration() time.Duration {
	if c.SampleRate == 0 {
		return 0
	}
	return time.Duration(c.FrameCount()) * time.Second / time.Duration(c.SampleRate)
}

// bytesToSamples converts little-endian 16-bit PCM bytes to int16
// samples. A trailing odd byte is ignored.
func bytesToSamples(data []byte) []int16 {
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
	}
	return samples
}
