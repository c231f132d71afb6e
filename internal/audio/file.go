package audio

import (
	"log/slog"
	"os"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/tkarvinen/soundpulse/internal/dsp"
	"github.com/tkarvinen/soundpulse/internal/errors"
	"github.com/tkarvinen/soundpulse/internal/logging"
)

// decodeBufferSize is the number of samples read from the decoder per
// iteration while loading a file.
const decodeBufferSize = 65536

// FileSource plays back a WAV file as a chunk source. The file is fully
// decoded, downmixed to mono and resampled to the target rate at
// construction time; playback just slices chunks off a cursor. With
// looping enabled the cursor wraps and tail and head are spliced into a
// single gapless chunk; without looping the final chunk is zero-padded
// and the source stops after emitting it.
type FileSource struct {
	path      string
	samples   []int16
	rate      int
	chunkSize int
	loop      bool

	cursor  int
	running bool

	logger *slog.Logger
}

// NewFileSource loads and prepares an audio file for playback.
func NewFileSource(path string, targetRate, chunkSize int, loop bool) (*FileSource, error) {
	logger := logging.ForService("audio")
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "file_source", "path", path)

	samples, err := loadWAV(path, targetRate)
	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, errors.Newf("audio file contains no samples: %s", path).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("path", path).
			Build()
	}

	logger.Info("audio file loaded",
		"samples", len(samples),
		"sample_rate", targetRate,
		"loop", loop)

	return &FileSource{
		path:      path,
		samples:   samples,
		rate:      targetRate,
		chunkSize: chunkSize,
		loop:      loop,
		logger:    logger,
	}, nil
}

// Name returns a human-readable name for this source.
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Start resets the play cursor and begins playback.
func (s *FileSource) Start() error {
	s.cursor = 0
	s.running = true
	return nil
}

// GetChunk slices the next chunk from the play cursor. Production is
// synchronous, so the chunk is always available while running.
func (s *FileSource) GetChunk() *Chunk {
	if !s.running {
		return nil
	}

	out := make([]int16, s.chunkSize)
	n := len(s.samples)

	if s.cursor+s.chunkSize <= n {
		copy(out, s.samples[s.cursor:s.cursor+s.chunkSize])
		s.cursor += s.chunkSize
		if s.cursor == n {
			if s.loop {
				s.cursor = 0
			} else {
				s.running = false
			}
		}
	} else {
		filled := copy(out, s.samples[s.cursor:])
		if s.loop {
			// Splice head onto tail, wrapping as many times as the
			// chunk requires. Exact length, no gap or duplicate.
			for filled < s.chunkSize {
				m := copy(out[filled:], s.samples[:min(s.chunkSize-filled, n)])
				filled += m
				s.cursor = m
			}
		} else {
			// Remainder of out is already zero padding.
			s.cursor = n
			s.running = false
		}
	}

	return &Chunk{
		Samples:    out,
		SampleRate: s.rate,
		Channels:   1,
		Timestamp:  time.Now(),
	}
}

// Stop halts playback. Safe to call multiple times.
func (s *FileSource) Stop() {
	s.running = false
}

// Running reports whether more chunks will be produced.
func (s *FileSource) Running() bool {
	return s.running
}

// ChunkDuration returns the play time of one chunk.
func (s *FileSource) ChunkDuration() time.Duration {
	return time.Duration(s.chunkSize) * time.Second / time.Duration(s.rate)
}

// TotalSamples returns the length of the prepared audio data.
func (s *FileSource) TotalSamples() int {
	return len(s.samples)
}

// loadWAV decodes a WAV file to mono int16 samples at the target rate.
func loadWAV(path string, targetRate int) ([]int16, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.New(err).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("operation", "open_file").
			Context("path", path).
			Build()
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, errors.Newf("input is not a valid WAV audio file: %s", path).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("path", path).
			Build()
	}

	divisor, err := audioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, err
	}

	numChans := int(decoder.NumChans)
	if numChans < 1 {
		return nil, errors.Newf("unsupported channel count: %d", numChans).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("path", path).
			Build()
	}

	sourceRate := int(decoder.SampleRate)

	buf := &audio.IntBuffer{
		Data:   make([]int, decodeBufferSize),
		Format: &audio.Format{SampleRate: sourceRate, NumChannels: numChans},
	}

	var floatData []float64
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, errors.New(err).
				Component("audio").
				Category(errors.CategoryFileIO).
				Context("operation", "decode_pcm").
				Context("path", path).
				Build()
		}
		if n == 0 {
			break
		}

		// Downmix interleaved frames to mono and normalize.
		frames := n / numChans
		for f := 0; f < frames; f++ {
			var sum float64
			for ch := 0; ch < numChans; ch++ {
				sum += float64(buf.Data[f*numChans+ch]) / divisor
			}
			floatData = append(floatData, sum/float64(numChans))
		}
	}

	if sourceRate != targetRate {
		floatData, err = dsp.Resample(floatData, sourceRate, targetRate)
		if err != nil {
			return nil, errors.New(err).
				Component("audio").
				Category(errors.CategoryAudio).
				Context("operation", "resample_file").
				Context("path", path).
				Build()
		}
	}

	// Requantize with clipping to the int16 range.
	return dsp.Float64ToSamples(floatData), nil
}

// audioDivisor returns the int-to-float conversion divisor for a bit
// depth.
func audioDivisor(bitDepth int) (float64, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported audio file bit depth: %d", bitDepth).
			Component("audio").
			Category(errors.CategoryAudioSource).
			Context("bit_depth", bitDepth).
			Build()
	}
}
