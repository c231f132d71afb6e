package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tkarvinen/soundpulse/internal/logging"
)

// StreamSource adapts an external producer of pre-decoded sample blocks
// (for example a remote voice session) to the Source contract. The
// producer calls Push from its own context; blocks are re-framed to the
// configured chunk size and buffered in the FIFO.
type StreamSource struct {
	name       string
	sampleRate int
	chunkSize  int

	queue *chunkQueue

	mu      sync.Mutex
	pending []int16

	running atomic.Bool

	logger *slog.Logger
}

// NewStreamSource creates a push-based stream adapter.
func NewStreamSource(name string, sampleRate, chunkSize int) *StreamSource {
	logger := logging.ForService("audio")
	if logger == nil {
		logger = slog.Default()
	}

	return &StreamSource{
		name:       name,
		sampleRate: sampleRate,
		chunkSize:  chunkSize,
		queue:      newChunkQueue(defaultQueueCapacity),
		logger:     logger.With("component", "stream_source", "stream", name),
	}
}

// Name returns a human-readable name for this source.
func (s *StreamSource) Name() string {
	return "stream:" + s.name
}

// Start marks the stream as running. The external producer drives actual
// production through Push.
func (s *StreamSource) Start() error {
	s.running.Store(true)
	return nil
}

// Push appends a block of samples from the external producer. Blocks
// received while the source is not running are discarded.
func (s *StreamSource) Push(samples []int16) {
	if !s.running.Load() {
		return
	}

	s.mu.Lock()
	s.pending = append(s.pending, samples...)

	var chunks []*Chunk
	for len(s.pending) >= s.chunkSize {
		chunk := make([]int16, s.chunkSize)
		copy(chunk, s.pending[:s.chunkSize])
		s.pending = s.pending[s.chunkSize:]
		chunks = append(chunks, &Chunk{
			Samples:    chunk,
			SampleRate: s.sampleRate,
			Channels:   1,
			Timestamp:  time.Now(),
		})
	}
	s.mu.Unlock()

	// Queue pushes happen outside the re-framing lock.
	for _, c := range chunks {
		if s.queue.push(c) {
			s.logger.Warn("chunk queue full, dropped oldest chunk",
				"dropped_total", s.queue.droppedCount())
		}
	}
}

// GetChunk pops the oldest buffered chunk without blocking.
func (s *StreamSource) GetChunk() *Chunk {
	return s.queue.pop()
}

// Stop halts the stream and discards buffered chunks. Safe to call
// multiple times.
func (s *StreamSource) Stop() {
	if s.running.Swap(false) {
		s.queue.reset()
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
	}
}

// Running reports whether the stream accepts and produces chunks.
func (s *StreamSource) Running() bool {
	return s.running.Load()
}

// ChunkDuration returns the play time of one chunk.
func (s *StreamSource) ChunkDuration() time.Duration {
	return time.Duration(s.chunkSize) * time.Second / time.Duration(s.sampleRate)
}
