package audio

import "time"

// Source produces audio chunks. Implementations fill an internal bounded
// FIFO from a producer context (driver callback, goroutine or
// synchronous decode) which the consumer drains with GetChunk.
type Source interface {
	// Name returns a human-readable name for this source.
	Name() string

	// Start begins chunk production. Starting an already running
	// source is a no-op. Failure to open the underlying device or
	// file returns an audio-source error.
	Start() error

	// GetChunk pops the oldest buffered chunk without blocking. It
	// returns nil when no chunk is available.
	GetChunk() *Chunk

	// Stop halts production and releases resources. Safe to call
	// multiple times.
	Stop()

	// Running reports whether the source is still producing chunks.
	Running() bool

	// ChunkDuration returns the play time of one chunk, used by the
	// processing loop for pacing.
	ChunkDuration() time.Duration
}
