// Package audio provides the audio acquisition layer: the Chunk data
// type, the Source contract and its backends (soundcard capture, looping
// file playback, push-based stream adapter), and the bounded FIFO that
// decouples producers from the processing loop.
//
// Architecture overview:
//
//	Source (producer goroutine or driver callback) -> chunkQueue -> GetChunk
//
// Chunks move through the queue by single-owner handoff: once popped,
// a chunk is owned exclusively by the caller. The queue push/pop is the
// only synchronization point between the producer and consumer contexts.
package audio
